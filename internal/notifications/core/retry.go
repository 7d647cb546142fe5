package core

import (
	"context"
	"fmt"

	"lumiso/internal/types"
)

// RetryCoordinator runs the bulk retry sweep. The heavy lifting happens in a
// stored procedure that re-queues failed records still under their retry
// budget; the coordinator only invokes it and reports the count.
type RetryCoordinator struct {
	store   RetryStore
	metrics PipelineMetrics
	logger  types.Logger
}

// NewRetryCoordinator creates a RetryCoordinator.
func NewRetryCoordinator(store RetryStore, metrics PipelineMetrics, logger types.Logger) *RetryCoordinator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &RetryCoordinator{store: store, metrics: metrics, logger: logger}
}

// RetryFailed re-queues eligible failed records. The procedure operates
// globally; organizationID is accepted for API symmetry and logged but does
// not narrow the sweep.
func (c *RetryCoordinator) RetryFailed(ctx context.Context, organizationID string) (*types.RetryResult, error) {
	count, err := c.store.RetryFailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("RetryFailed: %w", err)
	}

	c.metrics.RecordRetried(ctx, count)
	c.logger.Info("failed notifications re-queued",
		"retried", count,
		"organization_id", organizationID,
	)
	return &types.RetryResult{RetriedCount: count}, nil
}
