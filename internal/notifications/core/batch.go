package core

import (
	"context"
	"errors"
	"time"

	"lumiso/internal/types"
)

// BatchLimits bounds the two batch sweeps.
type BatchLimits struct {
	PendingLimit         int
	ScheduledLimit       int
	PendingRecencyWindow time.Duration
}

// DefaultBatchLimits mirrors the production sweep configuration.
func DefaultBatchLimits() BatchLimits {
	return BatchLimits{
		PendingLimit:         50,
		ScheduledLimit:       100,
		PendingRecencyWindow: 30 * time.Minute,
	}
}

// BatchProcessor runs the pending and scheduled sweeps. Records process
// sequentially; an individual failure is captured in the per-item result,
// transitions the record to failed, and never aborts the rest of the batch.
type BatchProcessor struct {
	store      BatchStore
	dispatcher *Dispatcher
	statuses   *StatusManager
	clock      types.Clock
	limits     BatchLimits
	metrics    PipelineMetrics
	logger     types.Logger
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(store BatchStore, dispatcher *Dispatcher, statuses *StatusManager, clock types.Clock, limits BatchLimits, metrics PipelineMetrics, logger types.Logger) *BatchProcessor {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &BatchProcessor{
		store:      store,
		dispatcher: dispatcher,
		statuses:   statuses,
		clock:      clock,
		limits:     limits,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessPending sweeps immediate pending notifications. Unless force is set,
// only records created within the recency window are selected; older pending
// records are presumed stuck and left for the retry sweep. Force drops both
// the recency window and the organization filter.
func (p *BatchProcessor) ProcessPending(ctx context.Context, organizationID string, force bool) (*types.BatchResult, error) {
	var createdAfter time.Time
	if force {
		organizationID = ""
	} else {
		createdAfter = p.clock.Now().Add(-p.limits.PendingRecencyWindow)
	}

	records, err := p.store.SelectPending(ctx, organizationID, createdAfter, p.limits.PendingLimit)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, "process-pending", records), nil
}

// ProcessScheduled sweeps scheduled notifications that are due. Unless force
// is set, only records with scheduled_for at or before now are selected.
// Force drops both the due window and the organization filter.
func (p *BatchProcessor) ProcessScheduled(ctx context.Context, organizationID string, force bool) (*types.BatchResult, error) {
	var dueBefore time.Time
	if force {
		organizationID = ""
	} else {
		dueBefore = p.clock.Now()
	}

	records, err := p.store.SelectScheduled(ctx, organizationID, dueBefore, p.limits.ScheduledLimit)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, "process-scheduled", records), nil
}

// ProcessOne dispatches a single record by id, used by the trigger-immediate
// action.
func (p *BatchProcessor) ProcessOne(ctx context.Context, id string) (*types.HandlerResult, error) {
	record, err := p.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.dispatcher.Dispatch(ctx, record)
}

func (p *BatchProcessor) run(ctx context.Context, action string, records []*types.NotificationRecord) *types.BatchResult {
	start := p.clock.Now()
	result := &types.BatchResult{
		Processed: len(records),
		Results:   make([]types.BatchItemResult, 0, len(records)),
	}

	for _, n := range records {
		item := types.BatchItemResult{ID: n.ID}
		handlerResult, err := p.dispatcher.Dispatch(ctx, n)
		if err != nil {
			// Dispatch leaves errored records in processing; the sweep owns
			// the failed transition. Scheduled records consume retry budget
			// here, immediate ones stay re-selectable by later sweeps.
			msg := failureMessage(err)
			item.Error = msg
			if markErr := p.statuses.MarkFailed(ctx, n, msg); markErr != nil {
				p.logger.Error("failed to persist failure transition",
					"notification_id", n.ID,
					"error", markErr.Error(),
				)
			}
		} else {
			item.Success = true
			item.Result = handlerResult
		}
		result.Results = append(result.Results, item)
	}

	p.metrics.RecordBatch(ctx, action, result.Processed, p.clock.Now().Sub(start))
	p.logger.Info("batch sweep complete",
		"action", action,
		"processed", result.Processed,
	)
	return result
}

// failureMessage extracts the human-readable message for persistence, without
// the error-code prefix AppError.Error() carries.
func failureMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
