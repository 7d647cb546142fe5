package core

import (
	"context"
	"fmt"

	"lumiso/internal/types"
)

// Dispatcher routes a single notification record through the delivery
// pipeline: guard check, processing claim, preference check, type handler,
// then the sent or cancelled transition. Failed transitions are owned by the
// batch sweeps; a direct dispatch propagates handler errors and leaves the
// record in processing so an operator can re-trigger it.
type Dispatcher struct {
	statuses *StatusManager
	prefs    *PreferenceResolver
	guard    types.GuardClient
	handlers map[types.NotificationType]types.TypeHandler
	metrics  PipelineMetrics
	logger   types.Logger
}

// NewDispatcher creates a Dispatcher. guard may be nil when no messaging
// guard is configured; metrics may be nil to disable telemetry.
func NewDispatcher(statuses *StatusManager, prefs *PreferenceResolver, guard types.GuardClient, metrics PipelineMetrics, logger types.Logger) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Dispatcher{
		statuses: statuses,
		prefs:    prefs,
		guard:    guard,
		handlers: make(map[types.NotificationType]types.TypeHandler),
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds a type handler. Later registrations for the same type replace
// earlier ones.
func (d *Dispatcher) Register(h types.TypeHandler) {
	d.handlers[h.Type()] = h
}

// Dispatch processes one record end to end and returns the handler result.
// On success or skip the record's terminal status is already persisted when
// Dispatch returns; on error the record stays in processing and the caller
// decides whether to mark it failed.
func (d *Dispatcher) Dispatch(ctx context.Context, n *types.NotificationRecord) (*types.HandlerResult, error) {
	log := d.logger.With(
		"notification_id", n.ID,
		"notification_type", string(n.NotificationType),
		"organization_id", n.OrganizationID,
	)

	// Guard check runs before the record is claimed so hard-blocked
	// organizations never enter processing. Guard outages fail open.
	if d.guard != nil {
		standing, err := d.guard.Check(ctx, n.OrganizationID)
		if err != nil {
			log.Warn("guard check failed, proceeding with dispatch", "error", err.Error())
		} else if standing != nil && standing.HardBlocked {
			reason := "organization blocked from messaging"
			if standing.Reason != "" {
				reason = fmt.Sprintf("organization blocked from messaging: %s", standing.Reason)
			}
			if err := d.statuses.MarkCancelled(ctx, n.ID, reason); err != nil {
				return nil, err
			}
			d.metrics.RecordDispatch(ctx, n.NotificationType, MetricResultCancelled)
			return &types.HandlerResult{Skipped: true, Reason: reason}, nil
		}
	}

	if err := d.statuses.MarkProcessing(ctx, n.ID); err != nil {
		return nil, err
	}

	if !d.prefs.Enabled(ctx, n.OrganizationID, n.UserID, n.NotificationType) {
		reason := "Notifications disabled"
		if err := d.statuses.MarkCancelled(ctx, n.ID, reason); err != nil {
			return nil, err
		}
		d.metrics.RecordDispatch(ctx, n.NotificationType, MetricResultCancelled)
		return &types.HandlerResult{Skipped: true, Reason: reason}, nil
	}

	handler, ok := d.handlers[n.NotificationType]
	if !ok {
		d.metrics.RecordDispatch(ctx, n.NotificationType, MetricResultFailure)
		return nil, types.NewAppError(types.ErrCodeNotifUnsupportedType,
			fmt.Sprintf("no handler registered for notification type %q", n.NotificationType), nil)
	}

	result, err := handler.Handle(ctx, n)
	if err != nil {
		log.Warn("handler failed", "error", err.Error())
		d.metrics.RecordDispatch(ctx, n.NotificationType, MetricResultFailure)
		return nil, err
	}
	if result == nil {
		result = &types.HandlerResult{}
	}

	if result.Skipped {
		if err := d.statuses.MarkCancelled(ctx, n.ID, result.Reason); err != nil {
			return nil, err
		}
		d.metrics.RecordDispatch(ctx, n.NotificationType, MetricResultCancelled)
		return result, nil
	}

	if err := d.statuses.MarkSent(ctx, n.ID, result.EmailID); err != nil {
		return nil, err
	}
	d.metrics.RecordDispatch(ctx, n.NotificationType, MetricResultSuccess)
	return result, nil
}
