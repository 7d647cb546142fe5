package core

import (
	"context"
	"fmt"

	"lumiso/internal/db"
	"lumiso/internal/types"
)

// StatusManager owns state machine transitions for notification records.
// Records are mutated only through these methods; nothing else writes status.
type StatusManager struct {
	store  StatusStore
	logger types.Logger
}

// NewStatusManager creates a StatusManager.
func NewStatusManager(store StatusStore, logger types.Logger) *StatusManager {
	return &StatusManager{store: store, logger: logger}
}

// MarkProcessing claims a record for dispatch.
func (m *StatusManager) MarkProcessing(ctx context.Context, id string) error {
	if err := m.store.UpdateStatus(ctx, id, db.StatusUpdate{Status: types.StatusProcessing}); err != nil {
		return fmt.Errorf("MarkProcessing: %w", err)
	}
	return nil
}

// MarkSent records a successful delivery: error message cleared, sent_at
// stamped, retry budget reset, provider message id stored.
func (m *StatusManager) MarkSent(ctx context.Context, id string, emailID string) error {
	err := m.store.UpdateStatus(ctx, id, db.StatusUpdate{
		Status:          types.StatusSent,
		EmailID:         emailID,
		ResetRetryCount: true,
	})
	if err != nil {
		return fmt.Errorf("MarkSent: %w", err)
	}

	m.logger.Info("notification sent",
		"notification_id", id,
		"email_id", emailID,
	)
	return nil
}

// MarkFailed records a handler failure. Only failed scheduled records consume
// retry budget; immediate records stay re-selectable until the pending sweep
// window passes them by.
func (m *StatusManager) MarkFailed(ctx context.Context, n *types.NotificationRecord, reason string) error {
	err := m.store.UpdateStatus(ctx, n.ID, db.StatusUpdate{
		Status:         types.StatusFailed,
		ErrorMessage:   reason,
		IncrementRetry: n.DeliveryMethod == types.DeliveryScheduled,
	})
	if err != nil {
		return fmt.Errorf("MarkFailed: %w", err)
	}

	m.logger.Warn("notification failed",
		"notification_id", n.ID,
		"notification_type", string(n.NotificationType),
		"delivery_method", string(n.DeliveryMethod),
		"retry_count", n.RetryCount,
		"reason", reason,
	)
	return nil
}

// MarkCancelled terminates a record without delivery: guard block, disabled
// preference, or unsupported type. Cancelled records are never retried.
func (m *StatusManager) MarkCancelled(ctx context.Context, id string, reason string) error {
	err := m.store.UpdateStatus(ctx, id, db.StatusUpdate{
		Status:       types.StatusCancelled,
		ErrorMessage: reason,
	})
	if err != nil {
		return fmt.Errorf("MarkCancelled: %w", err)
	}

	m.logger.Info("notification cancelled",
		"notification_id", id,
		"reason", reason,
	)
	return nil
}
