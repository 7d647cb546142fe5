// Package core implements the notification pipeline: the status state
// machine, preference resolution, per-record dispatch, batch sweeps, daily
// scheduling, and the failed-record retry sweep. Type-specific behavior lives
// behind types.TypeHandler implementations registered on the Dispatcher.
package core

import (
	"context"
	"time"

	"lumiso/internal/db"
	"lumiso/internal/types"
)

// StatusStore is the persistence surface for state machine transitions,
// satisfied by *db.NotificationRepository.
type StatusStore interface {
	UpdateStatus(ctx context.Context, id string, u db.StatusUpdate) error
}

// BatchStore selects eligible records for the batch sweeps.
type BatchStore interface {
	SelectPending(ctx context.Context, organizationID string, createdAfter time.Time, limit int) ([]*types.NotificationRecord, error)
	SelectScheduled(ctx context.Context, organizationID string, dueBefore time.Time, limit int) ([]*types.NotificationRecord, error)
	GetByID(ctx context.Context, id string) (*types.NotificationRecord, error)
}

// PreferenceStore reads preference rows at both scopes. A nil row means no
// settings exist at that scope.
type PreferenceStore interface {
	GetUserSettings(ctx context.Context, userID string) (*types.PreferenceSettings, error)
	GetOrgSettings(ctx context.Context, organizationID string) (*types.PreferenceSettings, error)
}

// PreferenceBulkStore reads preference rows for many owners in one query,
// used by the scheduler to avoid per-member round trips.
type PreferenceBulkStore interface {
	GetUserSettingsMap(ctx context.Context, userIDs []string) (map[string]*types.PreferenceSettings, error)
	GetOrgSettingsMap(ctx context.Context, organizationIDs []string) (map[string]*types.PreferenceSettings, error)
}

// MemberStore lists active memberships, the scheduler's recipient source.
type MemberStore interface {
	ActiveMembers(ctx context.Context, organizationID string) ([]types.Member, error)
}

// ScheduleStore is the persistence surface for the daily scheduler.
type ScheduleStore interface {
	ExistingScheduledKeys(ctx context.Context, organizationIDs []string, dayStart, dayEnd time.Time) (map[string]bool, error)
	BulkInsert(ctx context.Context, records []*types.NotificationRecord) error
}

// RetryStore invokes the bulk retry procedure.
type RetryStore interface {
	RetryFailed(ctx context.Context) (int, error)
}

// MetricResult labels a dispatch outcome on the metric dimension.
type MetricResult string

const (
	MetricResultSuccess   MetricResult = "success"
	MetricResultFailure   MetricResult = "failure"
	MetricResultCancelled MetricResult = "cancelled"
)

// PipelineMetrics records pipeline telemetry. Implementations must be
// non-blocking for callers beyond the emit call itself; metric failures are
// logged, never returned.
type PipelineMetrics interface {
	RecordDispatch(ctx context.Context, notifType types.NotificationType, result MetricResult)
	RecordBatch(ctx context.Context, action string, processed int, duration time.Duration)
	RecordScheduled(ctx context.Context, count int)
	RecordRetried(ctx context.Context, count int)
}

// NopMetrics discards all telemetry. Used when no CloudWatch client is
// configured (local development).
type NopMetrics struct{}

func (NopMetrics) RecordDispatch(context.Context, types.NotificationType, MetricResult) {}
func (NopMetrics) RecordBatch(context.Context, string, int, time.Duration)              {}
func (NopMetrics) RecordScheduled(context.Context, int)                                 {}
func (NopMetrics) RecordRetried(context.Context, int)                                   {}

var _ PipelineMetrics = (*NopMetrics)(nil)
