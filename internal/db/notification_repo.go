package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"lumiso/internal/types"
)

// NotificationRepository provides data access for the notifications table.
// It owns record selection for the batch sweeps, the atomic status transition
// update, bulk insertion for the scheduler, and the bulk retry procedure call.
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a NotificationRepository backed by the
// given database connection (pool or transaction).
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// notificationColumns is the canonical column list scanned by scanNotification.
const notificationColumns = `id, notification_type, delivery_method, status,
	organization_id, user_id, retry_count, metadata, scheduled_for,
	created_at, updated_at, sent_at, error_message, email_id`

// GetByID loads a single notification record.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*types.NotificationRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE id = $1`,
		id,
	)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundNotification, "notification not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load notification", err)
	}
	return n, nil
}

// SelectPending returns immediate notifications eligible for a pending sweep:
// status pending, retry budget not exhausted, optionally scoped to one
// organization and to records created after createdAfter. Force callers pass
// an empty organizationID and zero createdAfter to disable both filters.
// Capped to limit records, oldest first.
func (r *NotificationRepository) SelectPending(ctx context.Context, organizationID string, createdAfter time.Time, limit int) ([]*types.NotificationRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE delivery_method = 'immediate'
		   AND status = 'pending'
		   AND retry_count < $1
		   AND ($2::text IS NULL OR organization_id = $2)
		   AND ($3::timestamptz IS NULL OR created_at >= $3)
		 ORDER BY created_at
		 LIMIT $4`,
		types.MaxRetryCount,
		nilIfEmpty(organizationID),
		nilIfZeroTime(createdAfter),
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to select pending notifications", err)
	}
	return collectNotifications(rows)
}

// SelectScheduled returns scheduled notifications eligible for processing:
// status pending, retry budget not exhausted, scheduled_for at or before
// dueBefore (zero disables the time gate for forced runs), optionally scoped
// to one organization. Capped to limit records, earliest due first.
func (r *NotificationRepository) SelectScheduled(ctx context.Context, organizationID string, dueBefore time.Time, limit int) ([]*types.NotificationRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE delivery_method = 'scheduled'
		   AND status = 'pending'
		   AND retry_count < $1
		   AND ($2::text IS NULL OR organization_id = $2)
		   AND ($3::timestamptz IS NULL OR scheduled_for <= $3)
		 ORDER BY scheduled_for
		 LIMIT $4`,
		types.MaxRetryCount,
		nilIfEmpty(organizationID),
		nilIfZeroTime(dueBefore),
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to select scheduled notifications", err)
	}
	return collectNotifications(rows)
}

// StatusUpdate describes a single state machine transition write.
type StatusUpdate struct {
	Status types.NotificationStatus

	// ErrorMessage is stored on failed/cancelled transitions and cleared on
	// sent transitions regardless of this value.
	ErrorMessage string

	// EmailID is the provider message id, stored on sent transitions.
	EmailID string

	// ResetRetryCount zeroes retry_count (sent path).
	ResetRetryCount bool

	// IncrementRetry advances retry_count by one (failed scheduled path).
	IncrementRetry bool
}

// UpdateStatus performs one atomic transition write keyed by notification id.
// Every transition touches updated_at; sent transitions additionally set
// sent_at and email_id and clear error_message. Concurrent duplicate
// transitions may race; the single-statement update guarantees no torn write.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, u StatusUpdate) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET
			status = $1,
			updated_at = NOW(),
			error_message = CASE WHEN $1 = 'sent' THEN NULL ELSE COALESCE($2, error_message) END,
			email_id = COALESCE($3, email_id),
			sent_at = CASE WHEN $1 = 'sent' THEN NOW() ELSE sent_at END,
			retry_count = CASE
				WHEN $4 THEN 0
				WHEN $5 THEN retry_count + 1
				ELSE retry_count
			END
		 WHERE id = $6`,
		string(u.Status),
		nilIfEmpty(u.ErrorMessage),
		nilIfEmpty(u.EmailID),
		u.ResetRetryCount,
		u.IncrementRetry,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update notification status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundNotification, "notification not found", nil)
	}
	return nil
}

// BulkInsert stages new notification records in a single multi-row INSERT.
// The caller must set ID, type, method, status, ownership, and scheduled_for;
// created_at and updated_at default to NOW(). A nil or empty slice is a no-op.
func (r *NotificationRepository) BulkInsert(ctx context.Context, records []*types.NotificationRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, n := range records {
		rows = append(rows, []any{
			n.ID,
			string(n.NotificationType),
			string(n.DeliveryMethod),
			string(n.Status),
			n.OrganizationID,
			n.UserID,
			n.RetryCount,
			n.Metadata,
			nilIfZeroTime(n.ScheduledFor),
		})
	}

	// Build a single INSERT with positional placeholders per row.
	const cols = 9
	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications
		 (id, notification_type, delivery_method, status, organization_id,
		  user_id, retry_count, metadata, scheduled_for)
		 VALUES `)
	args := make([]any, 0, len(rows)*cols)
	for i, rowVals := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+j+1)
		}
		sb.WriteString(")")
		args = append(args, rowVals...)
	}

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to bulk insert notifications", err)
	}
	return nil
}

// ExistingScheduledKeys returns the set of "organizationID:userID" keys that
// already have a daily-summary scheduled record within [dayStart, dayEnd) for
// the given organizations. Used by the scheduler's idempotency check.
func (r *NotificationRepository) ExistingScheduledKeys(ctx context.Context, organizationIDs []string, dayStart, dayEnd time.Time) (map[string]bool, error) {
	if len(organizationIDs) == 0 {
		return map[string]bool{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT organization_id, user_id
		 FROM notifications
		 WHERE notification_type = 'daily-summary'
		   AND delivery_method = 'scheduled'
		   AND organization_id = ANY($1)
		   AND scheduled_for >= $2
		   AND scheduled_for < $3`,
		organizationIDs,
		dayStart,
		dayEnd,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query existing scheduled notifications", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var orgID, userID string
		if err := rows.Scan(&orgID, &userID); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan scheduled key row", err)
		}
		keys[orgID+":"+userID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating scheduled key rows", err)
	}
	return keys, nil
}

// RetryFailed invokes the bulk retry procedure, which re-enters failed
// notifications into pending according to its own backoff rules, and returns
// the count of records it touched. The procedure operates globally.
func (r *NotificationRepository) RetryFailed(ctx context.Context) (int, error) {
	var count int
	row := r.db.QueryRow(ctx, `SELECT retry_failed_notifications()`)
	if err := row.Scan(&count); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to run retry procedure", err)
	}
	return count, nil
}

// SelectTerminalBefore returns terminal records (sent, cancelled, or failed
// with an exhausted retry budget) last updated before the cutoff. Used by the
// audit archiver; records are never deleted by this subsystem.
func (r *NotificationRepository) SelectTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]*types.NotificationRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE (status IN ('sent', 'cancelled')
		        OR (status = 'failed' AND retry_count >= $1))
		   AND updated_at < $2
		 ORDER BY updated_at
		 LIMIT $3`,
		types.MaxRetryCount,
		cutoff,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to select terminal notifications", err)
	}
	return collectNotifications(rows)
}

// collectNotifications drains a pgx.Rows result set into notification records.
func collectNotifications(rows pgx.Rows) ([]*types.NotificationRecord, error) {
	defer rows.Close()

	var results []*types.NotificationRecord
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan notification row", err)
		}
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating notification rows", err)
	}
	return results, nil
}

// scanNotification scans a single notification row, converting nullable
// columns into Go zero values.
func scanNotification(row pgx.Row) (*types.NotificationRecord, error) {
	var (
		n            types.NotificationRecord
		notifType    string
		method       string
		status       string
		scheduledFor *time.Time
		sentAt       *time.Time
		errorMessage *string
		emailID      *string
	)

	err := row.Scan(
		&n.ID,
		&notifType,
		&method,
		&status,
		&n.OrganizationID,
		&n.UserID,
		&n.RetryCount,
		&n.Metadata,
		&scheduledFor,
		&n.CreatedAt,
		&n.UpdatedAt,
		&sentAt,
		&errorMessage,
		&emailID,
	)
	if err != nil {
		return nil, err
	}

	n.NotificationType = types.NotificationType(notifType)
	n.DeliveryMethod = types.DeliveryMethod(method)
	n.Status = types.NotificationStatus(status)
	if scheduledFor != nil {
		n.ScheduledFor = *scheduledFor
	}
	if sentAt != nil {
		n.SentAt = *sentAt
	}
	if errorMessage != nil {
		n.ErrorMessage = *errorMessage
	}
	if emailID != nil {
		n.EmailID = *emailID
	}
	return &n, nil
}
