package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lumiso/internal/types"
)

// mockDBTX implements DBTX for repository tests.
type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	ret := m.Called(ctx, sql, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(pgx.Rows), ret.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgx.Row)
}

// mockRow implements pgx.Row with a caller-supplied scan function.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	return r.scanFn(dest...)
}

// notifMockRows implements pgx.Rows for the notification selection queries.
// It produces the full canonical column set scanned by scanNotification.
type notifMockRows struct {
	data    []notifRowData
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

type notifRowData struct {
	id           string
	notifType    string
	method       string
	status       string
	orgID        string
	userID       string
	retryCount   int
	metadata     types.Metadata
	scheduledFor *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	sentAt       *time.Time
	errorMessage *string
	emailID      *string
}

func (r *notifMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *notifMockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	*dest[0].(*string) = row.id
	*dest[1].(*string) = row.notifType
	*dest[2].(*string) = row.method
	*dest[3].(*string) = row.status
	*dest[4].(*string) = row.orgID
	*dest[5].(*string) = row.userID
	*dest[6].(*int) = row.retryCount
	*dest[7].(*types.Metadata) = row.metadata
	*dest[8].(**time.Time) = row.scheduledFor
	*dest[9].(*time.Time) = row.createdAt
	*dest[10].(*time.Time) = row.updatedAt
	*dest[11].(**time.Time) = row.sentAt
	*dest[12].(**string) = row.errorMessage
	*dest[13].(**string) = row.emailID
	return nil
}

func (r *notifMockRows) Close()                                       { r.closed = true }
func (r *notifMockRows) Err() error                                   { return r.errVal }
func (r *notifMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *notifMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *notifMockRows) RawValues() [][]byte                          { return nil }
func (r *notifMockRows) Values() ([]any, error)                       { return nil, nil }
func (r *notifMockRows) Conn() *pgx.Conn                              { return nil }

// keyMockRows implements pgx.Rows for the scheduled idempotency key query.
type keyMockRows struct {
	data   [][2]string
	idx    int
	closed bool
	errVal error
}

func (r *keyMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *keyMockRows) Scan(dest ...any) error {
	row := r.data[r.idx]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

func (r *keyMockRows) Close()                                       { r.closed = true }
func (r *keyMockRows) Err() error                                   { return r.errVal }
func (r *keyMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *keyMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *keyMockRows) RawValues() [][]byte                          { return nil }
func (r *keyMockRows) Values() ([]any, error)                       { return nil, nil }
func (r *keyMockRows) Conn() *pgx.Conn                              { return nil }

func pendingRow(id string, createdAt time.Time) notifRowData {
	return notifRowData{
		id:        id,
		notifType: "daily-summary",
		method:    "immediate",
		status:    "pending",
		orgID:     "org_1",
		userID:    "user_1",
		metadata:  types.Metadata{},
		createdAt: createdAt,
		updatedAt: createdAt,
	}
}

// ============================================================
// GetByID Tests
// ============================================================

func TestNotificationRepository_GetByID_Found(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sentAt := now.Add(5 * time.Minute)
	emailID := "re_abc123"

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*string) = "notif_1"
			*dest[1].(*string) = "project-milestone"
			*dest[2].(*string) = "immediate"
			*dest[3].(*string) = "sent"
			*dest[4].(*string) = "org_1"
			*dest[5].(*string) = "user_1"
			*dest[6].(*int) = 0
			*dest[7].(*types.Metadata) = types.Metadata{"project_id": "proj_1"}
			*dest[8].(**time.Time) = nil
			*dest[9].(*time.Time) = now
			*dest[10].(*time.Time) = now
			*dest[11].(**time.Time) = &sentAt
			*dest[12].(**string) = nil
			*dest[13].(**string) = &emailID
			return nil
		}})

	n, err := repo.GetByID(ctx, "notif_1")
	require.NoError(t, err)
	assert.Equal(t, "notif_1", n.ID)
	assert.Equal(t, types.TypeProjectMilestone, n.NotificationType)
	assert.Equal(t, types.StatusSent, n.Status)
	assert.Equal(t, sentAt, n.SentAt)
	assert.Equal(t, "re_abc123", n.EmailID)
	assert.True(t, n.ScheduledFor.IsZero())
	db.AssertExpectations(t)
}

func TestNotificationRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			return pgx.ErrNoRows
		}})

	_, err := repo.GetByID(ctx, "notif_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundNotification, appErr.Code)
	db.AssertExpectations(t)
}

// ============================================================
// SelectPending / SelectScheduled Tests
// ============================================================

func TestNotificationRepository_SelectPending_AppliesFilters(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rows := &notifMockRows{
		data: []notifRowData{pendingRow("notif_1", now), pendingRow("notif_2", now.Add(time.Minute))},
		idx:  -1,
	}

	createdAfter := now.Add(-30 * time.Minute)
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "delivery_method = 'immediate'")
			assert.Contains(t, sql, "retry_count < $1")
			sqlArgs := args.Get(2).([]any)
			assert.Equal(t, types.MaxRetryCount, sqlArgs[0])
			assert.Equal(t, "org_1", *sqlArgs[1].(*string))
			assert.Equal(t, createdAfter, *sqlArgs[2].(*time.Time))
			assert.Equal(t, 50, sqlArgs[3])
		}).
		Return(rows, nil)

	results, err := repo.SelectPending(ctx, "org_1", createdAfter, 50)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "notif_1", results[0].ID)
	db.AssertExpectations(t)
}

func TestNotificationRepository_SelectPending_ForceDisablesFilters(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	rows := &notifMockRows{data: []notifRowData{}, idx: -1}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sqlArgs := args.Get(2).([]any)
			assert.Nil(t, sqlArgs[1], "empty org id should pass NULL")
			assert.Nil(t, sqlArgs[2], "zero time should pass NULL")
		}).
		Return(rows, nil)

	results, err := repo.SelectPending(ctx, "", time.Time{}, 50)
	require.NoError(t, err)
	assert.Empty(t, results)
	db.AssertExpectations(t)
}

func TestNotificationRepository_SelectScheduled_DueBefore(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	row := pendingRow("notif_s1", now.Add(-2*time.Hour))
	row.method = "scheduled"
	row.scheduledFor = &due

	rows := &notifMockRows{data: []notifRowData{row}, idx: -1}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "delivery_method = 'scheduled'")
			assert.Contains(t, sql, "scheduled_for <= $3")
		}).
		Return(rows, nil)

	results, err := repo.SelectScheduled(ctx, "", now, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.DeliveryScheduled, results[0].DeliveryMethod)
	assert.Equal(t, due, results[0].ScheduledFor)
	db.AssertExpectations(t)
}

func TestNotificationRepository_Select_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := repo.SelectPending(ctx, "", time.Time{}, 50)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
	db.AssertExpectations(t)
}

// ============================================================
// UpdateStatus Tests
// ============================================================

func TestNotificationRepository_UpdateStatus_Sent(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sqlArgs := args.Get(2).([]any)
			assert.Equal(t, "sent", sqlArgs[0])
			assert.Equal(t, "re_msg1", *sqlArgs[2].(*string))
			assert.Equal(t, true, sqlArgs[3], "sent path resets retry count")
			assert.Equal(t, false, sqlArgs[4])
		}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.UpdateStatus(ctx, "notif_1", StatusUpdate{
		Status:          types.StatusSent,
		EmailID:         "re_msg1",
		ResetRetryCount: true,
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestNotificationRepository_UpdateStatus_FailedWithIncrement(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sqlArgs := args.Get(2).([]any)
			assert.Equal(t, "failed", sqlArgs[0])
			assert.Equal(t, "provider returned 503", *sqlArgs[1].(*string))
			assert.Equal(t, true, sqlArgs[4], "failed scheduled path increments retry count")
		}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.UpdateStatus(ctx, "notif_2", StatusUpdate{
		Status:         types.StatusFailed,
		ErrorMessage:   "provider returned 503",
		IncrementRetry: true,
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestNotificationRepository_UpdateStatus_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.UpdateStatus(ctx, "notif_missing", StatusUpdate{Status: types.StatusProcessing})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundNotification, appErr.Code)
	db.AssertExpectations(t)
}

func TestNotificationRepository_UpdateStatus_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("deadlock"))

	err := repo.UpdateStatus(ctx, "notif_1", StatusUpdate{Status: types.StatusProcessing})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
	db.AssertExpectations(t)
}

// ============================================================
// BulkInsert Tests
// ============================================================

func TestNotificationRepository_BulkInsert_MultiRow(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	scheduledFor := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	records := []*types.NotificationRecord{
		{
			ID:               "notif_a",
			NotificationType: types.TypeDailySummary,
			DeliveryMethod:   types.DeliveryScheduled,
			Status:           types.StatusPending,
			OrganizationID:   "org_1",
			UserID:           "user_1",
			Metadata:         types.Metadata{},
			ScheduledFor:     scheduledFor,
		},
		{
			ID:               "notif_b",
			NotificationType: types.TypeDailySummary,
			DeliveryMethod:   types.DeliveryScheduled,
			Status:           types.StatusPending,
			OrganizationID:   "org_1",
			UserID:           "user_2",
			Metadata:         types.Metadata{},
			ScheduledFor:     scheduledFor,
		},
	}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "($1, $2, $3, $4, $5, $6, $7, $8, $9)")
			assert.Contains(t, sql, "($10, $11, $12, $13, $14, $15, $16, $17, $18)")
			sqlArgs := args.Get(2).([]any)
			require.Len(t, sqlArgs, 18)
			assert.Equal(t, "notif_a", sqlArgs[0])
			assert.Equal(t, "notif_b", sqlArgs[9])
		}).
		Return(pgconn.NewCommandTag("INSERT 0 2"), nil)

	err := repo.BulkInsert(ctx, records)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestNotificationRepository_BulkInsert_EmptyIsNoOp(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)

	err := repo.BulkInsert(context.Background(), nil)
	require.NoError(t, err)
	db.AssertNotCalled(t, "Exec")
}

// ============================================================
// ExistingScheduledKeys Tests
// ============================================================

func TestNotificationRepository_ExistingScheduledKeys(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	rows := &keyMockRows{
		data: [][2]string{{"org_1", "user_1"}, {"org_2", "user_9"}},
		idx:  -1,
	}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	keys, err := repo.ExistingScheduledKeys(ctx, []string{"org_1", "org_2"}, dayStart, dayStart.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, keys["org_1:user_1"])
	assert.True(t, keys["org_2:user_9"])
	assert.False(t, keys["org_1:user_2"])
	db.AssertExpectations(t)
}

func TestNotificationRepository_ExistingScheduledKeys_NoOrgs(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)

	keys, err := repo.ExistingScheduledKeys(context.Background(), nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, keys)
	db.AssertNotCalled(t, "Query")
}

// ============================================================
// RetryFailed Tests
// ============================================================

func TestNotificationRepository_RetryFailed(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*int) = 7
			return nil
		}})

	count, err := repo.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	db.AssertExpectations(t)
}

func TestNotificationRepository_RetryFailed_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			return errors.New("function does not exist")
		}})

	_, err := repo.RetryFailed(ctx)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
	db.AssertExpectations(t)
}

func strPtr(s string) *string {
	return &s
}
