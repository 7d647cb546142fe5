package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"lumiso/internal/db"
	"lumiso/internal/types"
)

// mockBatchStore records selection arguments and serves fixed records.
type mockBatchStore struct {
	pendingOrg    string
	pendingAfter  time.Time
	pendingLimit  int
	scheduledOrg  string
	scheduledDue  time.Time
	scheduledLim  int
	records       []*types.NotificationRecord
	selectErr     error
	getByIDRecord *types.NotificationRecord
	getByIDErr    error
}

func (m *mockBatchStore) SelectPending(_ context.Context, organizationID string, createdAfter time.Time, limit int) ([]*types.NotificationRecord, error) {
	m.pendingOrg = organizationID
	m.pendingAfter = createdAfter
	m.pendingLimit = limit
	return m.records, m.selectErr
}

func (m *mockBatchStore) SelectScheduled(_ context.Context, organizationID string, dueBefore time.Time, limit int) ([]*types.NotificationRecord, error) {
	m.scheduledOrg = organizationID
	m.scheduledDue = dueBefore
	m.scheduledLim = limit
	return m.records, m.selectErr
}

func (m *mockBatchStore) GetByID(_ context.Context, _ string) (*types.NotificationRecord, error) {
	return m.getByIDRecord, m.getByIDErr
}

var batchTestNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newBatchFixture(store *mockBatchStore, handlers ...types.TypeHandler) (*BatchProcessor, *recordingMetrics, *mockStatusStore) {
	f := newDispatchFixture(nil, handlers...)
	metrics := &recordingMetrics{}
	statuses := NewStatusManager(f.store, &mockLogger{})
	p := NewBatchProcessor(store, f.d, statuses, &mockClock{now: batchTestNow}, DefaultBatchLimits(), metrics, &mockLogger{})
	return p, metrics, f.store
}

func TestBatchProcessor_ProcessPending_AppliesRecencyWindow(t *testing.T) {
	store := &mockBatchStore{}
	p, _, _ := newBatchFixture(store)

	result, err := p.ProcessPending(context.Background(), "org_1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 0 {
		t.Errorf("expected empty batch, got %d", result.Processed)
	}

	if store.pendingOrg != "org_1" {
		t.Errorf("expected org filter, got %q", store.pendingOrg)
	}
	wantAfter := batchTestNow.Add(-30 * time.Minute)
	if !store.pendingAfter.Equal(wantAfter) {
		t.Errorf("expected createdAfter %s, got %s", wantAfter, store.pendingAfter)
	}
	if store.pendingLimit != 50 {
		t.Errorf("expected pending limit 50, got %d", store.pendingLimit)
	}
}

func TestBatchProcessor_ProcessPending_ForceWidensSelection(t *testing.T) {
	store := &mockBatchStore{}
	p, _, _ := newBatchFixture(store)

	// Force drops the recency window and the organization filter together.
	if _, err := p.ProcessPending(context.Background(), "org_1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.pendingAfter.IsZero() {
		t.Errorf("expected zero createdAfter under force, got %s", store.pendingAfter)
	}
	if store.pendingOrg != "" {
		t.Errorf("expected empty organization filter under force, got %q", store.pendingOrg)
	}
}

func TestBatchProcessor_ProcessScheduled_DueBeforeNow(t *testing.T) {
	store := &mockBatchStore{}
	p, _, _ := newBatchFixture(store)

	if _, err := p.ProcessScheduled(context.Background(), "org_1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.scheduledDue.Equal(batchTestNow) {
		t.Errorf("expected dueBefore=now, got %s", store.scheduledDue)
	}
	if store.scheduledOrg != "org_1" {
		t.Errorf("expected org filter, got %q", store.scheduledOrg)
	}
	if store.scheduledLim != 100 {
		t.Errorf("expected scheduled limit 100, got %d", store.scheduledLim)
	}

	if _, err := p.ProcessScheduled(context.Background(), "org_1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.scheduledDue.IsZero() {
		t.Errorf("expected zero dueBefore under force, got %s", store.scheduledDue)
	}
	if store.scheduledOrg != "" {
		t.Errorf("expected empty organization filter under force, got %q", store.scheduledOrg)
	}
}

func TestBatchProcessor_IndividualFailureDoesNotAbortBatch(t *testing.T) {
	good := pendingRecord(types.TypeDailySummary)
	bad := pendingRecord(types.TypeDailySummary)
	bad.ID = "notif_bad"
	good2 := pendingRecord(types.TypeDailySummary)
	good2.ID = "notif_3"

	handler := &seqHandler{
		notifType: types.TypeDailySummary,
		errsByID:  map[string]error{"notif_bad": errors.New("render failed")},
	}
	store := &mockBatchStore{records: []*types.NotificationRecord{good, bad, good2}}
	p, metrics, statusStore := newBatchFixture(store, handler)

	result, err := p.ProcessPending(context.Background(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 3 {
		t.Fatalf("expected 3 processed, got %d", result.Processed)
	}
	if !result.Results[0].Success || result.Results[1].Success || !result.Results[2].Success {
		t.Errorf("expected success/failure/success, got %+v", result.Results)
	}
	if result.Results[1].Error != "render failed" {
		t.Errorf("expected failure reason captured, got %q", result.Results[1].Error)
	}
	if len(handler.handled) != 3 {
		t.Errorf("expected all records handled, got %d", len(handler.handled))
	}
	if len(metrics.batches) != 1 || metrics.batches[0] != "process-pending" {
		t.Errorf("expected one process-pending batch metric, got %v", metrics.batches)
	}

	// The sweep marks the errored record failed without consuming retry
	// budget on the immediate path.
	failed := failedUpdateFor(statusStore, "notif_bad")
	if failed == nil {
		t.Fatal("expected failed transition for the errored record")
	}
	if failed.ErrorMessage != "render failed" {
		t.Errorf("expected failure reason persisted, got %q", failed.ErrorMessage)
	}
	if failed.IncrementRetry {
		t.Error("immediate sweep must not consume retry budget")
	}
}

func TestBatchProcessor_ScheduledFailureConsumesRetryBudget(t *testing.T) {
	record := pendingRecord(types.TypeDailySummary)
	record.DeliveryMethod = types.DeliveryScheduled

	handler := &mockHandler{
		notifType: types.TypeDailySummary,
		err:       errors.New("provider timeout"),
	}
	store := &mockBatchStore{records: []*types.NotificationRecord{record}}
	p, _, statusStore := newBatchFixture(store, handler)

	result, err := p.ProcessScheduled(context.Background(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Success {
		t.Error("expected item failure")
	}

	failed := failedUpdateFor(statusStore, record.ID)
	if failed == nil {
		t.Fatal("expected failed transition")
	}
	if !failed.IncrementRetry {
		t.Error("scheduled sweep must consume retry budget on failure")
	}
}

func TestBatchProcessor_FailureMessageOmitsErrorCode(t *testing.T) {
	record := pendingRecord(types.TypeProjectMilestone)
	handler := &mockHandler{
		notifType: types.TypeProjectMilestone,
		err: types.NewAppError(types.ErrCodeNotifMissingMetadata,
			"project_id required in notification metadata", nil),
	}
	store := &mockBatchStore{records: []*types.NotificationRecord{record}}
	p, _, statusStore := newBatchFixture(store, handler)

	result, err := p.ProcessPending(context.Background(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stored message is the human-readable part, not the code-prefixed
	// Error() rendering.
	want := "project_id required in notification metadata"
	failed := failedUpdateFor(statusStore, record.ID)
	if failed == nil {
		t.Fatal("expected failed transition")
	}
	if failed.ErrorMessage != want {
		t.Errorf("expected message %q persisted, got %q", want, failed.ErrorMessage)
	}
	if result.Results[0].Error != want {
		t.Errorf("expected message %q in item result, got %q", want, result.Results[0].Error)
	}
}

func TestBatchProcessor_SelectError(t *testing.T) {
	store := &mockBatchStore{selectErr: errors.New("connection lost")}
	p, _, _ := newBatchFixture(store)

	if _, err := p.ProcessPending(context.Background(), "", false); err == nil {
		t.Fatal("expected select error to propagate")
	}
}

func TestBatchProcessor_ProcessOne(t *testing.T) {
	record := pendingRecord(types.TypeDailySummary)
	handler := &mockHandler{
		notifType: types.TypeDailySummary,
		result:    &types.HandlerResult{EmailID: "re_msg_7"},
	}
	store := &mockBatchStore{getByIDRecord: record}
	p, _, _ := newBatchFixture(store, handler)

	result, err := p.ProcessOne(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EmailID != "re_msg_7" {
		t.Errorf("expected provider message id re_msg_7, got %s", result.EmailID)
	}
}

func TestBatchProcessor_ProcessOne_ErrorLeavesRecordInProcessing(t *testing.T) {
	record := pendingRecord(types.TypeDailySummary)
	record.DeliveryMethod = types.DeliveryScheduled

	handler := &mockHandler{
		notifType: types.TypeDailySummary,
		err:       errors.New("render failed"),
	}
	store := &mockBatchStore{getByIDRecord: record}
	p, _, statusStore := newBatchFixture(store, handler)

	_, err := p.ProcessOne(context.Background(), record.ID)
	if err == nil {
		t.Fatal("expected handler error to propagate")
	}

	// Manual triggers never mark failed, so a scheduled record's retry budget
	// survives any number of operator retries.
	if failed := failedUpdateFor(statusStore, record.ID); failed != nil {
		t.Errorf("expected no failed transition on the direct path, got %+v", failed)
	}
	if statusStore.last().Status != types.StatusProcessing {
		t.Errorf("expected record left in processing, got %s", statusStore.last().Status)
	}
}

func TestBatchProcessor_ProcessOne_NotFound(t *testing.T) {
	store := &mockBatchStore{
		getByIDErr: types.NewAppError(types.ErrCodeNotFoundNotification, "notification not found", nil),
	}
	p, _, _ := newBatchFixture(store)

	_, err := p.ProcessOne(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeNotFoundNotification {
		t.Errorf("expected not-found code, got %v", err)
	}
}

// failedUpdateFor returns the failed-status update recorded for id, if any.
func failedUpdateFor(store *mockStatusStore, id string) *db.StatusUpdate {
	for i, u := range store.updates {
		if store.ids[i] == id && u.Status == types.StatusFailed {
			return &store.updates[i]
		}
	}
	return nil
}

// seqHandler fails only the ids listed in errsByID.
type seqHandler struct {
	notifType types.NotificationType
	errsByID  map[string]error
	handled   []string
}

func (h *seqHandler) Type() types.NotificationType { return h.notifType }

func (h *seqHandler) Handle(_ context.Context, n *types.NotificationRecord) (*types.HandlerResult, error) {
	h.handled = append(h.handled, n.ID)
	if err, ok := h.errsByID[n.ID]; ok {
		return nil, err
	}
	return &types.HandlerResult{EmailID: "re_" + n.ID}, nil
}
