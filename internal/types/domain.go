// Package types holds the domain model for the Lumiso notification pipeline:
// the notification record and its state machine vocabulary, preference and
// guard results, template and daily-summary DTOs, and the shared error type.
package types

import (
	"time"
)

// NotificationType identifies which type handler processes a record.
// The set is open: unknown values are stored but rejected at dispatch time.
type NotificationType string

const (
	TypeDailySummary     NotificationType = "daily-summary"
	TypeProjectMilestone NotificationType = "project-milestone"
	TypeWorkflowMessage  NotificationType = "workflow-message"
)

// DeliveryMethod distinguishes notifications dispatched as soon as a pending
// sweep picks them up from notifications gated by a scheduled_for timestamp.
type DeliveryMethod string

const (
	DeliveryImmediate DeliveryMethod = "immediate"
	DeliveryScheduled DeliveryMethod = "scheduled"
)

// NotificationStatus is the state machine position of a record.
//
// pending -> processing -> {sent | failed | cancelled}
//
// failed re-enters pending only through the bulk retry procedure.
type NotificationStatus string

const (
	StatusPending    NotificationStatus = "pending"
	StatusProcessing NotificationStatus = "processing"
	StatusSent       NotificationStatus = "sent"
	StatusFailed     NotificationStatus = "failed"
	StatusCancelled  NotificationStatus = "cancelled"
)

// MaxRetryCount is the retry budget: records at or above this count are no
// longer selected for re-processing.
const MaxRetryCount = 3

// Metadata is the open key/value payload whose shape depends on the
// notification type. Typed accessors validate required keys at dispatch time.
type Metadata map[string]any

// String extracts a string value from the metadata, returning "" when the key
// is absent or holds a non-string value.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return v
}

// MilestoneMetadata is the typed view of a project-milestone payload.
type MilestoneMetadata struct {
	ProjectID       string
	OldStatus       string
	NewStatus       string
	ChangedByUserID string
}

// Milestone validates and extracts the project-milestone payload.
// A missing project_id is a fatal dispatch error, never retried.
func (m Metadata) Milestone() (MilestoneMetadata, error) {
	projectID := m.String("project_id")
	if projectID == "" {
		return MilestoneMetadata{}, NewAppError(
			ErrCodeNotifMissingMetadata,
			"project_id required in notification metadata",
			nil,
		)
	}
	return MilestoneMetadata{
		ProjectID:       projectID,
		OldStatus:       m.String("old_status"),
		NewStatus:       m.String("new_status"),
		ChangedByUserID: m.String("changed_by_user_id"),
	}, nil
}

// WorkflowMetadata is the typed view of a workflow-message payload.
type WorkflowMetadata struct {
	TemplateID          string
	WorkflowID          string
	WorkflowExecutionID string
	EntityType          string
	EntityID            string
	EntityData          map[string]any
}

// Workflow validates and extracts the workflow-message payload.
func (m Metadata) Workflow() (WorkflowMetadata, error) {
	templateID := m.String("template_id")
	if templateID == "" {
		return WorkflowMetadata{}, NewAppError(
			ErrCodeNotifMissingMetadata,
			"template_id required in notification metadata",
			nil,
		)
	}
	entityData, _ := m["entity_data"].(map[string]any)
	return WorkflowMetadata{
		TemplateID:          templateID,
		WorkflowID:          m.String("workflow_id"),
		WorkflowExecutionID: m.String("workflow_execution_id"),
		EntityType:          m.String("entity_type"),
		EntityID:            m.String("entity_id"),
		EntityData:          entityData,
	}, nil
}

// NotificationRecord is the unit of work moving through the pipeline.
// Mutated exclusively through status transitions; never physically deleted.
type NotificationRecord struct {
	ID               string             `json:"id"`
	NotificationType NotificationType   `json:"notification_type"`
	DeliveryMethod   DeliveryMethod     `json:"delivery_method"`
	Status           NotificationStatus `json:"status"`
	OrganizationID   string             `json:"organization_id"`
	UserID           string             `json:"user_id"`
	RetryCount       int                `json:"retry_count"`
	Metadata         Metadata           `json:"metadata"`

	// ScheduledFor is meaningful only when DeliveryMethod is scheduled.
	// Immutable once set; scheduling only ever inserts new records.
	ScheduledFor time.Time `json:"scheduled_for,omitzero"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	SentAt       time.Time `json:"sent_at,omitzero"`
	ErrorMessage string    `json:"error_message,omitempty"`
	EmailID      string    `json:"email_id,omitempty"`
}

// PreferenceSettings holds the notification flags at a single scope (user or
// organization). A nil *PreferenceSettings means no settings row exists; a nil
// flag means the flag was never set. Both default to enabled (fail open).
type PreferenceSettings struct {
	GlobalEnabled           *bool
	DailySummaryEnabled     *bool
	NewAssignmentEnabled    *bool
	ProjectMilestoneEnabled *bool
	WorkflowMessageEnabled  *bool

	// ScheduledTime is the preferred daily send time ("HH:MM", user scope only).
	ScheduledTime string
}

// TypeEnabled returns the per-type flag for the given notification type, or
// nil when the type has no dedicated flag at this scope.
func (p *PreferenceSettings) TypeEnabled(t NotificationType) *bool {
	if p == nil {
		return nil
	}
	switch t {
	case TypeDailySummary:
		return p.DailySummaryEnabled
	case TypeProjectMilestone:
		return p.ProjectMilestoneEnabled
	case TypeWorkflowMessage:
		return p.WorkflowMessageEnabled
	default:
		return nil
	}
}

// GuardResult reports an organization's messaging standing. A nil result from
// the guard client means no guard is configured and messaging is fully
// permitted.
type GuardResult struct {
	HardBlocked       bool   `json:"hard_blocked"`
	ShouldScheduleNew bool   `json:"should_schedule_new"`
	Reason            string `json:"reason,omitempty"`
}

// HandlerResult is returned by a type handler on success. EmailID carries the
// provider message id when the handler sent an email directly.
type HandlerResult struct {
	EmailID string `json:"email_id,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// SenderIdentity is the From identity on an outbound email.
type SenderIdentity struct {
	Name    string
	Address string
}

// SendInput is the transport-agnostic outbound email payload.
type SendInput struct {
	From    SenderIdentity
	To      []string
	Subject string
	HTML    string
}

// UserIdentity is the result of an identity lookup.
type UserIdentity struct {
	ID          string
	Email       string
	DisplayName string
}

// Member is an active organization membership row.
type Member struct {
	OrganizationID string
	UserID         string
	Role           string
}

// OrganizationSettings carries the branding and locale context used when
// rendering organization-addressed email.
type OrganizationSettings struct {
	OrganizationID  string
	BusinessName    string
	BrandColor      string
	LogoURL         string
	PreferredLocale string
	Timezone        string
	DateFormat      string
	TimeFormat      string
}

// MessageTemplate is a workflow message template master record.
type MessageTemplate struct {
	ID            string
	Name          string
	MasterSubject string
	MasterContent string
}

// TemplateChannelView is a channel-specific rendering of a message template.
type TemplateChannelView struct {
	TemplateID string
	Channel    string
	Subject    string
	Content    string
}

// SessionItem is a photography session row joined with its lead and project
// names, as consumed by the daily-summary handler.
type SessionItem struct {
	ID          string
	Name        string
	SessionDate string
	SessionTime string
	Location    string
	Notes       string
	LeadName    string
	ProjectName string
}

// ActivityItem is a reminder/activity row for the daily-summary handler.
type ActivityItem struct {
	ID           string
	Type         string
	Content      string
	ReminderDate string
	ReminderTime string
	LeadName     string
	ProjectName  string
}

// BatchItemResult is the per-notification outcome within a batch run.
type BatchItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult aggregates a batch run. Processed counts selected records, not
// successes; individual handler failures never abort the batch.
type BatchResult struct {
	Processed int               `json:"processed"`
	Results   []BatchItemResult `json:"results"`
}

// ScheduleResult reports one scheduling run.
type ScheduleResult struct {
	OrganizationsProcessed int    `json:"organizations_processed"`
	NotificationsScheduled int    `json:"notifications_scheduled"`
	ScheduledForDate       string `json:"scheduled_for_date"`
}

// RetryResult reports the bulk retry procedure outcome.
type RetryResult struct {
	RetriedCount int `json:"retried_count"`
}

// TriggerMessage is the SQS payload fanning an action out to the worker.
type TriggerMessage struct {
	Action         string `json:"action"`
	OrganizationID string `json:"organization_id,omitempty"`
	Force          bool   `json:"force,omitempty"`
	TraceID        string `json:"trace_id,omitempty"`
}
