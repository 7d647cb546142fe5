package external

import "context"

// MilestoneEvent is the payload forwarded to the project notifier when a
// project crosses a milestone status.
type MilestoneEvent struct {
	NotificationID  string `json:"notification_id"`
	OrganizationID  string `json:"organization_id"`
	UserID          string `json:"user_id"`
	ProjectID       string `json:"project_id"`
	OldStatus       string `json:"old_status,omitempty"`
	NewStatus       string `json:"new_status,omitempty"`
	ChangedByUserID string `json:"changed_by_user_id,omitempty"`
}

// ProjectNotifier delivers project-milestone events to the downstream
// notification service, which owns recipient fan-out and rendering for them.
type ProjectNotifier interface {
	NotifyMilestone(ctx context.Context, event MilestoneEvent) error
}
