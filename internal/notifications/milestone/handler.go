// Package milestone implements the project-milestone type handler. The
// handler validates the payload and forwards the status change to the external
// project notifier, which owns rendering and fan-out to project assignees.
package milestone

import (
	"context"

	"lumiso/internal/external"
	"lumiso/internal/types"
)

// Handler processes project-milestone notifications.
type Handler struct {
	notifier external.ProjectNotifier
	logger   types.Logger
}

// New creates a project-milestone Handler.
func New(notifier external.ProjectNotifier, logger types.Logger) *Handler {
	return &Handler{notifier: notifier, logger: logger}
}

var _ types.TypeHandler = (*Handler)(nil)

// Type returns the notification type this handler serves.
func (h *Handler) Type() types.NotificationType { return types.TypeProjectMilestone }

// Handle validates the milestone payload and forwards it. A missing project_id
// is a fatal payload defect; retrying cannot fix it.
func (h *Handler) Handle(ctx context.Context, n *types.NotificationRecord) (*types.HandlerResult, error) {
	meta, err := n.Metadata.Milestone()
	if err != nil {
		return nil, err
	}

	event := external.MilestoneEvent{
		NotificationID:  n.ID,
		OrganizationID:  n.OrganizationID,
		UserID:          n.UserID,
		ProjectID:       meta.ProjectID,
		OldStatus:       meta.OldStatus,
		NewStatus:       meta.NewStatus,
		ChangedByUserID: meta.ChangedByUserID,
	}
	if err := h.notifier.NotifyMilestone(ctx, event); err != nil {
		return nil, err
	}

	h.logger.Info("milestone notification forwarded",
		"notification_id", n.ID,
		"project_id", meta.ProjectID,
		"new_status", meta.NewStatus,
	)
	return &types.HandlerResult{}, nil
}
