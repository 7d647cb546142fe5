// Package handlers contains the HTTP handler implementations for the
// notification pipeline API.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lumiso/internal/core"
	notifcore "lumiso/internal/notifications/core"
	"lumiso/internal/types"
)

// PipelineExecutor is the service contract for the dispatch handler. Defined
// locally to keep the handler decoupled from the pipeline package's concrete
// service.
type PipelineExecutor interface {
	Execute(ctx context.Context, req notifcore.ActionRequest) (any, error)
}

// DispatchRequest is the request body for POST /v1/notifications/dispatch.
// The organizationId casing follows the established client contract.
type DispatchRequest struct {
	Action         string `json:"action" validate:"required"`
	NotificationID string `json:"notification_id,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	Force          bool   `json:"force,omitempty"`
}

// NotificationHandler maps pipeline action requests to the pipeline service.
type NotificationHandler struct {
	service   PipelineExecutor
	validator *core.Validator
	logger    types.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(svc PipelineExecutor, val *core.Validator, logger types.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:   svc,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the notification endpoints onto the mux.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notifications/dispatch", h.HandleDispatch)
}

// HandleDispatch handles POST /v1/notifications/dispatch. The body selects
// one pipeline action; the response wraps the action-specific result in the
// standard envelope.
func (h *NotificationHandler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.Execute(r.Context(), notifcore.ActionRequest{
		Action:         req.Action,
		NotificationID: req.NotificationID,
		OrganizationID: req.OrganizationID,
		Force:          req.Force,
	})
	if err != nil {
		h.logger.Error("pipeline action failed",
			"action", req.Action,
			"organization_id", req.OrganizationID,
			"error", err.Error(),
		)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.ActionResponse{
		Success:     true,
		Action:      req.Action,
		Result:      result,
		ProcessedAt: time.Now().UTC(),
	})
}
