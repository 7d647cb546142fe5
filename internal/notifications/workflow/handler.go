// Package workflow implements the workflow-message type handler: it loads the
// referenced message template's email view, substitutes entity placeholders,
// and sends the result to the notification's recipient.
package workflow

import (
	"context"

	"lumiso/internal/notifications/email"
	"lumiso/internal/types"
)

// TemplateStore loads message templates with their email channel view.
type TemplateStore interface {
	GetWithEmailView(ctx context.Context, templateID string) (*types.MessageTemplate, *types.TemplateChannelView, error)
}

// IdentityStore resolves the recipient's email address.
type IdentityStore interface {
	GetUserByID(ctx context.Context, userID string) (*types.UserIdentity, error)
}

// Config carries the handler's static settings.
type Config struct {
	// Sender is the From identity on outbound workflow messages.
	Sender types.SenderIdentity
}

// Handler processes workflow-message notifications.
type Handler struct {
	templates  TemplateStore
	identities IdentityStore
	provider   types.EmailProvider
	cfg        Config
	logger     types.Logger
}

// New creates a workflow-message Handler.
func New(templates TemplateStore, identities IdentityStore, provider types.EmailProvider, cfg Config, logger types.Logger) *Handler {
	if cfg.Sender.Address == "" {
		cfg.Sender = types.SenderIdentity{Name: "Lumiso", Address: "hello@updates.lumiso.app"}
	}
	return &Handler{
		templates:  templates,
		identities: identities,
		provider:   provider,
		cfg:        cfg,
		logger:     logger,
	}
}

var _ types.TypeHandler = (*Handler)(nil)

// Type returns the notification type this handler serves.
func (h *Handler) Type() types.NotificationType { return types.TypeWorkflowMessage }

// Handle renders the referenced template for the notification's entity and
// sends it. A missing template_id, an unknown template, and a recipient
// without an email address are all fatal payload defects.
func (h *Handler) Handle(ctx context.Context, n *types.NotificationRecord) (*types.HandlerResult, error) {
	meta, err := n.Metadata.Workflow()
	if err != nil {
		return nil, err
	}

	tmpl, view, err := h.templates.GetWithEmailView(ctx, meta.TemplateID)
	if err != nil {
		return nil, err
	}

	user, err := h.identities.GetUserByID(ctx, n.UserID)
	if err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, types.NewAppError(types.ErrCodeEmailMissingAddr,
			"workflow message recipient has no email address", nil)
	}

	// The email channel view overrides the master copy field by field.
	subject := view.Subject
	if subject == "" {
		subject = tmpl.MasterSubject
	}
	content := view.Content
	if content == "" {
		content = tmpl.MasterContent
	}

	data := flattenEntityData(meta.EntityData)
	subject = ReplacePlaceholders(subject, data)
	content = ReplacePlaceholders(content, data)

	emailID, err := h.provider.Send(ctx, types.SendInput{
		From:    h.cfg.Sender,
		To:      []string{user.Email},
		Subject: subject,
		HTML:    content,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("workflow message sent",
		"notification_id", n.ID,
		"template_id", meta.TemplateID,
		"workflow_id", meta.WorkflowID,
		"recipient", email.RedactEmail(user.Email),
	)
	return &types.HandlerResult{EmailID: emailID}, nil
}
