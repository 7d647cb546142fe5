// Package dailysummary implements the daily-summary type handler: it gathers
// the recipient's day (sessions, reminders, overdue and past items), renders
// the branded summary email in the recipient's language, and sends it.
package dailysummary

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"lumiso/internal/i18n"
	"lumiso/internal/notifications/email"
	"lumiso/internal/types"
)

// DefaultLogoURL is the stock logo used when an organization has none.
const DefaultLogoURL = "https://my.lumiso.app/lumiso-logo.png"

// defaultLanguage is the daily pipeline's language fallback when neither the
// user nor the organization states a preference.
const defaultLanguage = "tr"

// IdentityStore resolves the recipient's email, name, and language.
type IdentityStore interface {
	GetUserByID(ctx context.Context, userID string) (*types.UserIdentity, error)
	GetUserLanguage(ctx context.Context, userID string) (string, error)
}

// OrgStore reads organization branding and locale settings.
type OrgStore interface {
	GetSettings(ctx context.Context, organizationID string) (*types.OrganizationSettings, error)
}

// SummaryStore reads the four daily-summary datasets.
type SummaryStore interface {
	TodaySessions(ctx context.Context, organizationID string, day string) ([]types.SessionItem, error)
	PastUnresolvedSessions(ctx context.Context, organizationID string, before string) ([]types.SessionItem, error)
	TodayActivities(ctx context.Context, organizationID string, day string) ([]types.ActivityItem, error)
	OverdueActivities(ctx context.Context, organizationID string, before string) ([]types.ActivityItem, error)
}

// Config carries the handler's static settings.
type Config struct {
	// Sender is the From identity on outbound summaries.
	Sender types.SenderIdentity

	// AppBaseURL is the web application root used for links in the email.
	AppBaseURL string
}

// Handler processes daily-summary notifications.
type Handler struct {
	identities IdentityStore
	orgs       OrgStore
	summaries  SummaryStore
	renderer   *email.Renderer
	provider   types.EmailProvider
	clock      types.Clock
	cfg        Config
	logger     types.Logger
}

// New creates a daily-summary Handler.
func New(identities IdentityStore, orgs OrgStore, summaries SummaryStore, renderer *email.Renderer, provider types.EmailProvider, clock types.Clock, cfg Config, logger types.Logger) *Handler {
	if cfg.Sender.Address == "" {
		cfg.Sender = types.SenderIdentity{Name: "Lumiso", Address: "hello@updates.lumiso.app"}
	}
	if cfg.AppBaseURL == "" {
		cfg.AppBaseURL = "https://my.lumiso.app"
	}
	return &Handler{
		identities: identities,
		orgs:       orgs,
		summaries:  summaries,
		renderer:   renderer,
		provider:   provider,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

var _ types.TypeHandler = (*Handler)(nil)

// Type returns the notification type this handler serves.
func (h *Handler) Type() types.NotificationType { return types.TypeDailySummary }

// Handle gathers the recipient's day, renders the summary, and sends it.
func (h *Handler) Handle(ctx context.Context, n *types.NotificationRecord) (*types.HandlerResult, error) {
	user, err := h.identities.GetUserByID(ctx, n.UserID)
	if err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, types.NewAppError(types.ErrCodeEmailMissingAddr,
			"user has no email address", nil)
	}

	org, err := h.orgs.GetSettings(ctx, n.OrganizationID)
	if err != nil {
		return nil, err
	}

	lang, err := h.identities.GetUserLanguage(ctx, n.UserID)
	if err != nil {
		h.logger.Warn("language preference lookup failed, using organization locale",
			"user_id", n.UserID,
			"error", err.Error(),
		)
		lang = ""
	}
	if lang == "" {
		lang = org.PreferredLocale
	}
	if lang == "" {
		lang = defaultLanguage
	}
	loc := i18n.New(lang)

	// "Today" is resolved in the organization's timezone so early-morning UTC
	// sends still describe the recipient's calendar day.
	tz, err := time.LoadLocation(org.Timezone)
	if err != nil {
		tz = time.UTC
	}
	now := h.clock.Now().In(tz)
	day := now.Format("2006-01-02")

	var (
		sessions     []types.SessionItem
		pastSessions []types.SessionItem
		reminders    []types.ActivityItem
		overdue      []types.ActivityItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = h.summaries.TodaySessions(gctx, n.OrganizationID, day)
		return err
	})
	g.Go(func() error {
		var err error
		pastSessions, err = h.summaries.PastUnresolvedSessions(gctx, n.OrganizationID, day)
		return err
	})
	g.Go(func() error {
		var err error
		reminders, err = h.summaries.TodayActivities(gctx, n.OrganizationID, day)
		return err
	})
	g.Go(func() error {
		var err error
		overdue, err = h.summaries.OverdueActivities(gctx, n.OrganizationID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := h.buildView(loc, org, now, sessions, reminders, overdue, pastSessions)
	rendered, err := h.renderer.RenderDailySummary(view)
	if err != nil {
		return nil, err
	}

	emailID, err := h.provider.Send(ctx, types.SendInput{
		From:    h.cfg.Sender,
		To:      []string{user.Email},
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("daily summary sent",
		"notification_id", n.ID,
		"recipient", email.RedactEmail(user.Email),
		"language", loc.Language(),
		"sessions", len(sessions),
		"reminders", len(reminders),
	)
	return &types.HandlerResult{EmailID: emailID}, nil
}
