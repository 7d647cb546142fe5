// Package email renders outbound notification emails from embedded HTML
// templates. Copy comes pre-localized from the i18n package; this package owns
// only layout and branding.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"lumiso/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// RenderedEmail holds pre-rendered email content ready for transmission.
type RenderedEmail struct {
	Subject string
	HTML    string
}

// StatView is one counter tile in the summary header.
type StatView struct {
	Label string
	Value int
}

// SessionView is a session entry in the rich layout.
type SessionView struct {
	Name     string
	Time     string
	Location string
	Client   string
	Project  string
	Notes    string
}

// ReminderView is an activity entry in the rich layout.
type ReminderView struct {
	Type    string
	Content string
	Time    string
	Client  string
	Project string
}

// LinkView is a labeled URL.
type LinkView struct {
	Label string
	URL   string
}

// DailySummaryView is the template data for both daily-summary layouts. All
// strings arrive localized; HTML-typed fields may carry markup from the
// translation bundle.
type DailySummaryView struct {
	Subject        string
	PageTitle      string
	HeaderTitle    string
	HeaderSubtitle template.HTML

	BusinessName string
	BrandColor   string
	LogoURL      string
	LogoAlt      string

	Stats []StatView

	// Rich layout fields.
	SessionsTitle  string
	Sessions       []SessionView
	RemindersTitle string
	Reminders      []ReminderView
	OverdueMessage template.HTML
	OverdueLink    *LinkView
	PastMessage    template.HTML
	PastLink       *LinkView

	// Empty layout fields.
	TipsTitle    string
	Tips         []i18n.Tip
	Motivational string

	QuickActionsTitle string
	QuickActions      []LinkView

	FooterNotice string
	FooterReason string
}

// HasData reports whether today holds any sessions or reminders, selecting the
// rich layout. Overdue and past items alone render as alerts in the
// fresh-start layout, not as a full summary.
func (v *DailySummaryView) HasData() bool {
	return len(v.Sessions) > 0 || len(v.Reminders) > 0
}

// Renderer renders daily-summary emails from the embedded templates.
type Renderer struct {
	rich  *template.Template
	empty *template.Template
}

// NewRenderer parses the embedded templates. Parsing happens once at startup;
// a broken template is a deploy-time failure, not a per-send one.
func NewRenderer() (*Renderer, error) {
	rich, err := template.ParseFS(templateFS, "templates/daily_summary_rich.html")
	if err != nil {
		return nil, fmt.Errorf("email: failed to parse rich template: %w", err)
	}
	empty, err := template.ParseFS(templateFS, "templates/daily_summary_empty.html")
	if err != nil {
		return nil, fmt.Errorf("email: failed to parse empty template: %w", err)
	}
	return &Renderer{rich: rich, empty: empty}, nil
}

// RenderDailySummary renders the rich layout when the view has data and the
// fresh-start layout otherwise.
func (r *Renderer) RenderDailySummary(view *DailySummaryView) (*RenderedEmail, error) {
	tmpl := r.empty
	if view.HasData() {
		tmpl = r.rich
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("email: failed to render daily summary: %w", err)
	}
	return &RenderedEmail{
		Subject: view.Subject,
		HTML:    buf.String(),
	}, nil
}
