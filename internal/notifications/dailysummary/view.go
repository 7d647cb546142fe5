package dailysummary

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"lumiso/internal/i18n"
	"lumiso/internal/notifications/email"
	"lumiso/internal/types"
)

// buildView assembles the fully localized template data for one summary.
func (h *Handler) buildView(loc *i18n.Localizer, org *types.OrganizationSettings, now time.Time, sessions []types.SessionItem, reminders []types.ActivityItem, overdue []types.ActivityItem, pastSessions []types.SessionItem) *email.DailySummaryView {
	date := formatDisplayDate(now, org.DateFormat)
	dateVars := map[string]any{"date": date}
	hasData := len(sessions) > 0 || len(reminders) > 0

	section := "dailySummary.empty"
	subjectKey := "dailySummary.subject.brandedEmpty"
	if hasData {
		section = "dailySummary.modern"
		subjectKey = "dailySummary.subject.brandedWithData"
	}

	view := &email.DailySummaryView{
		Subject:        loc.Translate(subjectKey, dateVars),
		PageTitle:      loc.Translate(section+".pageTitle", dateVars),
		HeaderTitle:    loc.Translate(section+".headerTitle", nil),
		HeaderSubtitle: template.HTML(loc.Translate(section+".headerSubtitle", dateVars)),

		BusinessName: org.BusinessName,
		BrandColor:   org.BrandColor,
		LogoURL:      logoOr(org.LogoURL),
		LogoAlt:      loc.Translate("common.alt.logo", map[string]any{"businessName": org.BusinessName}),

		Stats: []email.StatView{
			{Label: loc.Translate(section+".stats.sessions", nil), Value: len(sessions)},
			{Label: loc.Translate(section+".stats.reminders", nil), Value: len(reminders)},
			{Label: loc.Translate(section+".stats.overdue", nil), Value: len(overdue)},
			{Label: loc.Translate(section+".stats.past", nil), Value: len(pastSessions)},
		},

		QuickActionsTitle: loc.Translate("dailySummary.modern.quickActionsTitle", nil),
		QuickActions: []email.LinkView{
			{Label: loc.Translate("common.cta.dashboard", nil), URL: h.cfg.AppBaseURL + "/dashboard"},
			{Label: loc.Translate("common.cta.leads", nil), URL: h.cfg.AppBaseURL + "/leads"},
			{Label: loc.Translate("common.cta.projects", nil), URL: h.cfg.AppBaseURL + "/projects"},
			{Label: loc.Translate("common.cta.sessions", nil), URL: h.cfg.AppBaseURL + "/sessions"},
		},

		FooterNotice: loc.Translate("common.footer.notice", map[string]any{"businessName": org.BusinessName}),
		FooterReason: loc.Translate("common.footer.reason", nil),
	}

	if hasData {
		view.SessionsTitle = loc.Translate("dailySummary.modern.sections.sessionsTitle",
			map[string]any{"count": len(sessions)})
		view.RemindersTitle = loc.Translate("dailySummary.modern.sections.remindersTitle",
			map[string]any{"count": len(reminders)})
		for _, s := range sessions {
			view.Sessions = append(view.Sessions, email.SessionView{
				Name:     sessionName(loc, s),
				Time:     formatClock(s.SessionTime, org.TimeFormat),
				Location: s.Location,
				Client:   s.LeadName,
				Project:  s.ProjectName,
				Notes:    s.Notes,
			})
		}
		for _, a := range reminders {
			view.Reminders = append(view.Reminders, email.ReminderView{
				Type:    a.Type,
				Content: a.Content,
				Time:    formatClock(a.ReminderTime, org.TimeFormat),
				Client:  a.LeadName,
				Project: a.ProjectName,
			})
		}
	} else {
		view.TipsTitle = loc.Translate("dailySummary.empty.tipsTitle", nil)
		view.Tips = loc.Tips("dailySummary.empty.tips")
		view.Motivational = pickMotivational(loc, now)
	}

	if len(overdue) > 0 {
		view.OverdueMessage = template.HTML(pluralized(loc, section+".messages.overdue", len(overdue)))
		view.OverdueLink = &email.LinkView{
			Label: loc.Translate("common.actions.viewOverdueItems", nil),
			URL:   h.cfg.AppBaseURL + "/dashboard?view=overdue",
		}
	}
	if len(pastSessions) > 0 {
		view.PastMessage = template.HTML(pluralized(loc, section+".messages.past", len(pastSessions)))
		view.PastLink = &email.LinkView{
			Label: loc.Translate("common.actions.viewPastSessions", nil),
			URL:   h.cfg.AppBaseURL + "/sessions?view=past",
		}
	}

	return view
}

// pluralized resolves the One/Other message pair for a count.
func pluralized(loc *i18n.Localizer, keyPrefix string, count int) string {
	if count == 1 {
		return loc.Translate(keyPrefix+"One", nil)
	}
	return loc.Translate(keyPrefix+"Other", map[string]any{"count": count})
}

// sessionName falls back to the localized stock name for unnamed sessions.
func sessionName(loc *i18n.Localizer, s types.SessionItem) string {
	if s.Name != "" {
		return s.Name
	}
	return loc.Translate("dailySummary.modern.sections.defaultSessionName", nil)
}

// pickMotivational selects the day's message from the rotation.
func pickMotivational(loc *i18n.Localizer, now time.Time) string {
	messages := loc.List("common.motivational.emptyDay", nil)
	if len(messages) == 0 {
		return ""
	}
	return messages[now.YearDay()%len(messages)]
}

func logoOr(url string) string {
	if url == "" {
		return DefaultLogoURL
	}
	return url
}

// formatDisplayDate renders a date according to the organization's format
// preference (DD/MM/YYYY, MM/DD/YYYY, or YYYY-MM-DD).
func formatDisplayDate(t time.Time, format string) string {
	switch format {
	case "MM/DD/YYYY":
		return t.Format("01/02/2006")
	case "YYYY-MM-DD":
		return t.Format("2006-01-02")
	default:
		return t.Format("02/01/2006")
	}
}

// formatClock renders an "HH:MM" or "HH:MM:SS" database time value in the
// organization's clock preference. Unparseable values pass through untouched.
func formatClock(value string, timeFormat string) string {
	if value == "" {
		return ""
	}
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 {
		return value
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return value
	}
	minute := parts[1]

	if timeFormat != "12-hour" {
		return fmt.Sprintf("%02d:%s", hour, minute)
	}

	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%s %s", display, minute, suffix)
}
