package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lumiso/internal/types"
)

// SchedulerConfig tunes the daily summary scheduler.
type SchedulerConfig struct {
	// DefaultSendTime is the "HH:MM" fallback when a user has no preferred
	// send time or the stored value does not parse.
	DefaultSendTime string
}

// DailyScheduler stages one scheduled daily-summary record per active member
// for the next calendar day. Scheduling is idempotent: members who already
// have a record for the target day are skipped, so repeated runs only fill
// gaps.
type DailyScheduler struct {
	members   MemberStore
	prefs     PreferenceBulkStore
	store     ScheduleStore
	guard     types.GuardClient
	publisher types.TriggerPublisher
	clock     types.Clock
	cfg       SchedulerConfig
	metrics   PipelineMetrics
	logger    types.Logger
}

// NewDailyScheduler creates a DailyScheduler. guard and publisher may be nil.
func NewDailyScheduler(members MemberStore, prefs PreferenceBulkStore, store ScheduleStore, guard types.GuardClient, publisher types.TriggerPublisher, clock types.Clock, cfg SchedulerConfig, metrics PipelineMetrics, logger types.Logger) *DailyScheduler {
	if cfg.DefaultSendTime == "" {
		cfg.DefaultSendTime = "09:00"
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &DailyScheduler{
		members:   members,
		prefs:     prefs,
		store:     store,
		guard:     guard,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// ScheduleDailySummaries stages daily-summary records for tomorrow (UTC),
// optionally scoped to one organization. Members whose organization is
// blocked or paused by the guard, whose preferences disable daily summaries,
// or who already have a record for the day are skipped.
func (s *DailyScheduler) ScheduleDailySummaries(ctx context.Context, organizationID string) (*types.ScheduleResult, error) {
	tomorrow := s.clock.Now().AddDate(0, 0, 1)
	dayStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	members, err := s.members.ActiveMembers(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	byOrg := make(map[string][]types.Member)
	for _, m := range members {
		byOrg[m.OrganizationID] = append(byOrg[m.OrganizationID], m)
	}

	// Guard filter: organizations that are hard blocked or paused for new
	// scheduling drop out entirely. Guard outages fail open.
	orgIDs := make([]string, 0, len(byOrg))
	for orgID := range byOrg {
		if s.guard != nil {
			standing, err := s.guard.Check(ctx, orgID)
			if err != nil {
				s.logger.Warn("guard check failed, scheduling anyway",
					"organization_id", orgID,
					"error", err.Error(),
				)
			} else if standing != nil && (standing.HardBlocked || !standing.ShouldScheduleNew) {
				s.logger.Info("organization excluded from scheduling",
					"organization_id", orgID,
					"reason", standing.Reason,
				)
				delete(byOrg, orgID)
				continue
			}
		}
		orgIDs = append(orgIDs, orgID)
	}
	if len(orgIDs) == 0 {
		return &types.ScheduleResult{ScheduledForDate: dayStart.Format("2006-01-02")}, nil
	}

	userIDs := make([]string, 0, len(members))
	for _, orgMembers := range byOrg {
		for _, m := range orgMembers {
			userIDs = append(userIDs, m.UserID)
		}
	}

	userPrefs, err := s.prefs.GetUserSettingsMap(ctx, userIDs)
	if err != nil {
		s.logger.Warn("user preference batch lookup failed, defaulting to enabled", "error", err.Error())
		userPrefs = map[string]*types.PreferenceSettings{}
	}
	orgPrefs, err := s.prefs.GetOrgSettingsMap(ctx, orgIDs)
	if err != nil {
		s.logger.Warn("organization preference batch lookup failed, defaulting to enabled", "error", err.Error())
		orgPrefs = map[string]*types.PreferenceSettings{}
	}

	existing, err := s.store.ExistingScheduledKeys(ctx, orgIDs, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	var records []*types.NotificationRecord
	for _, orgID := range orgIDs {
		for _, m := range byOrg[orgID] {
			if existing[orgID+":"+m.UserID] {
				continue
			}
			if disabled(userPrefs[m.UserID], types.TypeDailySummary) ||
				disabled(orgPrefs[orgID], types.TypeDailySummary) {
				continue
			}

			records = append(records, &types.NotificationRecord{
				ID:               uuid.NewString(),
				NotificationType: types.TypeDailySummary,
				DeliveryMethod:   types.DeliveryScheduled,
				Status:           types.StatusPending,
				OrganizationID:   orgID,
				UserID:           m.UserID,
				Metadata:         types.Metadata{},
				ScheduledFor:     s.sendTimeFor(dayStart, userPrefs[m.UserID]),
			})
		}
	}

	if err := s.store.BulkInsert(ctx, records); err != nil {
		return nil, err
	}

	if len(records) > 0 && s.publisher != nil {
		msg := types.TriggerMessage{
			Action:         "process-scheduled",
			OrganizationID: organizationID,
			TraceID:        types.GetRequestID(ctx),
		}
		// Trigger delivery is best effort; the scheduled sweep also runs on a
		// timer and will pick the records up.
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.logger.Warn("failed to publish scheduling trigger", "error", err.Error())
		}
	}

	s.metrics.RecordScheduled(ctx, len(records))
	s.logger.Info("daily summaries scheduled",
		"organizations", len(orgIDs),
		"scheduled", len(records),
		"date", dayStart.Format("2006-01-02"),
	)

	return &types.ScheduleResult{
		OrganizationsProcessed: len(orgIDs),
		NotificationsScheduled: len(records),
		ScheduledForDate:       dayStart.Format("2006-01-02"),
	}, nil
}

// sendTimeFor resolves a member's scheduled send time on the target day.
// Unparseable preference values fall back to the configured default.
func (s *DailyScheduler) sendTimeFor(dayStart time.Time, prefs *types.PreferenceSettings) time.Time {
	raw := ""
	if prefs != nil {
		raw = prefs.ScheduledTime
	}
	hour, minute, err := parseSendTime(raw)
	if err != nil {
		hour, minute, _ = parseSendTime(s.cfg.DefaultSendTime)
	}
	return dayStart.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// parseSendTime parses an "HH:MM" clock value.
func parseSendTime(v string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(v, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock value out of range: %q", v)
	}
	return hour, minute, nil
}
