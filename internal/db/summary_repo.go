package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"lumiso/internal/types"
)

// SummaryRepository gathers the four daily-summary datasets: today's
// sessions, today's activities, overdue activities, and past unresolved
// sessions. All queries are organization-scoped and read-only.
type SummaryRepository struct {
	db DBTX
}

// NewSummaryRepository creates a SummaryRepository backed by the given
// database connection.
func NewSummaryRepository(db DBTX) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// pastSessionsLimit caps the past unresolved sessions dataset; older history
// is noise in a daily digest.
const pastSessionsLimit = 10

// TodaySessions returns the organization's sessions scheduled on the given
// calendar day, joined with lead and project names, ordered by session time.
func (r *SummaryRepository) TodaySessions(ctx context.Context, organizationID string, day string) ([]types.SessionItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, COALESCE(s.name, ''), s.session_date, COALESCE(s.session_time, ''),
		        COALESCE(s.location, ''), COALESCE(s.notes, ''),
		        COALESCE(l.name, ''), COALESCE(p.name, '')
		 FROM sessions s
		 LEFT JOIN leads l ON l.id = s.lead_id
		 LEFT JOIN projects p ON p.id = s.project_id
		 WHERE s.organization_id = $1
		   AND s.session_date = $2
		 ORDER BY s.session_time`,
		organizationID,
		day,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load today's sessions", err)
	}
	return collectSessions(rows)
}

// PastUnresolvedSessions returns sessions before the given day that are still
// awaiting an outcome (not completed or cancelled), newest first, capped to
// pastSessionsLimit.
func (r *SummaryRepository) PastUnresolvedSessions(ctx context.Context, organizationID string, before string) ([]types.SessionItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, COALESCE(s.name, ''), s.session_date, COALESCE(s.session_time, ''),
		        COALESCE(s.location, ''), COALESCE(s.notes, ''),
		        COALESCE(l.name, ''), COALESCE(p.name, '')
		 FROM sessions s
		 LEFT JOIN leads l ON l.id = s.lead_id
		 LEFT JOIN projects p ON p.id = s.project_id
		 WHERE s.organization_id = $1
		   AND s.session_date < $2
		   AND s.status NOT IN ('completed', 'cancelled')
		 ORDER BY s.session_date DESC
		 LIMIT $3`,
		organizationID,
		before,
		pastSessionsLimit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load past sessions", err)
	}
	return collectSessions(rows)
}

// TodayActivities returns incomplete activities with a reminder on the given
// calendar day, joined with lead and project names.
func (r *SummaryRepository) TodayActivities(ctx context.Context, organizationID string, day string) ([]types.ActivityItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, COALESCE(a.type, ''), COALESCE(a.content, ''),
		        a.reminder_date, COALESCE(a.reminder_time, ''),
		        COALESCE(l.name, ''), COALESCE(p.name, '')
		 FROM activities a
		 LEFT JOIN leads l ON l.id = a.lead_id
		 LEFT JOIN projects p ON p.id = a.project_id
		 WHERE a.organization_id = $1
		   AND a.completed = false
		   AND a.reminder_date = $2
		 ORDER BY a.reminder_time`,
		organizationID,
		day,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load today's activities", err)
	}
	return collectActivities(rows)
}

// OverdueActivities returns incomplete activities whose reminder date has
// passed, oldest first.
func (r *SummaryRepository) OverdueActivities(ctx context.Context, organizationID string, before string) ([]types.ActivityItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, COALESCE(a.type, ''), COALESCE(a.content, ''),
		        a.reminder_date, COALESCE(a.reminder_time, ''),
		        COALESCE(l.name, ''), COALESCE(p.name, '')
		 FROM activities a
		 LEFT JOIN leads l ON l.id = a.lead_id
		 LEFT JOIN projects p ON p.id = a.project_id
		 WHERE a.organization_id = $1
		   AND a.completed = false
		   AND a.reminder_date < $2
		 ORDER BY a.reminder_date`,
		organizationID,
		before,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load overdue activities", err)
	}
	return collectActivities(rows)
}

func collectSessions(rows pgx.Rows) ([]types.SessionItem, error) {
	defer rows.Close()

	var sessions []types.SessionItem
	for rows.Next() {
		var (
			s    types.SessionItem
			date time.Time
		)
		if err := rows.Scan(&s.ID, &s.Name, &date, &s.SessionTime,
			&s.Location, &s.Notes, &s.LeadName, &s.ProjectName); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan session row", err)
		}
		s.SessionDate = date.Format("2006-01-02")
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating session rows", err)
	}
	return sessions, nil
}

func collectActivities(rows pgx.Rows) ([]types.ActivityItem, error) {
	defer rows.Close()

	var activities []types.ActivityItem
	for rows.Next() {
		var (
			a    types.ActivityItem
			date time.Time
		)
		if err := rows.Scan(&a.ID, &a.Type, &a.Content, &date,
			&a.ReminderTime, &a.LeadName, &a.ProjectName); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan activity row", err)
		}
		a.ReminderDate = date.Format("2006-01-02")
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating activity rows", err)
	}
	return activities, nil
}
