package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lumiso/internal/types"
)

// PreferenceRepository reads notification preference rows at user and
// organization scope. Absence of a row is not an error: callers receive nil
// settings and apply the fail-open default.
type PreferenceRepository struct {
	db DBTX
}

// NewPreferenceRepository creates a PreferenceRepository backed by the given
// database connection.
func NewPreferenceRepository(db DBTX) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetUserSettings loads the user-scope preference row. Returns (nil, nil)
// when no row exists.
func (r *PreferenceRepository) GetUserSettings(ctx context.Context, userID string) (*types.PreferenceSettings, error) {
	row := r.db.QueryRow(ctx,
		`SELECT notification_global_enabled, notification_daily_summary_enabled,
		        notification_new_assignment_enabled, notification_project_milestone_enabled,
		        notification_workflow_message_enabled, notification_scheduled_time
		 FROM user_settings
		 WHERE user_id = $1`,
		userID,
	)
	return scanPreferences(row, "failed to load user settings")
}

// GetOrgSettings loads the organization-scope preference row. Returns
// (nil, nil) when no row exists.
func (r *PreferenceRepository) GetOrgSettings(ctx context.Context, organizationID string) (*types.PreferenceSettings, error) {
	row := r.db.QueryRow(ctx,
		`SELECT notification_global_enabled, notification_daily_summary_enabled,
		        notification_new_assignment_enabled, notification_project_milestone_enabled,
		        notification_workflow_message_enabled, NULL
		 FROM organization_settings
		 WHERE organization_id = $1`,
		organizationID,
	)
	return scanPreferences(row, "failed to load organization settings")
}

// GetUserSettingsMap loads user-scope preference rows for many users in one
// query. Users without a row are absent from the returned map.
func (r *PreferenceRepository) GetUserSettingsMap(ctx context.Context, userIDs []string) (map[string]*types.PreferenceSettings, error) {
	result := make(map[string]*types.PreferenceSettings)
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT user_id, notification_global_enabled, notification_daily_summary_enabled,
		        notification_new_assignment_enabled, notification_project_milestone_enabled,
		        notification_workflow_message_enabled, notification_scheduled_time
		 FROM user_settings
		 WHERE user_id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load user settings batch", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID        string
			p             types.PreferenceSettings
			scheduledTime *string
		)
		if err := rows.Scan(&userID, &p.GlobalEnabled, &p.DailySummaryEnabled,
			&p.NewAssignmentEnabled, &p.ProjectMilestoneEnabled,
			&p.WorkflowMessageEnabled, &scheduledTime); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user settings row", err)
		}
		if scheduledTime != nil {
			p.ScheduledTime = *scheduledTime
		}
		prefs := p
		result[userID] = &prefs
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating user settings rows", err)
	}
	return result, nil
}

// GetOrgSettingsMap loads organization-scope preference rows for many
// organizations in one query. Organizations without a row are absent from the
// returned map.
func (r *PreferenceRepository) GetOrgSettingsMap(ctx context.Context, organizationIDs []string) (map[string]*types.PreferenceSettings, error) {
	result := make(map[string]*types.PreferenceSettings)
	if len(organizationIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT organization_id, notification_global_enabled, notification_daily_summary_enabled,
		        notification_new_assignment_enabled, notification_project_milestone_enabled,
		        notification_workflow_message_enabled
		 FROM organization_settings
		 WHERE organization_id = ANY($1)`,
		organizationIDs,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load organization settings batch", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orgID string
			p     types.PreferenceSettings
		)
		if err := rows.Scan(&orgID, &p.GlobalEnabled, &p.DailySummaryEnabled,
			&p.NewAssignmentEnabled, &p.ProjectMilestoneEnabled,
			&p.WorkflowMessageEnabled); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan organization settings row", err)
		}
		prefs := p
		result[orgID] = &prefs
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating organization settings rows", err)
	}
	return result, nil
}

// scanPreferences scans a single preference row, translating the no-row case
// into (nil, nil).
func scanPreferences(row pgx.Row, errMsg string) (*types.PreferenceSettings, error) {
	var (
		p             types.PreferenceSettings
		scheduledTime *string
	)
	err := row.Scan(&p.GlobalEnabled, &p.DailySummaryEnabled,
		&p.NewAssignmentEnabled, &p.ProjectMilestoneEnabled,
		&p.WorkflowMessageEnabled, &scheduledTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, errMsg, err)
	}
	if scheduledTime != nil {
		p.ScheduledTime = *scheduledTime
	}
	return &p, nil
}
