package core

import (
	"context"

	"lumiso/internal/types"
)

// PreferenceResolver decides whether a notification type is enabled for a
// user within an organization.
//
// Resolution is fail open: a missing settings row, an unset flag, or a read
// error all resolve to enabled. Only an explicit false blocks delivery. User
// scope is consulted before organization scope, and within each scope the
// global flag before the per-type flag.
type PreferenceResolver struct {
	store  PreferenceStore
	logger types.Logger
}

// NewPreferenceResolver creates a PreferenceResolver.
func NewPreferenceResolver(store PreferenceStore, logger types.Logger) *PreferenceResolver {
	return &PreferenceResolver{store: store, logger: logger}
}

// Enabled reports whether the given notification type may be delivered to the
// user. Read failures log a warning and resolve to enabled; a preference
// outage must never silently drop notifications.
func (r *PreferenceResolver) Enabled(ctx context.Context, organizationID, userID string, t types.NotificationType) bool {
	userPrefs, err := r.store.GetUserSettings(ctx, userID)
	if err != nil {
		r.logger.Warn("user preference lookup failed, defaulting to enabled",
			"user_id", userID,
			"error", err.Error(),
		)
		return true
	}
	if disabled(userPrefs, t) {
		return false
	}

	orgPrefs, err := r.store.GetOrgSettings(ctx, organizationID)
	if err != nil {
		r.logger.Warn("organization preference lookup failed, defaulting to enabled",
			"organization_id", organizationID,
			"error", err.Error(),
		)
		return true
	}
	return !disabled(orgPrefs, t)
}

// disabled reports whether settings at one scope explicitly turn the type off.
func disabled(p *types.PreferenceSettings, t types.NotificationType) bool {
	if p == nil {
		return false
	}
	if p.GlobalEnabled != nil && !*p.GlobalEnabled {
		return true
	}
	if flag := p.TypeEnabled(t); flag != nil && !*flag {
		return true
	}
	return false
}
