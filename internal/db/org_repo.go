package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lumiso/internal/types"
)

// OrganizationRepository reads organization branding and locale context for
// email rendering.
type OrganizationRepository struct {
	db DBTX
}

// NewOrganizationRepository creates an OrganizationRepository backed by the
// given database connection.
func NewOrganizationRepository(db DBTX) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Branding defaults applied when an organization has not customized its
// settings. These match the product's stock identity.
const (
	DefaultBusinessName = "Lumiso"
	DefaultBrandColor   = "#1EB29F"
	DefaultDateFormat   = "DD/MM/YYYY"
	DefaultTimeFormat   = "12-hour"
)

// GetSettings loads branding and locale settings for an organization,
// applying product defaults for unset values. A missing organization row is
// an error; a missing settings value is not.
func (r *OrganizationRepository) GetSettings(ctx context.Context, organizationID string) (*types.OrganizationSettings, error) {
	var (
		s               types.OrganizationSettings
		businessName    *string
		brandColor      *string
		logoURL         *string
		preferredLocale *string
		timezone        *string
		dateFormat      *string
		timeFormat      *string
	)
	row := r.db.QueryRow(ctx,
		`SELECT o.id, o.name, o.brand_color, o.logo_url, o.preferred_locale,
		        o.timezone, o.date_format, o.time_format
		 FROM organizations o
		 WHERE o.id = $1`,
		organizationID,
	)
	err := row.Scan(&s.OrganizationID, &businessName, &brandColor, &logoURL,
		&preferredLocale, &timezone, &dateFormat, &timeFormat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load organization settings", err)
	}

	s.BusinessName = stringOr(businessName, DefaultBusinessName)
	s.BrandColor = stringOr(brandColor, DefaultBrandColor)
	s.LogoURL = stringOr(logoURL, "")
	s.PreferredLocale = stringOr(preferredLocale, "")
	s.Timezone = stringOr(timezone, "UTC")
	s.DateFormat = stringOr(dateFormat, DefaultDateFormat)
	s.TimeFormat = stringOr(timeFormat, DefaultTimeFormat)
	return &s, nil
}

// stringOr dereferences a nullable column with a fallback for NULL or empty.
func stringOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
