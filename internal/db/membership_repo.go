package db

import (
	"context"

	"lumiso/internal/types"
)

// MembershipRepository reads active organization membership rows, the
// scheduler's source of daily-summary recipients.
type MembershipRepository struct {
	db DBTX
}

// NewMembershipRepository creates a MembershipRepository backed by the given
// database connection.
func NewMembershipRepository(db DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// ActiveMembers returns active memberships, optionally scoped to one
// organization when organizationID is non-empty.
func (r *MembershipRepository) ActiveMembers(ctx context.Context, organizationID string) ([]types.Member, error) {
	rows, err := r.db.Query(ctx,
		`SELECT organization_id, user_id, role
		 FROM organization_members
		 WHERE status = 'active'
		   AND ($1::text IS NULL OR organization_id = $1)`,
		nilIfEmpty(organizationID),
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load active members", err)
	}
	defer rows.Close()

	var members []types.Member
	for rows.Next() {
		var m types.Member
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Role); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan member row", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating member rows", err)
	}
	return members, nil
}
