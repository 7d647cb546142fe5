package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lumiso/internal/types"
)

// IdentityRepository resolves user ids to email addresses, display names, and
// language preferences.
type IdentityRepository struct {
	db DBTX
}

// NewIdentityRepository creates an IdentityRepository backed by the given
// database connection.
func NewIdentityRepository(db DBTX) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// GetUserByID resolves a user id to its email and display name.
func (r *IdentityRepository) GetUserByID(ctx context.Context, userID string) (*types.UserIdentity, error) {
	var (
		u        types.UserIdentity
		email    *string
		fullName *string
	)
	row := r.db.QueryRow(ctx,
		`SELECT id, email, full_name
		 FROM profiles
		 WHERE id = $1`,
		userID,
	)
	if err := row.Scan(&u.ID, &email, &fullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load user profile", err)
	}
	if email != nil {
		u.Email = *email
	}
	if fullName != nil {
		u.DisplayName = *fullName
	}
	return &u, nil
}

// GetUserLanguage returns the user's preferred language code, or "" when no
// preference row exists.
func (r *IdentityRepository) GetUserLanguage(ctx context.Context, userID string) (string, error) {
	var code string
	row := r.db.QueryRow(ctx,
		`SELECT language_code
		 FROM user_language_preferences
		 WHERE user_id = $1`,
		userID,
	)
	if err := row.Scan(&code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to load language preference", err)
	}
	return code, nil
}
