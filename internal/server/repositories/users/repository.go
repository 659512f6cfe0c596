// Package users declares the repository contract for account records.
package users

import (
	"context"

	"github.com/avelins/cliptube/internal/server/models"
)

// Repository defines the persistence operations the account services need.
//
// The store owns uniqueness of username and email (surfaced as
// common.ErrorConflict) and the single refresh-token slot per account.
type Repository interface {
	// Create inserts a new account and returns it with ID and timestamps set.
	// A duplicate username or email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the account with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByLogin resolves an account by username (case-insensitive) or email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)

	// UpdateRefreshToken unconditionally overwrites the account's refresh
	// token slot. Passing nil clears it (logout).
	UpdateRefreshToken(ctx context.Context, id string, token *string) error

	// RotateRefreshToken atomically replaces oldToken with newToken in the
	// account's slot. When the stored value no longer equals oldToken (it was
	// already rotated, or cleared by a logout) it returns
	// common.ErrRefreshTokenReused; at most one of two concurrent rotations
	// with the same oldToken can succeed.
	RotateRefreshToken(ctx context.Context, id string, oldToken, newToken string) error

	// UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// UpdateProfile updates fullname and/or email; empty values keep the
	// stored ones. Returns the updated account.
	UpdateProfile(ctx context.Context, id string, fullName, email string) (*models.User, error)

	// UpdateAvatar stores a new avatar object key and URL, returning the
	// updated account.
	UpdateAvatar(ctx context.Context, id string, key, url string) (*models.User, error)

	// UpdateCover stores a new cover-image object key and URL, returning the
	// updated account.
	UpdateCover(ctx context.Context, id string, key, url string) (*models.User, error)
}
