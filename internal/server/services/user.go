// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification, the
// access/refresh token lifecycle (issue, rotate, revoke), and account
// maintenance operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/cryptox"
	"github.com/avelins/cliptube/internal/dbx"
	"github.com/avelins/cliptube/internal/server/auth"
	"github.com/avelins/cliptube/internal/server/models"
	"github.com/avelins/cliptube/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterParams carries the input for account creation. Avatar and cover
// fields refer to media already placed in object storage by the caller.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	AvatarKey string
	AvatarURL string
	CoverKey  string
	CoverURL  string
}

// UserService provides account and session operations:
//   - Register: create accounts
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate the refresh token and mint a new pair
//   - Logout: revoke the refresh chain
//   - Authenticate: resolve an access token to an account
//   - ChangePassword / UpdateProfile / GetByID: account maintenance
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
}

// NewUserService constructs a UserService using repositories and the token codec.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec) *UserService {
	return &UserService{db: db, repomanager: m, codec: codec}
}

// Register validates the input, hashes the password, and creates the account.
// A duplicate username or email yields common.ErrorConflict. The returned
// projection carries no password hash or refresh token.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*models.PublicUser, error) {

	for _, field := range []string{p.Username, p.Email, p.Password, p.FullName} {
		if strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("%w: all fields must be required", common.ErrorBadRequest)
		}
	}
	if !strings.Contains(p.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrorBadRequest)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     strings.ToLower(strings.TrimSpace(p.Username)),
		Email:        strings.TrimSpace(p.Email),
		FullName:     strings.TrimSpace(p.FullName),
		PasswordHash: hash,
		AvatarKey:    p.AvatarKey,
		AvatarURL:    p.AvatarURL,
		CoverKey:     p.CoverKey,
		CoverURL:     p.CoverURL,
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user.Public(), nil
}

// Login resolves the account by username or email, verifies the password, and
// returns a fresh token pair plus the account projection. The new refresh
// token overwrites any prior value, invalidating the previous refresh chain.
func (s *UserService) Login(ctx context.Context, login, password string) (*TokenPair, *models.PublicUser, error) {

	if strings.TrimSpace(login) == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: missing credentials", common.ErrorBadRequest)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, common.ErrorInternal
	}

	ok, err := cryptox.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	if err := repo.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, nil, common.ErrorInternal
	}

	return pair, user.Public(), nil
}

// Refresh exchanges a valid refresh token for a new token pair, rotating the
// stored token. A presented token that no longer matches the stored slot
// (already exchanged, or revoked by a logout) yields
// common.ErrRefreshTokenReused even when its signature and expiry are fine.
func (s *UserService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {

	if presented == "" {
		return nil, fmt.Errorf("%w: no refresh token presented", common.ErrorBadRequest)
	}

	userID, err := s.codec.Verify(presented, auth.TokenKindRefresh)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return nil, common.ErrRefreshTokenReused
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// Compare-and-swap: if a concurrent refresh or logout got here first the
	// stored value no longer equals the presented one and the rotation fails.
	if err := repo.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, common.ErrRefreshTokenReused) {
			return nil, common.ErrRefreshTokenReused
		}
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// Logout clears the account's refresh token slot, terminating the refresh
// chain. It is idempotent: clearing an already-empty slot is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Authenticate verifies an access token and resolves the account it names.
// Every failure, from a missing or malformed token to an account that no
// longer exists, is reported as common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error) {

	if accessToken == "" {
		return nil, common.ErrorUnauthorized
	}

	userID, err := s.codec.Verify(accessToken, auth.TokenKindAccess)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// A deleted account can hold a still-valid access token for at
			// most the access TTL; reject it here.
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return user.Public(), nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. The read and write run in one transaction so a concurrent change
// cannot interleave between them.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {

	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: missing credentials", common.ErrorBadRequest)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return common.ErrorInternal
		}

		ok, err := cryptox.CheckPassword(oldPassword, user.PasswordHash)
		if err != nil {
			return common.ErrorInternal
		}
		if !ok {
			return common.ErrorUnauthorized
		}

		hash, err := cryptox.HashPassword(newPassword)
		if err != nil {
			return common.ErrorInternal
		}

		if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
			return common.ErrorInternal
		}
		return nil
	})
}

// UpdateProfile updates fullname and/or email. At least one field must be
// provided; an email already taken by another account yields
// common.ErrorConflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error) {

	if strings.TrimSpace(fullName) == "" && strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorBadRequest)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.UpdateProfile(ctx, userID, strings.TrimSpace(fullName), strings.TrimSpace(email))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrorNotFound
		case errors.Is(err, common.ErrorConflict):
			return nil, common.ErrorConflict
		}
		return nil, common.ErrorInternal
	}

	return user.Public(), nil
}

// GetByID returns the account projection for the given id.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.PublicUser, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user.Public(), nil
}

func (s *UserService) issuePair(userID string) (*TokenPair, error) {
	access, err := s.codec.Issue(userID, auth.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(userID, auth.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
