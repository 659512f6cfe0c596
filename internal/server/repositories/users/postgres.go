package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/dbx"
	"github.com/avelins/cliptube/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// PostgresRepository implements Repository over dbx.DBTX (satisfied by both
// *sql.DB and *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, fullname, password_hash,
	avatar_key, avatar_url, cover_key, cover_url, refresh_token, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.AvatarKey, &user.AvatarURL, &user.CoverKey, &user.CoverURL,
		&user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, fullname, password_hash, avatar_key, avatar_url, cover_key, cover_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarKey, user.AvatarURL, user.CoverKey, user.CoverURL).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByLogin resolves an account by username or email. Usernames are stored
// lowercase, so the username side of the lookup is case-insensitive.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = lower($1) OR email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// RotateRefreshToken is a compare-and-swap on the refresh token slot: the
// update only matches while the stored value still equals oldToken, so of two
// concurrent rotations with the same presented token at most one can win.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, id string, oldToken, newToken string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2 AND refresh_token = $3`

	res, err := r.db.ExecContext(ctx, query, newToken, id, oldToken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrRefreshTokenReused
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, fullName, email string) (*models.User, error) {
	query := `
		UPDATE users
		SET fullname = coalesce(nullif($1, ''), fullname),
		    email = coalesce(nullif($2, ''), email),
		    updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, fullName, email, id))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id string, key, url string) (*models.User, error) {
	query := `
		UPDATE users
		SET avatar_key = $1, avatar_url = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, key, url, id))
}

func (r *PostgresRepository) UpdateCover(ctx context.Context, id string, key, url string) (*models.User, error) {
	query := `
		UPDATE users
		SET cover_key = $1, cover_url = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, key, url, id))
}
