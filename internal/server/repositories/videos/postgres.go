package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/dbx"
	"github.com/avelins/cliptube/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const videoColumns = `id, owner_id, title, description, video_key, video_url,
	thumbnail_key, thumbnail_url, duration, views, is_published, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {

	query :=
		`INSERT INTO videos (owner_id, title, description, video_key, video_url, thumbnail_key, thumbnail_url, duration, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, views, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		video.OwnerID, video.Title, video.Description,
		video.VideoKey, video.VideoURL, video.ThumbnailKey, video.ThumbnailURL,
		video.Duration, video.IsPublished).
		Scan(&video.ID, &video.Views, &video.CreatedAt, &video.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video := &models.Video{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
			&video.VideoKey, &video.VideoURL, &video.ThumbnailKey, &video.ThumbnailURL,
			&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Video
	for rows.Next() {
		video := &models.Video{}
		err := rows.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
			&video.VideoKey, &video.VideoURL, &video.ThumbnailKey, &video.ThumbnailURL,
			&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	query := `UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING views`

	var views int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&views); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return views, nil
}
