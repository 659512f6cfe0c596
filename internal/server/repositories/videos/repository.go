// Package videos declares the repository contract for video records.
package videos

import (
	"context"

	"github.com/avelins/cliptube/internal/server/models"
)

// Repository defines persistence operations for video records.
type Repository interface {
	// Create inserts a new video and returns it with ID and timestamps set.
	Create(ctx context.Context, video *models.Video) (*models.Video, error)

	// GetByID returns the video with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Video, error)

	// ListByOwner returns the videos owned by the given account, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error)

	// IncrementViews bumps the view counter and returns the new value.
	IncrementViews(ctx context.Context, id string) (int64, error)
}
