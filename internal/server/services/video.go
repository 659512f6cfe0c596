package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/server/models"
	"github.com/avelins/cliptube/internal/server/repositories/repomanager"
)

// PublishParams carries the input for publishing a video. The media readers
// are streamed to object storage before the record is created.
type PublishParams struct {
	Title                string
	Description          string
	Duration             float64
	VideoFilename        string
	VideoBody            io.Reader
	VideoContentType     string
	ThumbnailFilename    string
	ThumbnailBody        io.Reader
	ThumbnailContentType string
}

// VideoService manages video records and their media objects.
type VideoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       *MediaService
}

func NewVideoService(db *sql.DB, m repomanager.RepositoryManager, media *MediaService) *VideoService {
	return &VideoService{db: db, repomanager: m, media: media}
}

// Publish uploads the video file and thumbnail and creates the record.
func (s *VideoService) Publish(ctx context.Context, ownerID string, p PublishParams) (*models.Video, error) {

	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", common.ErrorBadRequest)
	}
	if p.VideoBody == nil || p.ThumbnailBody == nil {
		return nil, fmt.Errorf("%w: video file and thumbnail are required", common.ErrorBadRequest)
	}

	videoKey, videoURL, err := s.media.Upload(ctx, "videos/files", p.VideoFilename, p.VideoBody, p.VideoContentType)
	if err != nil {
		return nil, common.ErrorInternal
	}
	thumbKey, thumbURL, err := s.media.Upload(ctx, "videos/thumbnails", p.ThumbnailFilename, p.ThumbnailBody, p.ThumbnailContentType)
	if err != nil {
		return nil, common.ErrorInternal
	}

	video := &models.Video{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(p.Title),
		Description:  strings.TrimSpace(p.Description),
		VideoKey:     videoKey,
		VideoURL:     videoURL,
		ThumbnailKey: thumbKey,
		ThumbnailURL: thumbURL,
		Duration:     p.Duration,
		IsPublished:  true,
	}

	repo := s.repomanager.Videos(s.db)
	video, err = repo.Create(ctx, video)
	if err != nil {
		return nil, fmt.Errorf("error creating video: %w", err)
	}

	return video, nil
}

// Get returns a video by id, counting the access as a view.
func (s *VideoService) Get(ctx context.Context, id string) (*models.Video, error) {
	repo := s.repomanager.Videos(s.db)

	video, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	views, err := repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, common.ErrorInternal
	}
	video.Views = views

	return video, nil
}

// ListByOwner returns the videos owned by the given account.
func (s *VideoService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	repo := s.repomanager.Videos(s.db)
	videos, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return videos, nil
}
