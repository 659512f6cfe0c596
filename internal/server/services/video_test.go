package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/server/models"
)

type fakeVideosRepo struct {
	videos map[string]*models.Video

	createErr error
	getErr    error
}

func newFakeVideosRepo() *fakeVideosRepo {
	return &fakeVideosRepo{videos: map[string]*models.Video{}}
}

func (f *fakeVideosRepo) Create(ctx context.Context, v *models.Video) (*models.Video, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	v.ID = "v-1"
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	f.videos[v.ID] = v
	return v, nil
}

func (f *fakeVideosRepo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.videos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *v
	return &clone, nil
}

func (f *fakeVideosRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	var out []*models.Video
	for _, v := range f.videos {
		if v.OwnerID == ownerID {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeVideosRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	v, ok := f.videos[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	v.Views++
	return v.Views, nil
}

func newVideoServiceForTest(t *testing.T) (*VideoService, *fakeVideosRepo, func()) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	stubS3(t)

	repo := newFakeVideosRepo()
	rm := &fakeRepoManager{v: repo}
	media := NewMediaService(db, rm, testMediaConfig(), discardLogger())
	return NewVideoService(db, rm, media), repo, func() { _ = db.Close() }
}

func publishInput() PublishParams {
	return PublishParams{
		Title:                "My clip",
		Description:          "First upload",
		Duration:             12.5,
		VideoFilename:        "clip.mp4",
		VideoBody:            strings.NewReader("video-bytes"),
		VideoContentType:     "video/mp4",
		ThumbnailFilename:    "thumb.png",
		ThumbnailBody:        strings.NewReader("png-bytes"),
		ThumbnailContentType: "image/png",
	}
}

func TestPublish_Success(t *testing.T) {
	s, repo, done := newVideoServiceForTest(t)
	defer done()

	got, err := s.Publish(context.Background(), "u-1", publishInput())
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if got.ID != "v-1" || got.OwnerID != "u-1" || !got.IsPublished {
		t.Fatalf("unexpected video: %+v", got)
	}
	if got.VideoURL == "" || got.ThumbnailURL == "" {
		t.Fatalf("media urls not set: %+v", got)
	}
	if _, ok := repo.videos["v-1"]; !ok {
		t.Fatalf("record not stored")
	}
}

func TestPublish_MissingTitle(t *testing.T) {
	s, _, done := newVideoServiceForTest(t)
	defer done()

	in := publishInput()
	in.Title = "  "

	_, err := s.Publish(context.Background(), "u-1", in)
	if !errors.Is(err, common.ErrorBadRequest) {
		t.Fatalf("want common.ErrorBadRequest, got %v", err)
	}
}

func TestPublish_MissingMedia(t *testing.T) {
	s, _, done := newVideoServiceForTest(t)
	defer done()

	in := publishInput()
	in.VideoBody = nil

	_, err := s.Publish(context.Background(), "u-1", in)
	if !errors.Is(err, common.ErrorBadRequest) {
		t.Fatalf("want common.ErrorBadRequest, got %v", err)
	}
}

func TestGet_CountsView(t *testing.T) {
	s, _, done := newVideoServiceForTest(t)
	defer done()

	if _, err := s.Publish(context.Background(), "u-1", publishInput()); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	v1, err := s.Get(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	v2, err := s.Get(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if v1.Views != 1 || v2.Views != 2 {
		t.Fatalf("views not counted: %d, %d", v1.Views, v2.Views)
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _, done := newVideoServiceForTest(t)
	defer done()

	_, err := s.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByOwner_FiltersByOwner(t *testing.T) {
	s, repo, done := newVideoServiceForTest(t)
	defer done()

	if _, err := s.Publish(context.Background(), "u-1", publishInput()); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	repo.videos["v-2"] = &models.Video{ID: "v-2", OwnerID: "u-2", Title: "other"}

	got, err := s.ListByOwner(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 1 || got[0].OwnerID != "u-1" {
		t.Fatalf("unexpected list: %+v", got)
	}
}
