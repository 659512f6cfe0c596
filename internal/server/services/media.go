package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/dbx"
	"github.com/avelins/cliptube/internal/logging"
	sc "github.com/avelins/cliptube/internal/server/config"
	"github.com/avelins/cliptube/internal/server/models"
	"github.com/avelins/cliptube/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// MediaService stores avatar, cover, and video media in S3-compatible object
// storage and keeps the account/video records pointing at the current objects.
type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewMediaService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: m,
		config:      config,
		logger:      logger.With("module", "media_service"),
	}
}

// StorageKey returns a unique object key under the given prefix, preserving
// the original file extension.
func StorageKey(prefix, filename string) string {
	return fmt.Sprintf("%s/%v%s", prefix, uuid.New(), strings.ToLower(filepath.Ext(filename)))
}

func (s *MediaService) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload writes an object under a fresh key below prefix and returns the key
// and its public URL.
func (s *MediaService) Upload(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, string, error) {

	client, err := s.getClient()
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	key := StorageKey(prefix, filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("s3 upload: %w", err)
	}

	return key, s.publicURL(key), nil
}

// Delete removes an object by key. Deleting a non-existent key is not an error.
func (s *MediaService) Delete(ctx context.Context, key string) error {
	client, err := s.getClient()
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

func (s *MediaService) publicURL(key string) string {
	return strings.TrimSuffix(s.config.MediaBaseURL, "/") + "/" + key
}

// UpdateAvatar uploads a new avatar for the account, points the record at it,
// and removes the superseded object.
func (s *MediaService) UpdateAvatar(ctx context.Context, userID, filename string, body io.Reader, contentType string) (*models.PublicUser, error) {
	return s.updateImage(ctx, userID, "users/avatars", filename, body, contentType, true)
}

// UpdateCover uploads a new cover image for the account, points the record at
// it, and removes the superseded object.
func (s *MediaService) UpdateCover(ctx context.Context, userID, filename string, body io.Reader, contentType string) (*models.PublicUser, error) {
	return s.updateImage(ctx, userID, "users/covers", filename, body, contentType, false)
}

func (s *MediaService) updateImage(ctx context.Context, userID, prefix, filename string, body io.Reader, contentType string, avatar bool) (*models.PublicUser, error) {

	key, url, err := s.Upload(ctx, prefix, filename, body, contentType)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var updated *models.User
	var oldKey string

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if avatar {
			oldKey = user.AvatarKey
			updated, err = repo.UpdateAvatar(ctx, userID, key, url)
		} else {
			oldKey = user.CoverKey
			updated, err = repo.UpdateCover(ctx, userID, key, url)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	// The record already points at the new object; a failed cleanup only
	// leaves an orphan behind.
	if oldKey != "" {
		if err := s.Delete(ctx, oldKey); err != nil {
			s.logger.Warn(ctx, "failed to delete superseded media object", "key", oldKey, "error", err.Error())
		}
	}

	return updated.Public(), nil
}
