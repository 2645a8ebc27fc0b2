package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"

	"github.com/rs/zerolog"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/utils"
)

// ImageService stores product images and resolves the URLs they are served from
type ImageService interface {
	// UploadImage validates and stores an image file, returns the storage key
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL returns a URL for an uploaded image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// NewImageService picks the S3 backend when a bucket is configured and local disk otherwise
func NewImageService(ctx context.Context, cfg *config.Config) (ImageService, error) {
	if !cfg.UsesS3() {
		zerolog.Ctx(ctx).Info().Str("dir", cfg.UploadDir).Msg("storing images on local disk")
		return NewLocalImageService(cfg.UploadDir), nil
	}

	s3Service, err := NewS3Service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("bucket", cfg.AWSS3Bucket).Msg("storing images in S3")
	return NewS3ImageService(s3Service), nil
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService wraps an S3 client
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage validates and uploads an image file to S3
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(ctx, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s3Key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// LocalImageService keeps images in a directory served by the API itself
type LocalImageService struct {
	dir string
}

// NewLocalImageService stores images under dir
func NewLocalImageService(dir string) *LocalImageService {
	return &LocalImageService{dir: dir}
}

// Dir returns the directory images are stored in
func (s *LocalImageService) Dir() string {
	return s.dir
}

// UploadImage validates and saves an image file to disk
func (s *LocalImageService) UploadImage(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return filename, nil
}

// GetImageURL returns the API path the image is served from
func (s *LocalImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	return utils.GetImageURL(imageKey), nil
}

// DeleteImage removes an image file; a missing file is not an error
func (s *LocalImageService) DeleteImage(_ context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	path, err := utils.SafeUploadPath(s.dir, imageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
