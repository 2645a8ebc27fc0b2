package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/utils"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestS3ImageService(t *testing.T) {
	ctx := context.Background()
	s3Mock := NewMockS3Service()
	svc := NewS3ImageService(s3Mock)

	key, err := svc.UploadImage(ctx, multipartFile(t, "pizza.jpg", []byte("jpeg bytes")))
	require.NoError(t, err)
	assert.Equal(t, "products/mock_pizza.jpg", key)
	assert.True(t, s3Mock.FileExists(key))

	url, err := svc.GetImageURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	url, err = svc.GetImageURL(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, svc.DeleteImage(ctx, key))
	assert.False(t, s3Mock.FileExists(key))
}

func TestS3ImageService_RejectsInvalidFile(t *testing.T) {
	svc := NewS3ImageService(NewMockS3Service())

	_, err := svc.UploadImage(context.Background(), multipartFile(t, "menu.gif", []byte("gif")))
	var uploadErr *utils.FileUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
}

func TestLocalImageService(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := NewLocalImageService(dir)

	key, err := svc.UploadImage(ctx, multipartFile(t, "ciorba.webp", []byte("webp bytes")))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("webp bytes"), content)

	url, err := svc.GetImageURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/uploads/"+key, url)

	require.NoError(t, svc.DeleteImage(ctx, key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, svc.DeleteImage(ctx, key))
	assert.Error(t, svc.DeleteImage(ctx, "../outside.png"))
}

func TestNewImageService_PicksBackend(t *testing.T) {
	svc, err := NewImageService(context.Background(), &config.Config{UploadDir: t.TempDir()})
	require.NoError(t, err)
	_, ok := svc.(*LocalImageService)
	assert.True(t, ok)

	svc, err = NewImageService(context.Background(), &config.Config{
		AWSRegion:          "eu-central-1",
		AWSS3Bucket:        "bistro-images",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "test",
	})
	require.NoError(t, err)
	_, ok = svc.(*S3ImageService)
	assert.True(t, ok)
}
