package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/kendall-kelly/bistro-orders-api/utils"
)

// MockImageService is an in-memory ImageService for handler tests
type MockImageService struct {
	uploaded map[string]string // image key to original filename
	deleted  []string
	mu       sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{uploaded: make(map[string]string)}
}

// UploadImage validates the file and records it
func (m *MockImageService) UploadImage(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	imageKey := fmt.Sprintf("mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.uploaded[imageKey] = fileHeader.Filename
	m.mu.Unlock()

	return imageKey, nil
}

// GetImageURL returns a fake URL for any key
func (m *MockImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}
	return fmt.Sprintf("https://images.test/%s", imageKey), nil
}

// DeleteImage records the deletion
func (m *MockImageService) DeleteImage(_ context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploaded, imageKey)
	m.deleted = append(m.deleted, imageKey)
	m.mu.Unlock()

	return nil
}

// ImageExists checks if an image is currently stored
func (m *MockImageService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploaded[imageKey]
	return exists
}

// Deleted returns the keys deleted so far
func (m *MockImageService) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}
