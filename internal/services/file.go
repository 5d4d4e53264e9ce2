package services

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"

	"github.com/google/uuid"
)

// FileService handles uploads to the platform's file bucket
type FileService struct {
	storage backend.Storage
}

// NewFileService creates a new file service
func NewFileService(storage backend.Storage) *FileService {
	return &FileService{storage: storage}
}

// UploadFile stores a file under a fresh id
func (s *FileService) UploadFile(ctx context.Context, file FileUpload) (*models.FileInfo, error) {
	info, err := s.storage.CreateFile(ctx, uuid.New().String(), file.Name, file.MimeType, file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return info, nil
}

// GetFileView returns the direct, non-transformed URL of a stored file
func (s *FileService) GetFileView(fileID string) string {
	return s.storage.GetFileView(fileID)
}

// DeleteFile removes a stored file
func (s *FileService) DeleteFile(ctx context.Context, fileID string) error {
	if err := s.storage.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
