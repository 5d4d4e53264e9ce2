package services

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/repository"

	"github.com/rs/zerolog/log"
)

// cleanPageLimit bounds one cleanup run to the first page of each
// collection. Datasets beyond it need repeated runs.
const cleanPageLimit = 100

// MaintenanceService holds one-shot maintenance operations
type MaintenanceService struct {
	posts   *repository.PostRepository
	users   *repository.UserRepository
	files   *FileService
	avatars backend.Avatars
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(posts *repository.PostRepository, users *repository.UserRepository, files *FileService, avatars backend.Avatars) *MaintenanceService {
	return &MaintenanceService{posts: posts, users: users, files: files, avatars: avatars}
}

// CleanImageURLs re-derives the direct (non-transformed) view URL for
// every post and user image in the first page of each collection and
// persists it. Returns the number of documents updated. Per-user
// failures are skipped; a post failure aborts the run.
func (s *MaintenanceService) CleanImageURLs(ctx context.Context) (int, error) {
	updated := 0

	posts, _, err := s.posts.List(ctx, backend.Limit(cleanPageLimit))
	if err != nil {
		return updated, fmt.Errorf("failed to list posts for cleanup: %w", err)
	}
	for _, post := range posts {
		if post.ImageID == "" {
			continue
		}
		directURL := s.files.GetFileView(post.ImageID)
		if directURL == "" {
			continue
		}
		if err := s.posts.UpdateImageURL(ctx, post.ID, directURL); err != nil {
			return updated, fmt.Errorf("failed to clean post %s: %w", post.ID, err)
		}
		updated++
	}

	users, _, err := s.users.List(ctx, backend.Limit(cleanPageLimit))
	if err != nil {
		return updated, fmt.Errorf("failed to list users for cleanup: %w", err)
	}
	for _, user := range users {
		imageURL := ""
		if user.ImageID != "" {
			imageURL = s.files.GetFileView(user.ImageID)
		} else {
			imageURL = s.avatars.GetInitials(user.Name)
		}
		if imageURL == "" {
			continue
		}
		if err := s.users.UpdateImageURL(ctx, user.ID, imageURL); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("Skipping user during image cleanup")
			continue
		}
		updated++
	}

	return updated, nil
}
