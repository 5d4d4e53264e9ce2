package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	userPageSize      = 12
	defaultUsersLimit = 10000

	// follower counts are fetched concurrently, one list query per user
	followerFanOutLimit = 8
)

// UpdateUserInput is the input of UpdateUser. File is nil when the
// avatar image is unchanged.
type UpdateUserInput struct {
	UserID   string
	Name     string
	Bio      string
	ImageURL string
	ImageID  string
	File     *FileUpload
}

// UserService handles user-profile operations
type UserService struct {
	users   *repository.UserRepository
	follows *repository.FollowRepository
	files   *FileService
}

// NewUserService creates a new user service
func NewUserService(users *repository.UserRepository, follows *repository.FollowRepository, files *FileService) *UserService {
	return &UserService{users: users, follows: follows, files: files}
}

// GetUsers returns up to limit users ordered by followers count, most
// followed first. Each user costs one extra count query against the
// follow collection; acceptable only while the dataset stays small.
func (s *UserService) GetUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = defaultUsersLimit
	}

	users, _, err := s.users.List(ctx,
		backend.OrderDesc("$createdAt"),
		backend.Limit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(followerFanOutLimit)
	for i := range users {
		i := i
		g.Go(func() error {
			count, err := s.follows.CountFollowers(gctx, users[i].ID)
			if err != nil {
				// A failed count ranks the user at zero instead of
				// sinking the whole listing.
				log.Warn().Err(err).Str("user_id", users[i].ID).Msg("Failed to count followers")
				return nil
			}
			users[i].FollowersCount = count
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].FollowersCount > users[j].FollowersCount
	})

	return users, nil
}

// GetUserByID fetches a single user profile
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateUser rewrites a user profile. A replacement avatar file is
// uploaded before the document update; the old file is deleted only
// after the update has succeeded.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	if in.UserID == "" {
		return nil, ErrMissingUserID
	}

	imageURL := in.ImageURL
	imageID := in.ImageID
	hasFile := in.File != nil

	if hasFile {
		uploaded, err := s.files.UploadFile(ctx, *in.File)
		if err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		fileURL := s.files.GetFileView(uploaded.ID)
		if fileURL == "" {
			s.deleteFileBestEffort(ctx, uploaded.ID)
			return nil, fmt.Errorf("failed to update user: no view url for file %s", uploaded.ID)
		}
		imageURL = fileURL
		imageID = uploaded.ID
	}

	updated, err := s.users.UpdateProfile(ctx, in.UserID, in.Name, in.Bio, imageURL, imageID)
	if err != nil {
		if hasFile {
			s.deleteFileBestEffort(ctx, imageID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if hasFile && in.ImageID != "" {
		s.deleteFileBestEffort(ctx, in.ImageID)
	}

	return updated, nil
}

// SearchUsers matches users by name
func (s *UserService) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	users, _, err := s.users.List(ctx, backend.Search("name", term))
	return users, err
}

// GetInfiniteUsers returns one page of users, oldest first. cursor is
// empty for the first page.
func (s *UserService) GetInfiniteUsers(ctx context.Context, cursor string) (*repository.UserPage, error) {
	queries := []backend.Query{
		backend.OrderAsc("$createdAt"),
		backend.Limit(userPageSize),
	}
	if cursor != "" {
		queries = append(queries, backend.CursorAfter(cursor))
	}
	return s.users.ListPage(ctx, queries...)
}

func (s *UserService) deleteFileBestEffort(ctx context.Context, fileID string) {
	if err := s.files.DeleteFile(ctx, fileID); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("Compensating file deletion failed")
	}
}
