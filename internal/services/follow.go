package services

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/repository"
)

// FollowService handles follow-edge operations. Idempotence is emulated
// with a check-then-act sequence; it is not atomic, so two racing
// requests can still create a duplicate edge. The remote store offers no
// uniqueness constraint to lean on.
type FollowService struct {
	follows *repository.FollowRepository
}

// NewFollowService creates a new follow service
func NewFollowService(follows *repository.FollowRepository) *FollowService {
	return &FollowService{follows: follows}
}

// FollowUser records a follow edge unless one already exists. Returns
// (nil, nil) when already following.
func (s *FollowService) FollowUser(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	if followerID == "" || followingID == "" {
		return nil, ErrMissingUserID
	}

	existing, err := s.follows.Find(ctx, followerID, followingID)
	if err != nil {
		return nil, fmt.Errorf("failed to follow user: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	follow, err := s.follows.Create(ctx, followerID, followingID)
	if err != nil {
		return nil, fmt.Errorf("failed to follow user: %w", err)
	}
	return follow, nil
}

// UnfollowUser removes the follow edge if one exists. Returns false when
// there was nothing to remove.
func (s *FollowService) UnfollowUser(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, ErrMissingUserID
	}

	existing, err := s.follows.Find(ctx, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow user: %w", err)
	}
	if len(existing) == 0 {
		return false, nil
	}

	if err := s.follows.Delete(ctx, existing[0].ID); err != nil {
		return false, fmt.Errorf("failed to unfollow user: %w", err)
	}
	return true, nil
}

// CheckIsFollowing reports whether follower follows following
func (s *FollowService) CheckIsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	existing, err := s.follows.Find(ctx, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return len(existing) > 0, nil
}

// GetFollowersCount returns how many users follow userID
func (s *FollowService) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	return s.follows.CountFollowers(ctx, userID)
}

// GetFollowingCount returns how many users userID follows
func (s *FollowService) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	return s.follows.CountFollowing(ctx, userID)
}
