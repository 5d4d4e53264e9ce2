package repository

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"

	"github.com/google/uuid"
)

// FollowRepository handles remote operations for follow join records
type FollowRepository struct {
	db         backend.Databases
	collection string
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db backend.Databases, collection string) *FollowRepository {
	return &FollowRepository{db: db, collection: collection}
}

// Create records a follow edge from follower to following
func (r *FollowRepository) Create(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	data := map[string]any{
		"follower":  followerID,
		"following": followingID,
	}
	raw, err := r.db.CreateDocument(ctx, r.collection, uuid.New().String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}
	return decodeDocument[models.Follow](raw)
}

// Find returns the existing follow records for the (follower, following)
// pair. At most one is expected, but the store does not enforce that.
func (r *FollowRepository) Find(ctx context.Context, followerID, followingID string) ([]models.Follow, error) {
	list, err := r.db.ListDocuments(ctx, r.collection,
		backend.Equal("follower", followerID),
		backend.Equal("following", followingID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find follow: %w", err)
	}
	return decodeList[models.Follow](list)
}

// CountFollowers returns how many users follow userID
func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	list, err := r.db.ListDocuments(ctx, r.collection, backend.Equal("following", userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return list.Total, nil
}

// CountFollowing returns how many users userID follows
func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	list, err := r.db.ListDocuments(ctx, r.collection, backend.Equal("follower", userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return list.Total, nil
}

// Delete removes a follow record by id
func (r *FollowRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.DeleteDocument(ctx, r.collection, id); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}
