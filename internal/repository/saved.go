package repository

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"

	"github.com/google/uuid"
)

// SavedPostRepository handles remote operations for bookmark join records.
// Uniqueness of (user, post) is not enforced here or remotely; duplicate
// saves are possible.
type SavedPostRepository struct {
	db         backend.Databases
	collection string
}

// NewSavedPostRepository creates a new saved-post repository
func NewSavedPostRepository(db backend.Databases, collection string) *SavedPostRepository {
	return &SavedPostRepository{db: db, collection: collection}
}

// Create records a bookmark of a post by a user
func (r *SavedPostRepository) Create(ctx context.Context, userID, postID string) (*models.SavedPost, error) {
	data := map[string]any{
		"user": userID,
		"post": postID,
	}
	raw, err := r.db.CreateDocument(ctx, r.collection, uuid.New().String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}
	return decodeDocument[models.SavedPost](raw)
}

// ListByUser returns all bookmarks of a user, newest first
func (r *SavedPostRepository) ListByUser(ctx context.Context, userID string) ([]models.SavedPost, error) {
	list, err := r.db.ListDocuments(ctx, r.collection,
		backend.Equal("user", userID),
		backend.OrderDesc("$createdAt"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved posts: %w", err)
	}
	return decodeList[models.SavedPost](list)
}

// Delete removes a bookmark record by id
func (r *SavedPostRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.DeleteDocument(ctx, r.collection, id); err != nil {
		return fmt.Errorf("failed to delete saved post: %w", err)
	}
	return nil
}
