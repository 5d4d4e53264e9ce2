package repository

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"

	"github.com/google/uuid"
)

// comments are listed newest first, capped per post
const commentPageLimit = 100

// CommentRepository handles remote operations for comment documents
type CommentRepository struct {
	db         backend.Databases
	collection string
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db backend.Databases, collection string) *CommentRepository {
	return &CommentRepository{db: db, collection: collection}
}

// Create creates a comment on a post
func (r *CommentRepository) Create(ctx context.Context, postID, userID, text string) (*models.Comment, error) {
	data := map[string]any{
		"post": postID,
		"user": userID,
		"text": text,
	}
	raw, err := r.db.CreateDocument(ctx, r.collection, uuid.New().String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return decodeDocument[models.Comment](raw)
}

// ListByPost returns the newest comments of a post
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	list, err := r.db.ListDocuments(ctx, r.collection,
		backend.Equal("post", postID),
		backend.OrderDesc("$createdAt"),
		backend.Limit(commentPageLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return decodeList[models.Comment](list)
}
