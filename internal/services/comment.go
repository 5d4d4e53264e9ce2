package services

import (
	"context"

	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/repository"
)

// CommentService handles post comments
type CommentService struct {
	comments *repository.CommentRepository
}

// NewCommentService creates a new comment service
func NewCommentService(comments *repository.CommentRepository) *CommentService {
	return &CommentService{comments: comments}
}

// CreateComment adds a comment to a post
func (s *CommentService) CreateComment(ctx context.Context, postID, userID, text string) (*models.Comment, error) {
	if postID == "" {
		return nil, ErrMissingPostID
	}
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.comments.Create(ctx, postID, userID, text)
}

// GetComments returns the newest comments of a post
func (s *CommentService) GetComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if postID == "" {
		return nil, ErrMissingPostID
	}
	return s.comments.ListByPost(ctx, postID)
}
