package repository

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"

	"github.com/google/uuid"
)

// PostPage is one page of a post listing. Cursor is the id of the last
// post in the page, usable with backend.CursorAfter for the next page.
type PostPage struct {
	Total  int64
	Posts  []models.Post
	Cursor string
}

// PostRepository handles remote operations for post documents
type PostRepository struct {
	db         backend.Databases
	collection string
}

// NewPostRepository creates a new post repository
func NewPostRepository(db backend.Databases, collection string) *PostRepository {
	return &PostRepository{db: db, collection: collection}
}

// Create creates a new post document
func (r *PostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	data := map[string]any{
		"creator":  post.CreatorID,
		"caption":  post.Caption,
		"imageUrl": post.ImageURL,
		"imageId":  post.ImageID,
		"location": post.Location,
		"tags":     post.Tags,
		"likes":    post.Likes,
	}
	raw, err := r.db.CreateDocument(ctx, r.collection, uuid.New().String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return decodeDocument[models.Post](raw)
}

// GetByID retrieves a post by document id
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	raw, err := r.db.GetDocument(ctx, r.collection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return decodeDocument[models.Post](raw)
}

// List runs a list query and returns the page with the matched total
func (r *PostRepository) List(ctx context.Context, queries ...backend.Query) ([]models.Post, int64, error) {
	page, err := r.ListPage(ctx, queries...)
	if err != nil {
		return nil, 0, err
	}
	return page.Posts, page.Total, nil
}

// ListPage runs a list query and returns the page with its cursor
func (r *PostRepository) ListPage(ctx context.Context, queries ...backend.Query) (*PostPage, error) {
	list, err := r.db.ListDocuments(ctx, r.collection, queries...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts, err := decodeList[models.Post](list)
	if err != nil {
		return nil, err
	}
	return &PostPage{Total: list.Total, Posts: posts, Cursor: list.LastID()}, nil
}

// Update rewrites the editable fields of a post
func (r *PostRepository) Update(ctx context.Context, id, caption, imageURL, imageID, location string, tags []string) (*models.Post, error) {
	data := map[string]any{
		"caption":  caption,
		"imageUrl": imageURL,
		"imageId":  imageID,
		"location": location,
		"tags":     tags,
	}
	raw, err := r.db.UpdateDocument(ctx, r.collection, id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return decodeDocument[models.Post](raw)
}

// UpdateLikes replaces the whole likes set of a post. Last writer wins;
// there is no server-side merge.
func (r *PostRepository) UpdateLikes(ctx context.Context, id string, likes []string) (*models.Post, error) {
	raw, err := r.db.UpdateDocument(ctx, r.collection, id, map[string]any{"likes": likes})
	if err != nil {
		return nil, fmt.Errorf("failed to update likes: %w", err)
	}
	return decodeDocument[models.Post](raw)
}

// UpdateImageURL rewrites only the stored image URL of a post
func (r *PostRepository) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	_, err := r.db.UpdateDocument(ctx, r.collection, id, map[string]any{"imageUrl": imageURL})
	if err != nil {
		return fmt.Errorf("failed to update post image url: %w", err)
	}
	return nil
}

// Delete removes a post document
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.DeleteDocument(ctx, r.collection, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
