package repository

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"

	"github.com/google/uuid"
)

// UserPage is one page of a user listing. Cursor is the id of the last
// user in the page, usable with backend.CursorAfter for the next page.
type UserPage struct {
	Total  int64
	Users  []models.User
	Cursor string
}

// UserRepository handles remote operations for user profile documents
type UserRepository struct {
	db         backend.Databases
	collection string
}

// NewUserRepository creates a new user repository
func NewUserRepository(db backend.Databases, collection string) *UserRepository {
	return &UserRepository{db: db, collection: collection}
}

// Create creates a new user profile document
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	data := map[string]any{
		"accountId": user.AccountID,
		"name":      user.Name,
		"username":  user.Username,
		"email":     user.Email,
		"bio":       user.Bio,
		"imageId":   user.ImageID,
		"imageUrl":  user.ImageURL,
	}
	raw, err := r.db.CreateDocument(ctx, r.collection, uuid.New().String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return decodeDocument[models.User](raw)
}

// GetByID retrieves a user profile by document id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	raw, err := r.db.GetDocument(ctx, r.collection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decodeDocument[models.User](raw)
}

// GetByAccountID retrieves the user profile linked to an account
func (r *UserRepository) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	list, err := r.db.ListDocuments(ctx, r.collection, backend.Equal("accountId", accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by account: %w", err)
	}
	users, err := decodeList[models.User](list)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no user for account %s", accountID)
	}
	return &users[0], nil
}

// List runs a list query and returns the page with the matched total
func (r *UserRepository) List(ctx context.Context, queries ...backend.Query) ([]models.User, int64, error) {
	list, err := r.db.ListDocuments(ctx, r.collection, queries...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := decodeList[models.User](list)
	if err != nil {
		return nil, 0, err
	}
	return users, list.Total, nil
}

// ListPage runs a list query and returns the page with its cursor
func (r *UserRepository) ListPage(ctx context.Context, queries ...backend.Query) (*UserPage, error) {
	list, err := r.db.ListDocuments(ctx, r.collection, queries...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := decodeList[models.User](list)
	if err != nil {
		return nil, err
	}
	return &UserPage{Total: list.Total, Users: users, Cursor: list.LastID()}, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, bio, imageURL, imageID string) (*models.User, error) {
	data := map[string]any{
		"name":     name,
		"bio":      bio,
		"imageUrl": imageURL,
		"imageId":  imageID,
	}
	raw, err := r.db.UpdateDocument(ctx, r.collection, id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return decodeDocument[models.User](raw)
}

// UpdateImageURL rewrites only the stored image URL of a user
func (r *UserRepository) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	_, err := r.db.UpdateDocument(ctx, r.collection, id, map[string]any{"imageUrl": imageURL})
	if err != nil {
		return fmt.Errorf("failed to update user image url: %w", err)
	}
	return nil
}

// Delete removes a user profile document
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.DeleteDocument(ctx, r.collection, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
