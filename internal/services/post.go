package services

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	postPageSize     = 10
	recentPostsLimit = 20
)

// NewPost is the input of CreatePost.
type NewPost struct {
	UserID   string
	Caption  string
	Location string
	Tags     string // comma-separated
	File     FileUpload
}

// UpdatePostInput is the input of UpdatePost. File is nil when the image
// is unchanged.
type UpdatePostInput struct {
	PostID   string
	Caption  string
	Location string
	Tags     string // comma-separated
	ImageURL string
	ImageID  string
	File     *FileUpload
}

// PostService handles post-related operations
type PostService struct {
	posts *repository.PostRepository
	saves *repository.SavedPostRepository
	files *FileService
}

// NewPostService creates a new post service
func NewPostService(posts *repository.PostRepository, saves *repository.SavedPostRepository, files *FileService) *PostService {
	return &PostService{posts: posts, saves: saves, files: files}
}

// CreatePost uploads the post's file, derives its direct view URL and
// creates the post document. If document creation fails after a
// successful upload, the uploaded file is deleted.
func (s *PostService) CreatePost(ctx context.Context, in NewPost) (*models.Post, error) {
	if in.UserID == "" {
		return nil, ErrMissingUserID
	}
	if len(in.File.Content) == 0 {
		return nil, ErrMissingFile
	}

	uploaded, err := s.files.UploadFile(ctx, in.File)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	fileURL := s.files.GetFileView(uploaded.ID)
	if fileURL == "" {
		s.deleteFileBestEffort(ctx, uploaded.ID)
		return nil, fmt.Errorf("failed to create post: no view url for file %s", uploaded.ID)
	}

	post, err := s.posts.Create(ctx, &models.Post{
		CreatorID: in.UserID,
		Caption:   in.Caption,
		ImageURL:  fileURL,
		ImageID:   uploaded.ID,
		Location:  in.Location,
		Tags:      SplitTags(in.Tags),
		Likes:     []string{},
	})
	if err != nil {
		// Roll back the upload so the bucket holds no orphan.
		s.deleteFileBestEffort(ctx, uploaded.ID)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// UpdatePost rewrites a post. When a replacement file is supplied it is
// uploaded before the document update, and the old file is deleted only
// after the update has succeeded. A failed update deletes the freshly
// uploaded file instead.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.PostID == "" {
		return nil, ErrMissingPostID
	}

	imageURL := in.ImageURL
	imageID := in.ImageID
	hasFile := in.File != nil

	if hasFile {
		uploaded, err := s.files.UploadFile(ctx, *in.File)
		if err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
		fileURL := s.files.GetFileView(uploaded.ID)
		if fileURL == "" {
			s.deleteFileBestEffort(ctx, uploaded.ID)
			return nil, fmt.Errorf("failed to update post: no view url for file %s", uploaded.ID)
		}
		imageURL = fileURL
		imageID = uploaded.ID
	} else if in.ImageID != "" {
		// Re-derive the direct URL in case the stored one carries
		// transformation parameters.
		if directURL := s.files.GetFileView(in.ImageID); directURL != "" {
			imageURL = directURL
		}
	}

	updated, err := s.posts.Update(ctx, in.PostID, in.Caption, imageURL, imageID, in.Location, SplitTags(in.Tags))
	if err != nil {
		if hasFile {
			s.deleteFileBestEffort(ctx, imageID)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	// Only now is the old file safe to drop.
	if hasFile && in.ImageID != "" {
		s.deleteFileBestEffort(ctx, in.ImageID)
	}

	return updated, nil
}

// DeletePost removes the post document first, then its stored file. The
// file is kept when the document deletion fails; a failed file deletion
// is logged and accepted.
func (s *PostService) DeletePost(ctx context.Context, postID, imageID string) error {
	if postID == "" {
		return ErrMissingPostID
	}
	if imageID == "" {
		return ErrMissingImageID
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.deleteFileBestEffort(ctx, imageID)
	return nil
}

// LikePost replaces the whole likes set of a post with the caller's
// array. Last writer wins; concurrent toggles can lose an update.
func (s *PostService) LikePost(ctx context.Context, postID string, likes []string) (*models.Post, error) {
	if postID == "" {
		return nil, ErrMissingPostID
	}
	if likes == nil {
		likes = []string{}
	}
	post, err := s.posts.UpdateLikes(ctx, postID, likes)
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}
	return post, nil
}

// SavePost bookmarks a post for a user. No existence check is made;
// duplicate saves are possible.
func (s *PostService) SavePost(ctx context.Context, userID, postID string) (*models.SavedPost, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if postID == "" {
		return nil, ErrMissingPostID
	}
	return s.saves.Create(ctx, userID, postID)
}

// DeleteSavedPost removes a bookmark record
func (s *PostService) DeleteSavedPost(ctx context.Context, savedRecordID string) error {
	if savedRecordID == "" {
		return ErrMissingPostID
	}
	return s.saves.Delete(ctx, savedRecordID)
}

// GetSavedPosts resolves a user's bookmark records to their posts,
// newest bookmark first. Records whose post no longer exists are
// skipped; the dangling record stays until the user unsaves it.
func (s *PostService) GetSavedPosts(ctx context.Context, userID string) ([]models.Post, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	records, err := s.saves.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(records))
	for _, record := range records {
		post, err := s.posts.GetByID(ctx, record.PostID)
		if err != nil {
			if backend.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve saved post %s: %w", record.PostID, err)
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

// GetPostByID fetches a single post
func (s *PostService) GetPostByID(ctx context.Context, postID string) (*models.Post, error) {
	if postID == "" {
		return nil, ErrMissingPostID
	}
	return s.posts.GetByID(ctx, postID)
}

// GetUserPosts returns a user's posts, newest first
func (s *PostService) GetUserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	posts, _, err := s.posts.List(ctx,
		backend.Equal("creator", userID),
		backend.OrderDesc("$createdAt"),
	)
	return posts, err
}

// GetRecentPosts returns the newest posts
func (s *PostService) GetRecentPosts(ctx context.Context) ([]models.Post, error) {
	posts, _, err := s.posts.List(ctx,
		backend.OrderDesc("$createdAt"),
		backend.Limit(recentPostsLimit),
	)
	return posts, err
}

// SearchPosts matches posts by caption
func (s *PostService) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	posts, _, err := s.posts.List(ctx, backend.Search("caption", term))
	return posts, err
}

// GetInfinitePosts returns one page of posts, newest first. cursor is
// empty for the first page and the last post id of the previous page
// afterwards.
func (s *PostService) GetInfinitePosts(ctx context.Context, cursor string) (*repository.PostPage, error) {
	queries := []backend.Query{
		backend.OrderDesc("$createdAt"),
		backend.Limit(postPageSize),
	}
	if cursor != "" {
		queries = append(queries, backend.CursorAfter(cursor))
	}
	return s.posts.ListPage(ctx, queries...)
}

func (s *PostService) deleteFileBestEffort(ctx context.Context, fileID string) {
	if err := s.files.DeleteFile(ctx, fileID); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("Compensating file deletion failed")
	}
}
