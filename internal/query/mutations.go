package query

import (
	"context"

	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/services"
)

// Mutations runs write operations and marks the related read queries
// stale. Like, save and follow also invalidate the current-user entry,
// because it embeds derived lists used elsewhere.
type Mutations struct {
	cache    *Client
	posts    *services.PostService
	users    *services.UserService
	follows  *services.FollowService
	comments *services.CommentService
}

// NewMutations wires the mutation side of the query layer.
func NewMutations(cache *Client, posts *services.PostService, users *services.UserService, follows *services.FollowService, comments *services.CommentService) *Mutations {
	return &Mutations{cache: cache, posts: posts, users: users, follows: follows, comments: comments}
}

// CreatePost creates a post and stales the post listings.
func (m *Mutations) CreatePost(ctx context.Context, in services.NewPost) (*models.Post, error) {
	post, err := m.posts.CreatePost(ctx, in)
	if err != nil {
		return nil, err
	}
	m.cache.Invalidate(KeyRecentPosts, KeyInfinitePosts, KeyUserPosts(in.UserID))
	return post, nil
}

// UpdatePost updates a post and stales its reads.
func (m *Mutations) UpdatePost(ctx context.Context, in services.UpdatePostInput) (*models.Post, error) {
	post, err := m.posts.UpdatePost(ctx, in)
	if err != nil {
		return nil, err
	}
	m.cache.Invalidate(KeyPostByID(in.PostID), KeyRecentPosts, KeyInfinitePosts)
	return post, nil
}

// DeletePost deletes a post and stales every post listing.
func (m *Mutations) DeletePost(ctx context.Context, postID, imageID string) error {
	if err := m.posts.DeletePost(ctx, postID, imageID); err != nil {
		return err
	}
	m.cache.InvalidatePrefix(PrefixPosts)
	return nil
}

// LikePost replaces a post's likes and stales the post reads plus the
// current user.
func (m *Mutations) LikePost(ctx context.Context, postID string, likes []string) (*models.Post, error) {
	post, err := m.posts.LikePost(ctx, postID, likes)
	if err != nil {
		return nil, err
	}
	m.cache.Invalidate(KeyPostByID(postID), KeyRecentPosts, KeyInfinitePosts, KeyCurrentUser)
	return post, nil
}

// SavePost bookmarks a post and stales the user's saved list and the
// current user.
func (m *Mutations) SavePost(ctx context.Context, userID, postID string) (*models.SavedPost, error) {
	saved, err := m.posts.SavePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	m.cache.Invalidate(KeyRecentPosts, KeySavedPosts(userID), KeyCurrentUser)
	return saved, nil
}

// DeleteSavedPost removes a bookmark and stales the user's saved list
// and the current user.
func (m *Mutations) DeleteSavedPost(ctx context.Context, userID, savedRecordID string) error {
	if err := m.posts.DeleteSavedPost(ctx, savedRecordID); err != nil {
		return err
	}
	m.cache.Invalidate(KeyRecentPosts, KeySavedPosts(userID), KeyCurrentUser)
	return nil
}

// UpdateUser updates a profile and stales its reads.
func (m *Mutations) UpdateUser(ctx context.Context, in services.UpdateUserInput) (*models.User, error) {
	user, err := m.users.UpdateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	m.cache.Invalidate(KeyCurrentUser, KeyUserByID(in.UserID), KeyTopUsers)
	return user, nil
}

// FollowUser records a follow edge and stales both profiles and the
// follow reads.
func (m *Mutations) FollowUser(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	follow, err := m.follows.FollowUser(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	m.invalidateFollow(followerID, followingID)
	return follow, nil
}

// UnfollowUser removes a follow edge and stales both profiles and the
// follow reads.
func (m *Mutations) UnfollowUser(ctx context.Context, followerID, followingID string) (bool, error) {
	removed, err := m.follows.UnfollowUser(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	m.invalidateFollow(followerID, followingID)
	return removed, nil
}

func (m *Mutations) invalidateFollow(followerID, followingID string) {
	m.cache.Invalidate(
		KeyIsFollowing(followerID, followingID),
		KeyFollowCounts(followerID),
		KeyFollowCounts(followingID),
		KeyUserByID(followerID),
		KeyUserByID(followingID),
		KeyTopUsers,
		KeyCurrentUser,
	)
}

// CreateComment adds a comment and stales the post's comment list.
func (m *Mutations) CreateComment(ctx context.Context, postID, userID, text string) (*models.Comment, error) {
	comment, err := m.comments.CreateComment(ctx, postID, userID, text)
	if err != nil {
		return nil, err
	}
	m.cache.Invalidate(KeyComments(postID))
	return comment, nil
}
