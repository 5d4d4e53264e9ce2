package models

import "time"

// Account represents the identity record held by the account service.
type Account struct {
	ID                string    `json:"$id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	EmailVerification bool      `json:"emailVerification"`
	CreatedAt         time.Time `json:"$createdAt"`
}

// Session represents an authenticated session issued by the account service.
type Session struct {
	ID        string    `json:"$id"`
	UserID    string    `json:"userId"`
	Secret    string    `json:"secret"`
	ExpiresAt time.Time `json:"expire"`
}

// User represents an application-level user profile document.
type User struct {
	ID        string    `json:"$id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	ImageID   string    `json:"imageId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"$createdAt"`

	// FollowersCount is computed client-side, never persisted.
	FollowersCount int64 `json:"-"`
}

// Post represents a post document.
type Post struct {
	ID        string    `json:"$id"`
	CreatorID string    `json:"creator"`
	Caption   string    `json:"caption"`
	ImageID   string    `json:"imageId"`
	ImageURL  string    `json:"imageUrl"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Comment represents a comment on a post.
type Comment struct {
	ID        string    `json:"$id"`
	PostID    string    `json:"post"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"$createdAt"`
}

// SavedPost is the join record for a user's bookmark of a post.
type SavedPost struct {
	ID        string    `json:"$id"`
	UserID    string    `json:"user"`
	PostID    string    `json:"post"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Follow is the join record for a follower/following edge.
type Follow struct {
	ID          string    `json:"$id"`
	FollowerID  string    `json:"follower"`
	FollowingID string    `json:"following"`
	CreatedAt   time.Time `json:"$createdAt"`
}

// FileInfo describes a stored file in the platform bucket.
type FileInfo struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
}
