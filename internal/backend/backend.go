// Package backend holds the client bindings for the remote
// backend-as-a-service platform: document collections, the file bucket,
// the account service and the avatar generator. Everything above this
// package talks to the platform only through these interfaces.
package backend

import (
	"context"
	"encoding/json"

	"github.com/Xensen008/Pixify/internal/models"
)

// DocumentList is a single page of documents returned by a list query.
// Total is the number of documents matching the query, not the page size.
type DocumentList struct {
	Total     int64             `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// LastID returns the id of the last document in the page, used as the
// pagination cursor. Empty when the page is empty.
func (l *DocumentList) LastID() string {
	if len(l.Documents) == 0 {
		return ""
	}
	var envelope struct {
		ID string `json:"$id"`
	}
	if err := json.Unmarshal(l.Documents[len(l.Documents)-1], &envelope); err != nil {
		return ""
	}
	return envelope.ID
}

// Databases is the document-collection surface of the platform.
type Databases interface {
	CreateDocument(ctx context.Context, collection, documentID string, data any) (json.RawMessage, error)
	GetDocument(ctx context.Context, collection, documentID string) (json.RawMessage, error)
	ListDocuments(ctx context.Context, collection string, queries ...Query) (*DocumentList, error)
	UpdateDocument(ctx context.Context, collection, documentID string, data any) (json.RawMessage, error)
	DeleteDocument(ctx context.Context, collection, documentID string) error
}

// Storage is the file-bucket surface of the platform.
type Storage interface {
	CreateFile(ctx context.Context, fileID, name, mimeType string, content []byte) (*models.FileInfo, error)
	// GetFileView returns the direct, non-transformed URL for a stored file.
	GetFileView(fileID string) string
	DeleteFile(ctx context.Context, fileID string) error
}

// Account is the account/session surface of the platform.
type Account interface {
	Create(ctx context.Context, accountID, email, password, name string) (*models.Account, error)
	CreateEmailSession(ctx context.Context, email, password string) (*models.Session, error)
	Get(ctx context.Context) (*models.Account, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CreateVerification(ctx context.Context, redirectURL string) error
	UpdateVerification(ctx context.Context, accountID, secret string) error
}

// Avatars generates fallback avatar URLs.
type Avatars interface {
	GetInitials(name string) string
}
