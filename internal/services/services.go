// Package services implements the application's data-access operations:
// each method translates one user intent into one or a short fixed
// sequence of backend calls. Multi-step sequences carry their own
// compensating actions; compensation failures are logged and accepted as
// best effort.
package services

import (
	"errors"
	"strings"
)

// Fail-fast input errors, raised before any remote call is made.
var (
	ErrMissingPostID  = errors.New("post id is required")
	ErrMissingUserID  = errors.New("user id is required")
	ErrMissingImageID = errors.New("image id is required")
	ErrMissingFile    = errors.New("exactly one file is required")
)

// FileUpload is the single file attached to a create or update intent.
type FileUpload struct {
	Name     string
	MimeType string
	Content  []byte
}

// SplitTags turns the comma-separated tags input into an ordered list,
// stripping all whitespace. Empty segments are dropped.
func SplitTags(tags string) []string {
	stripped := strings.ReplaceAll(tags, " ", "")
	out := []string{}
	for _, tag := range strings.Split(stripped, ",") {
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
