package backend

import (
	"net/url"
	"strings"
)

// AvatarsClient builds initials-avatar URLs against the avatar service.
// Avatar generation happens remotely at fetch time; this client only
// constructs the URL.
type AvatarsClient struct {
	endpoint string
}

// NewAvatarsClient creates an Avatars binding for the given service endpoint.
func NewAvatarsClient(endpoint string) *AvatarsClient {
	return &AvatarsClient{endpoint: strings.TrimRight(endpoint, "/")}
}

// GetInitials returns the URL of an initials-based avatar for the name.
func (a *AvatarsClient) GetInitials(name string) string {
	params := url.Values{}
	params.Set("name", name)
	return a.endpoint + "/avatars/initials?" + params.Encode()
}
