package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Xensen008/Pixify/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client talks JSON over HTTP to the platform's REST API. It implements
// the Databases and Account bindings. One client is shared process-wide;
// the session secret is the only mutable state.
type Client struct {
	httpClient *http.Client
	endpoint   string
	project    string
	databaseID string

	mu      sync.RWMutex
	session string
}

// NewClient creates a REST client for the given platform endpoint.
func NewClient(endpoint, project, databaseID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		project:    project,
		databaseID: databaseID,
	}
}

// SetSession attaches a session secret to all subsequent requests.
func (c *Client) SetSession(secret string) {
	c.mu.Lock()
	c.session = secret
	c.mu.Unlock()
}

// ClearSession drops the attached session secret.
func (c *Client) ClearSession() {
	c.SetSession("")
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.endpoint + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Platform-Project", c.project)
	c.mu.RLock()
	if c.session != "" {
		req.Header.Set("X-Platform-Session", c.session)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		remote := &Error{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		// The platform reports errors as a JSON body; fall back to the
		// status text when the body is not parseable.
		_ = json.Unmarshal(data, remote)
		remote.Code = resp.StatusCode
		return remote
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) documentsPath(collection string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", c.databaseID, collection)
}

// CreateDocument creates a document with a caller-chosen id.
func (c *Client) CreateDocument(ctx context.Context, collection, documentID string, data any) (json.RawMessage, error) {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	var doc json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.documentsPath(collection), nil, body, &doc); err != nil {
		return nil, fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return doc, nil
}

// GetDocument fetches a single document by id.
func (c *Client) GetDocument(ctx context.Context, collection, documentID string) (json.RawMessage, error) {
	var doc json.RawMessage
	path := c.documentsPath(collection) + "/" + documentID
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, fmt.Errorf("failed to get document %s from %s: %w", documentID, collection, err)
	}
	return doc, nil
}

// ListDocuments runs a list query against a collection.
func (c *Client) ListDocuments(ctx context.Context, collection string, queries ...Query) (*DocumentList, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q.Encode())
	}
	var list DocumentList
	if err := c.do(ctx, http.MethodGet, c.documentsPath(collection), params, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", collection, err)
	}
	return &list, nil
}

// UpdateDocument applies a partial update to a document.
func (c *Client) UpdateDocument(ctx context.Context, collection, documentID string, data any) (json.RawMessage, error) {
	body := map[string]any{"data": data}
	var doc json.RawMessage
	path := c.documentsPath(collection) + "/" + documentID
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &doc); err != nil {
		return nil, fmt.Errorf("failed to update document %s in %s: %w", documentID, collection, err)
	}
	return doc, nil
}

// DeleteDocument removes a document by id.
func (c *Client) DeleteDocument(ctx context.Context, collection, documentID string) error {
	path := c.documentsPath(collection) + "/" + documentID
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete document %s from %s: %w", documentID, collection, err)
	}
	return nil
}

// Create registers a new account with the account service.
func (c *Client) Create(ctx context.Context, accountID, email, password, name string) (*models.Account, error) {
	body := map[string]any{
		"userId":   accountID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var account models.Account
	if err := c.do(ctx, http.MethodPost, "/account", nil, body, &account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// CreateEmailSession signs in with email/password. The returned session
// secret is attached to the client for subsequent requests.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	var session models.Session
	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", nil, body, &session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	c.SetSession(session.Secret)
	return &session, nil
}

// Get returns the account behind the attached session.
func (c *Client) Get(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := c.do(ctx, http.MethodGet, "/account", nil, nil, &account); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// DeleteSession ends a session. Use "current" for the attached one; the
// client then forgets its secret.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/account/sessions/"+sessionID, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if sessionID == "current" {
		c.ClearSession()
	}
	return nil
}

// CreateVerification asks the account service to send a verification
// email linking back to redirectURL.
func (c *Client) CreateVerification(ctx context.Context, redirectURL string) error {
	body := map[string]any{"url": redirectURL}
	if err := c.do(ctx, http.MethodPost, "/account/verification", nil, body, nil); err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

// UpdateVerification confirms a verification using the emailed secret.
func (c *Client) UpdateVerification(ctx context.Context, accountID, secret string) error {
	body := map[string]any{
		"userId": accountID,
		"secret": secret,
	}
	if err := c.do(ctx, http.MethodPut, "/account/verification", nil, body, nil); err != nil {
		return fmt.Errorf("failed to confirm verification: %w", err)
	}
	return nil
}
