package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// PendingSignupStore persists the single temporary credential used by
// the account-cleanup flow: the id of a freshly created account whose
// profile document may not exist yet. It lives in a local state file and
// is removed once the sign-up either completes or is cleaned up.
type PendingSignupStore struct {
	mu   sync.Mutex
	path string
}

type pendingState struct {
	AccountID string `json:"accountId"`
}

// NewPendingSignupStore creates a store backed by the given file path.
func NewPendingSignupStore(path string) *PendingSignupStore {
	return &PendingSignupStore{path: path}
}

// Set records the account id of an in-progress sign-up.
func (p *PendingSignupStore) Set(accountID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, err := json.Marshal(pendingState{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("failed to encode pending signup: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to persist pending signup: %w", err)
	}
	return nil
}

// Get returns the recorded account id, or "" when none is recorded.
func (p *PendingSignupStore) Get() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read pending signup: %w", err)
	}
	var state pendingState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("failed to decode pending signup: %w", err)
	}
	return state.AccountID, nil
}

// Clear removes the recorded credential. Clearing an empty store is a no-op.
func (p *PendingSignupStore) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear pending signup: %w", err)
	}
	return nil
}
