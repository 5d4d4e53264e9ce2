// Package query wraps the data-access services in cached, deduplicated
// query state. It is the containment point for remote failures: callers
// read loading/error/stale state from here instead of handling errors
// from every fetch themselves. The cache is process-wide; mutations
// reach it only through invalidation.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// State is the externally visible state of one cached query.
type State struct {
	Data      any
	Err       error
	UpdatedAt time.Time
	Stale     bool
}

type entry struct {
	data      any
	err       error
	updatedAt time.Time
	stale     bool
}

// Client is the process-wide query cache, keyed by operation identity.
type Client struct {
	staleAfter time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// NewClient creates a cache whose entries go stale after staleAfter.
func NewClient(staleAfter time.Duration) *Client {
	return &Client{
		staleAfter: staleAfter,
		entries:    make(map[string]*entry),
	}
}

// Fetch returns the cached value for key, or runs fn to produce it.
// Concurrent callers for the same key share one underlying call. A stale
// or expired entry is refetched; a failed fetch is recorded so State
// exposes the error.
func (c *Client) Fetch(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.fresh(c.staleAfter) {
		data, err := e.data, e.err
		c.mu.Unlock()
		return data, err
	}
	c.mu.Unlock()

	data, err, _ := c.group.Do(key, func() (any, error) {
		data, err := fn(ctx)
		if err != nil {
			log.Error().Err(err).Str("query", key).Msg("Query failed")
		}
		c.mu.Lock()
		c.entries[key] = &entry{
			data:      data,
			err:       err,
			updatedAt: time.Now(),
		}
		c.mu.Unlock()
		return data, err
	})
	return data, err
}

func (e *entry) fresh(staleAfter time.Duration) bool {
	if e.stale || e.err != nil {
		return false
	}
	return time.Since(e.updatedAt) < staleAfter
}

// State returns the recorded state of a query, and whether the key has
// ever been fetched.
func (c *Client) State(key string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}, false
	}
	return State{Data: e.data, Err: e.err, UpdatedAt: e.updatedAt, Stale: e.stale}, true
}

// Invalidate marks the given keys stale; they refetch on next read.
func (c *Client) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
	}
}

// InvalidatePrefix marks every key with the prefix stale.
func (c *Client) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			e.stale = true
		}
	}
}

// Fetch is the typed convenience wrapper over Client.Fetch.
func Fetch[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) (T, error) {
	data, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := data.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return v, nil
}
