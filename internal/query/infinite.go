package query

import (
	"context"
	"sync"
)

// PageFetcher loads one page. cursor is empty for the first page; the
// returned cursor feeds the next call, empty meaning no further page.
type PageFetcher[T any] func(ctx context.Context, cursor string) (items []T, nextCursor string, err error)

// Infinite accumulates pages of a cursor-paginated listing in the order
// they were requested. Pages advance only on an explicit FetchNext.
type Infinite[T any] struct {
	fetch PageFetcher[T]

	mu       sync.Mutex
	pages    [][]T
	cursor   string
	done     bool
	inFlight bool
}

// NewInfinite creates an infinite query over the fetcher.
func NewInfinite[T any](fetch PageFetcher[T]) *Infinite[T] {
	return &Infinite[T]{fetch: fetch}
}

// HasNext reports whether another page may exist.
func (q *Infinite[T]) HasNext() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.done
}

// FetchNext loads the next page and appends it. It is a no-op while a
// fetch is already in flight or when the listing is exhausted. An empty
// page ends the listing.
func (q *Infinite[T]) FetchNext(ctx context.Context) error {
	q.mu.Lock()
	if q.done || q.inFlight {
		q.mu.Unlock()
		return nil
	}
	q.inFlight = true
	cursor := q.cursor
	q.mu.Unlock()

	items, next, err := q.fetch(ctx, cursor)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight = false
	if err != nil {
		return err
	}
	if len(items) == 0 || next == "" {
		q.done = true
	}
	if len(items) > 0 {
		q.pages = append(q.pages, items)
		q.cursor = next
	}
	return nil
}

// Pages returns the accumulated pages in request order.
func (q *Infinite[T]) Pages() [][]T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]T, len(q.pages))
	copy(out, q.pages)
	return out
}

// Items flattens the pages into one sequence, oldest-requested first.
func (q *Infinite[T]) Items() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []T
	for _, page := range q.pages {
		out = append(out, page...)
	}
	return out
}

// Reset drops all pages; the next FetchNext starts from the beginning.
func (q *Infinite[T]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pages = nil
	q.cursor = ""
	q.done = false
}
