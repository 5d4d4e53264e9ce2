package query

import (
	"context"
	"sync"
	"time"
)

// SearchFunc runs one backend search for a term.
type SearchFunc[T any] func(ctx context.Context, term string) (T, error)

// Debouncer delays a search until the term has been quiet for the
// debounce window, then issues exactly one backend call for the newest
// term. A newer term supersedes an in-flight call: the older call is
// cancelled and its result discarded.
type Debouncer[T any] struct {
	window   time.Duration
	fn       SearchFunc[T]
	onResult func(term string, result T, err error)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	gen    uint64
}

// NewDebouncer creates a debouncer. onResult receives the outcome of
// every non-superseded call.
func NewDebouncer[T any](window time.Duration, fn SearchFunc[T], onResult func(term string, result T, err error)) *Debouncer[T] {
	return &Debouncer[T]{window: window, fn: fn, onResult: onResult}
}

// Search schedules a search for term, superseding any pending or
// in-flight one.
func (d *Debouncer[T]) Search(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(term) })
}

func (d *Debouncer[T]) fire(term string) {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	go func() {
		result, err := d.fn(ctx, term)

		d.mu.Lock()
		superseded := gen != d.gen
		d.mu.Unlock()
		if superseded {
			return
		}
		d.onResult(term, result, err)
	}()
}

// Stop cancels any pending and in-flight search. The debouncer stays
// usable afterwards, but owners should call Stop on teardown so nothing
// fires into a torn-down view.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++
}
