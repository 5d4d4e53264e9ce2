package query

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resultRecorder struct {
	mu      sync.Mutex
	terms   []string
	results []string
}

func (r *resultRecorder) record(term string, result string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms = append(r.terms, term)
	r.results = append(r.results, result)
}

func (r *resultRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.terms...)
}

func TestDebouncerCollapsesRapidTerms(t *testing.T) {
	var calls int32
	rec := &resultRecorder{}

	d := NewDebouncer(30*time.Millisecond, func(ctx context.Context, term string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "result:" + term, nil
	}, rec.record)
	defer d.Stop()

	// Typed within the quiescence window: only the newest term fires.
	d.Search("a")
	d.Search("ab")
	d.Search("abc")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one backend call")
	assert.Equal(t, []string{"abc"}, rec.snapshot())
}

func TestDebouncerSupersedesInFlightCall(t *testing.T) {
	rec := &resultRecorder{}
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	d := NewDebouncer(5*time.Millisecond, func(ctx context.Context, term string) (string, error) {
		if term == "slow" {
			close(firstStarted)
			select {
			case <-release:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return "result:" + term, nil
	}, rec.record)
	defer d.Stop()

	d.Search("slow")
	<-firstStarted

	// A newer term supersedes the in-flight call; its result must be
	// discarded even if it eventually completes.
	d.Search("fresh")

	require.Eventually(t, func() bool {
		terms := rec.snapshot()
		return len(terms) == 1 && terms[0] == "fresh"
	}, time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"fresh"}, rec.snapshot(), "the superseded result never surfaces")
}

func TestDebouncerStopCancelsPendingWork(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func(ctx context.Context, term string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return term, nil
	}, func(string, string, error) {})

	d.Search("doomed")
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "nothing fires after Stop")
}
