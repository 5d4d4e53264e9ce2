package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Xensen008/Pixify/internal/backend/backendtest"
	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/repository"
	"github.com/Xensen008/Pixify/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostFeed(t *testing.T, posts int) *Infinite[models.Post] {
	t.Helper()
	journal := &backendtest.Journal{}
	db := backendtest.NewDB(journal)
	bucket := backendtest.NewBucket(journal)
	for i := 0; i < posts; i++ {
		db.Seed("posts", fmt.Sprintf("p%02d", i), map[string]any{"caption": fmt.Sprintf("post %02d", i)})
	}

	postSvc := services.NewPostService(
		repository.NewPostRepository(db, "posts"),
		repository.NewSavedPostRepository(db, "saves"),
		services.NewFileService(bucket),
	)

	return NewInfinite(func(ctx context.Context, cursor string) ([]models.Post, string, error) {
		page, err := postSvc.GetInfinitePosts(ctx, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Posts, page.Cursor, nil
	})
}

func TestInfinitePostsPagination(t *testing.T) {
	feed := newPostFeed(t, 25)
	ctx := context.Background()

	require.NoError(t, feed.FetchNext(ctx))
	require.NoError(t, feed.FetchNext(ctx))
	require.NoError(t, feed.FetchNext(ctx))

	pages := feed.Pages()
	require.Len(t, pages, 3)
	assert.Len(t, pages[0], 10)
	assert.Len(t, pages[1], 10)
	assert.Len(t, pages[2], 5)

	items := feed.Items()
	require.Len(t, items, 25)

	// Newest first, no duplicates, no gaps.
	seen := make(map[string]bool, len(items))
	for i, post := range items {
		assert.False(t, seen[post.ID], "duplicate id %s", post.ID)
		seen[post.ID] = true
		if i > 0 {
			assert.False(t, post.CreatedAt.After(items[i-1].CreatedAt), "pages must keep descending creation time")
		}
	}

	// The partial page still reported a cursor; only the next, empty
	// fetch ends the feed.
	assert.True(t, feed.HasNext())
	require.NoError(t, feed.FetchNext(ctx))
	assert.False(t, feed.HasNext())
	assert.Len(t, feed.Pages(), 3)
}

func TestInfiniteFetchNextIsNoOpWhenExhausted(t *testing.T) {
	feed := newPostFeed(t, 5)
	ctx := context.Background()

	require.NoError(t, feed.FetchNext(ctx))
	require.NoError(t, feed.FetchNext(ctx))
	assert.False(t, feed.HasNext())

	require.NoError(t, feed.FetchNext(ctx))
	assert.Len(t, feed.Items(), 5)
}

func TestInfiniteReset(t *testing.T) {
	feed := newPostFeed(t, 12)
	ctx := context.Background()

	require.NoError(t, feed.FetchNext(ctx))
	require.Len(t, feed.Items(), 10)

	feed.Reset()
	assert.Empty(t, feed.Items())
	assert.True(t, feed.HasNext())

	require.NoError(t, feed.FetchNext(ctx))
	assert.Len(t, feed.Items(), 10)
}

func TestInfiniteSurfacesFetchErrors(t *testing.T) {
	boom := errors.New("listing failed")
	attempts := 0
	feed := NewInfinite(func(ctx context.Context, cursor string) ([]int, string, error) {
		attempts++
		if attempts == 1 {
			return nil, "", boom
		}
		return []int{1, 2}, "", nil
	})

	err := feed.FetchNext(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, feed.HasNext(), "a failed fetch does not end the feed")

	require.NoError(t, feed.FetchNext(context.Background()))
	assert.Equal(t, []int{1, 2}, feed.Items())
}
