package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanImageURLsCapsAtFirstPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		f.db.Seed("posts", fmt.Sprintf("p%03d", i), map[string]any{
			"imageId":  fmt.Sprintf("img%03d", i),
			"imageUrl": fmt.Sprintf("https://files.test/img%03d?width=400", i),
		})
	}
	for i := 0; i < 50; i++ {
		data := map[string]any{"name": fmt.Sprintf("User %02d", i)}
		if i%2 == 0 {
			data["imageId"] = fmt.Sprintf("avatar%02d", i)
		}
		f.db.Seed("users", fmt.Sprintf("u%02d", i), data)
	}

	updated, err := f.maintenance.CleanImageURLs(ctx)
	require.NoError(t, err)

	// One run touches at most the first 100 posts, plus every user.
	assert.Equal(t, 150, updated)

	postUpdates := 0
	userUpdates := 0
	for _, e := range f.journal.Entries() {
		if strings.HasPrefix(e, "update:posts:") {
			postUpdates++
		}
		if strings.HasPrefix(e, "update:users:") {
			userUpdates++
		}
	}
	assert.Equal(t, 100, postUpdates)
	assert.Equal(t, 50, userUpdates)
}

func TestCleanImageURLsRewritesToDirectURLs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.db.Seed("posts", "p1", map[string]any{
		"imageId":  "img1",
		"imageUrl": "https://files.test/img1?width=400&output=webp",
	})
	f.db.Seed("users", "u1", map[string]any{"name": "Ada Lovelace"})

	updated, err := f.maintenance.CleanImageURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	post, err := f.posts.GetPostByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/img1", post.ImageURL)

	user, err := f.users.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, user.ImageURL, "avatars.test/initials", "users without an upload fall back to the initials avatar")
}

func TestCleanImageURLsSkipsPostsWithoutImage(t *testing.T) {
	f := newFixture(t)

	f.db.Seed("posts", "p1", map[string]any{"caption": "no image"})

	updated, err := f.maintenance.CleanImageURLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}
