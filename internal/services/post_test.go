package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile() FileUpload {
	return FileUpload{Name: "pic.jpg", MimeType: "image/jpeg", Content: []byte("jpeg-bytes")}
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, NewPost{
		UserID:   "u1",
		Caption:  "golden hour",
		Location: "Lisbon",
		Tags:     "sunset, beach ,art",
		File:     testFile(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sunset", "beach", "art"}, post.Tags)
	assert.Equal(t, "u1", post.CreatorID)
	assert.Empty(t, post.Likes)
	assert.True(t, strings.HasPrefix(post.ImageURL, "https://files.test/"), "image url must be the direct view url")
	assert.Equal(t, "https://files.test/"+post.ImageID, post.ImageURL)
	assert.True(t, f.bucket.Has(post.ImageID))
}

func TestCreatePostRequiresFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.CreatePost(context.Background(), NewPost{UserID: "u1", Caption: "x"})
	assert.ErrorIs(t, err, ErrMissingFile)
	assert.Equal(t, 0, f.db.Count("posts"))
}

func TestCreatePostDeletesUploadWhenCreateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.db.Fail("create:posts", errors.New("quota exceeded"))

	_, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "x", File: testFile()})
	require.Error(t, err)

	// The uploaded file must be rolled back: upload, failed create,
	// compensating delete, in that order.
	entries := f.journal.Entries()
	require.Len(t, entries, 3)
	assert.True(t, strings.HasPrefix(entries[0], "file.create:"))
	assert.True(t, strings.HasPrefix(entries[1], "create:posts:"))
	assert.True(t, strings.HasPrefix(entries[2], "file.delete:"))

	fileID := strings.TrimPrefix(entries[0], "file.create:")
	assert.False(t, f.bucket.Has(fileID), "orphaned upload must be deleted")
}

func TestUpdatePostDeletesOldFileOnlyAfterUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "before", File: testFile()})
	require.NoError(t, err)
	oldImageID := post.ImageID

	newFile := testFile()
	updated, err := f.posts.UpdatePost(ctx, UpdatePostInput{
		PostID:   post.ID,
		Caption:  "after",
		ImageURL: post.ImageURL,
		ImageID:  post.ImageID,
		File:     &newFile,
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldImageID, updated.ImageID)
	assert.False(t, f.bucket.Has(oldImageID), "old file is dropped after a successful update")
	assert.True(t, f.bucket.Has(updated.ImageID))

	// Ordering: the old file may only be deleted after the document
	// update succeeded.
	updateIdx := f.journal.Index("update:posts:" + post.ID)
	deleteOldIdx := f.journal.Index("file.delete:" + oldImageID)
	require.GreaterOrEqual(t, updateIdx, 0)
	require.GreaterOrEqual(t, deleteOldIdx, 0)
	assert.Less(t, updateIdx, deleteOldIdx)
}

func TestUpdatePostFailureDeletesNewFileKeepsOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "before", File: testFile()})
	require.NoError(t, err)

	f.db.Fail("update:posts", errors.New("write denied"))

	newFile := testFile()
	_, err = f.posts.UpdatePost(ctx, UpdatePostInput{
		PostID:   post.ID,
		Caption:  "after",
		ImageURL: post.ImageURL,
		ImageID:  post.ImageID,
		File:     &newFile,
	})
	require.Error(t, err)

	assert.True(t, f.bucket.Has(post.ImageID), "old file must survive a failed update")

	// The freshly uploaded replacement must not be orphaned.
	var newFileID string
	for _, e := range f.journal.Entries() {
		if strings.HasPrefix(e, "file.create:") && !strings.HasSuffix(e, post.ImageID) {
			newFileID = strings.TrimPrefix(e, "file.create:")
		}
	}
	require.NotEmpty(t, newFileID)
	assert.False(t, f.bucket.Has(newFileID))
}

func TestDeletePostRemovesDocumentThenFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "x", File: testFile()})
	require.NoError(t, err)

	require.NoError(t, f.posts.DeletePost(ctx, post.ID, post.ImageID))
	assert.Equal(t, 0, f.db.Count("posts"))
	assert.False(t, f.bucket.Has(post.ImageID))

	deleteDocIdx := f.journal.Index("delete:posts:" + post.ID)
	deleteFileIdx := f.journal.Index("file.delete:" + post.ImageID)
	assert.Less(t, deleteDocIdx, deleteFileIdx)
}

func TestDeletePostKeepsFileWhenDocumentDeleteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "x", File: testFile()})
	require.NoError(t, err)

	f.db.Fail("delete:posts", errors.New("permission denied"))

	err = f.posts.DeletePost(ctx, post.ID, post.ImageID)
	require.Error(t, err)
	assert.True(t, f.bucket.Has(post.ImageID), "file must not be deleted when the document survives")
}

func TestDeletePostFailFastOnMissingInput(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.posts.DeletePost(context.Background(), "", "img"), ErrMissingPostID)
	assert.ErrorIs(t, f.posts.DeletePost(context.Background(), "post", ""), ErrMissingImageID)
	assert.Empty(t, f.journal.Entries(), "no remote call may happen on missing input")
}

func TestLikePostLastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "x", File: testFile()})
	require.NoError(t, err)

	_, err = f.posts.LikePost(ctx, post.ID, []string{"u1", "u2"})
	require.NoError(t, err)

	// A second write replaces the whole set, no merge.
	_, err = f.posts.LikePost(ctx, post.ID, []string{"u3"})
	require.NoError(t, err)

	got, err := f.posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, got.Likes)
}

func TestSavePostAllowsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.posts.SavePost(ctx, "u1", "p1")
	require.NoError(t, err)
	_, err = f.posts.SavePost(ctx, "u1", "p1")
	require.NoError(t, err)

	// No existence check is made; duplicates are a documented gap.
	assert.Equal(t, 2, f.db.Count("saves"))
}

func TestGetSavedPostsNewestBookmarkFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, caption := range []string{"first", "second", "third"} {
		post, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: caption, File: testFile()})
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}
	for _, id := range ids {
		_, err := f.posts.SavePost(ctx, "u2", id)
		require.NoError(t, err)
	}

	saved, err := f.posts.GetSavedPosts(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, "third", saved[0].Caption)
	assert.Equal(t, "first", saved[2].Caption)
}

func TestGetSavedPostsSkipsDanglingRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "kept", File: testFile()})
	require.NoError(t, err)
	gone, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: "gone", File: testFile()})
	require.NoError(t, err)

	_, err = f.posts.SavePost(ctx, "u2", kept.ID)
	require.NoError(t, err)
	_, err = f.posts.SavePost(ctx, "u2", gone.ID)
	require.NoError(t, err)

	// The bookmark record outlives its post until the user unsaves it.
	require.NoError(t, f.posts.DeletePost(ctx, gone.ID, gone.ImageID))

	saved, err := f.posts.GetSavedPosts(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "kept", saved[0].Caption)
	assert.Equal(t, 2, f.db.Count("saves"))

	_, err = f.posts.GetSavedPosts(ctx, "")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestGetRecentPostsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, caption := range []string{"first", "second", "third"} {
		_, err := f.posts.CreatePost(ctx, NewPost{UserID: "u1", Caption: caption, File: testFile()})
		require.NoError(t, err)
	}

	posts, err := f.posts.GetRecentPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0].Caption)
	assert.Equal(t, "first", posts[2].Caption)
}
