package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Xensen008/Pixify/internal/backend/backendtest"
	"github.com/Xensen008/Pixify/internal/repository"

	"github.com/stretchr/testify/assert"
)

// fixture wires every service against the in-memory backend fakes.
type fixture struct {
	journal *backendtest.Journal
	db      *backendtest.DB
	bucket  *backendtest.Bucket
	account *backendtest.AccountService

	auth        *AuthService
	files       *FileService
	posts       *PostService
	users       *UserService
	follows     *FollowService
	comments    *CommentService
	maintenance *MaintenanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	journal := &backendtest.Journal{}
	db := backendtest.NewDB(journal)
	bucket := backendtest.NewBucket(journal)
	account := backendtest.NewAccountService(journal)
	avatars := backendtest.Avatars{}

	userRepo := repository.NewUserRepository(db, "users")
	postRepo := repository.NewPostRepository(db, "posts")
	saveRepo := repository.NewSavedPostRepository(db, "saves")
	commentRepo := repository.NewCommentRepository(db, "comments")
	followRepo := repository.NewFollowRepository(db, "follows")

	files := NewFileService(bucket)
	pending := NewPendingSignupStore(filepath.Join(t.TempDir(), "state.json"))

	return &fixture{
		journal:     journal,
		db:          db,
		bucket:      bucket,
		account:     account,
		auth:        NewAuthService(account, avatars, userRepo, pending),
		files:       files,
		posts:       NewPostService(postRepo, saveRepo, files),
		users:       NewUserService(userRepo, followRepo, files),
		follows:     NewFollowService(followRepo),
		comments:    NewCommentService(commentRepo),
		maintenance: NewMaintenanceService(postRepo, userRepo, files, avatars),
	}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"art", "sunset", "beach"}, SplitTags("art, sunset , beach"))
	assert.Equal(t, []string{"solo"}, SplitTags("solo"))
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, []string{"a", "b"}, SplitTags("a,,b,"))
}

func TestFileServiceRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.files.UploadFile(ctx, FileUpload{Name: "pic.jpg", MimeType: "image/jpeg", Content: []byte("jpeg")})
	assert.NoError(t, err)
	assert.True(t, f.bucket.Has(info.ID))
	assert.Equal(t, "https://files.test/"+info.ID, f.files.GetFileView(info.ID))

	assert.NoError(t, f.files.DeleteFile(ctx, info.ID))
	assert.False(t, f.bucket.Has(info.ID))
}
