package session

import (
	"context"
	"testing"
	"time"

	"github.com/Xensen008/Pixify/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionInitWithoutRemoteSession(t *testing.T) {
	f := newVerifierFixture(t)
	s := New(f.auth)

	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.IsAuthenticated())
	_, ok := s.User()
	assert.False(t, ok)
}

func TestSessionSignInAndOut(t *testing.T) {
	f := newVerifierFixture(t)
	created := f.signUp(t)
	s := New(f.auth)

	user, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.True(t, s.IsAuthenticated())

	current, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "ada", current.Username)

	require.NoError(t, s.SignOut(context.Background()))
	assert.False(t, s.IsAuthenticated())
	_, ok = s.User()
	assert.False(t, ok)
}

func TestSessionSignInBadCredentials(t *testing.T) {
	f := newVerifierFixture(t)
	f.signUp(t)
	s := New(f.auth)

	_, err := s.SignIn(context.Background(), "nobody@example.com", "pw")
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestSessionInitResolvesExistingSession(t *testing.T) {
	f := newVerifierFixture(t)
	created := f.signUp(t)

	// Signing up leaves a live remote session behind, as after an app
	// restart with a persisted session.
	s := New(f.auth)
	require.NoError(t, s.Init(context.Background()))
	require.True(t, s.IsAuthenticated())

	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, created.ID, user.ID)
}

func TestSessionRefreshPicksUpProfileChanges(t *testing.T) {
	f := newVerifierFixture(t)
	f.signUp(t)
	s := New(f.auth)

	_, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.IsAuthenticated())
}

func TestSessionExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	token := func(exp time.Time) string {
		claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
		require.NoError(t, err)
		return signed
	}

	assert.Equal(t, past.Unix(), sessionExpiry(&models.Session{Secret: token(past)}).Unix())
	assert.Equal(t, future.Unix(), sessionExpiry(&models.Session{Secret: token(future)}).Unix())

	// An opaque secret falls back to the session's own expiry field.
	fallback := sessionExpiry(&models.Session{Secret: "not-a-jwt", ExpiresAt: future})
	assert.Equal(t, future.Unix(), fallback.Unix())

	s := New(nil)
	s.mu.Lock()
	s.authenticated = true
	s.expiresAt = past
	s.mu.Unlock()
	assert.False(t, s.IsAuthenticated(), "a lapsed session is not authenticated")
}
