// Package session holds the client's authentication state: an explicit
// session object with a defined lifecycle instead of ambient globals,
// and the email-verification state machine.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Session is the explicit session-context object handed to every
// component that needs the current user. Initialized at process start,
// refreshed on login/logout/verification events, torn down on logout.
type Session struct {
	auth *services.AuthService

	mu            sync.RWMutex
	user          *models.User
	authenticated bool
	expiresAt     time.Time
}

// New creates an empty, unauthenticated session.
func New(auth *services.AuthService) *Session {
	return &Session{auth: auth}
}

// Init resolves any existing remote session to its user. A missing
// session leaves the object unauthenticated without error.
func (s *Session) Init(ctx context.Context) error {
	user, err := s.auth.GetCurrentUser(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("No current session")
		s.Teardown()
		return nil
	}
	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

// SignIn opens a session and loads its user.
func (s *Session) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	remote, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.auth.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signed-in user: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.expiresAt = sessionExpiry(remote)
	s.mu.Unlock()
	return user, nil
}

// SignOut ends the remote session and tears the object down. Teardown
// happens even when the remote call fails.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	s.Teardown()
	return err
}

// Refresh re-reads the current user, e.g. after a verification event or
// a profile edit.
func (s *Session) Refresh(ctx context.Context) error {
	user, err := s.auth.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

// Teardown clears all session state.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

// User returns the current user, and whether one is signed in.
func (s *Session) User() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authenticated
}

// IsAuthenticated reports whether a user is signed in and the session,
// when its expiry is known, has not lapsed.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated {
		return false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return false
	}
	return true
}

// sessionExpiry extracts the expiry of a session. The secret is a JWT
// signed by the platform; the client cannot verify it and only reads the
// expiry claim. Falls back to the session's own expiry field, then zero.
func sessionExpiry(remote *models.Session) time.Time {
	if remote.Secret != "" {
		var claims jwt.RegisteredClaims
		if _, _, err := jwt.NewParser().ParseUnverified(remote.Secret, &claims); err == nil {
			if claims.ExpiresAt != nil {
				return claims.ExpiresAt.Time
			}
		}
	}
	return remote.ExpiresAt
}
