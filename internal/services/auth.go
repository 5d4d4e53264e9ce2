package services

import (
	"context"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"
	"github.com/Xensen008/Pixify/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NewUser is the input of CreateUserAccount.
type NewUser struct {
	Name     string
	Username string
	Email    string
	Password string
}

// AuthService handles account lifecycle and the current-user read
type AuthService struct {
	account backend.Account
	avatars backend.Avatars
	users   *repository.UserRepository
	pending *PendingSignupStore
}

// NewAuthService creates a new auth service
func NewAuthService(account backend.Account, avatars backend.Avatars, users *repository.UserRepository, pending *PendingSignupStore) *AuthService {
	return &AuthService{account: account, avatars: avatars, users: users, pending: pending}
}

// CreateUserAccount registers an account, derives an initials avatar and
// creates the matching profile document. A half-created account is not
// rolled back here; its id is recorded so the cleanup flow can find it.
func (s *AuthService) CreateUserAccount(ctx context.Context, in NewUser) (*models.User, error) {
	account, err := s.account.Create(ctx, uuid.New().String(), in.Email, in.Password, in.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.pending.Set(account.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record pending signup")
	}

	avatarURL := s.avatars.GetInitials(in.Name)

	user, err := s.users.Create(ctx, &models.User{
		AccountID: account.ID,
		Name:      account.Name,
		Username:  in.Username,
		Email:     account.Email,
		ImageURL:  avatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	return user, nil
}

// SignIn opens an email/password session. The recorded pending signup,
// if any, is cleared: a sign-in means the account is usable.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := s.account.CreateEmailSession(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if err := s.pending.Clear(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear pending signup")
	}
	return session, nil
}

// SignOut ends the current session
func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.account.DeleteSession(ctx, "current"); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// GetAccount returns the account behind the current session
func (s *AuthService) GetAccount(ctx context.Context) (*models.Account, error) {
	return s.account.Get(ctx)
}

// GetCurrentUser resolves the current session to its profile document
func (s *AuthService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	account, err := s.account.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	user, err := s.users.GetByAccountID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// CleanupSignup removes the profile document of an abandoned sign-up and
// forgets the recorded credential. A missing document is not an error.
func (s *AuthService) CleanupSignup(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	users, _, err := s.users.List(ctx, backend.Equal("$id", userID))
	if err != nil {
		return fmt.Errorf("failed to clean up signup: %w", err)
	}
	if len(users) > 0 {
		if err := s.users.Delete(ctx, users[0].ID); err != nil {
			return fmt.Errorf("failed to clean up signup: %w", err)
		}
	} else {
		log.Info().Str("user_id", userID).Msg("No profile document to clean up")
	}

	if err := s.pending.Clear(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear pending signup")
	}
	return nil
}

// PendingSignup returns the account id of an unfinished sign-up, or ""
func (s *AuthService) PendingSignup() (string, error) {
	return s.pending.Get()
}

// SendVerification asks the account service to email a verification link
// pointing back at redirectURL. A conflict means the account is already
// verified; callers detect it with backend.IsConflict.
func (s *AuthService) SendVerification(ctx context.Context, redirectURL string) error {
	return s.account.CreateVerification(ctx, redirectURL)
}

// ConfirmVerification completes verification with the emailed secret
func (s *AuthService) ConfirmVerification(ctx context.Context, accountID, secret string) error {
	if accountID == "" {
		return ErrMissingUserID
	}
	return s.account.UpdateVerification(ctx, accountID, secret)
}
