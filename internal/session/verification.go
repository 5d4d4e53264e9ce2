package session

import (
	"context"
	"sync"
	"time"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/services"

	"github.com/rs/zerolog/log"
)

// VerificationStatus is the verification state machine's state.
type VerificationStatus int

const (
	Unverified VerificationStatus = iota
	Checking
	Verified
	Failed
)

func (s VerificationStatus) String() string {
	switch s {
	case Unverified:
		return "unverified"
	case Checking:
		return "checking"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Verifier polls the account service until the email is verified. It is
// the replacement for ad-hoc interval polling: one cancellable periodic
// task whose Stop is guaranteed and idempotent, so no timer outlives its
// owner.
type Verifier struct {
	auth     *services.AuthService
	interval time.Duration

	mu      sync.Mutex
	status  VerificationStatus
	lastErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewVerifier creates a verifier polling at the given interval.
func NewVerifier(auth *services.AuthService, interval time.Duration) *Verifier {
	return &Verifier{auth: auth, interval: interval, status: Unverified}
}

// Start begins polling. Starting an already running or verified
// verifier is a no-op. Polling stops itself once verified.
func (v *Verifier) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil || v.status == Verified {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.done = make(chan struct{})
	go v.poll(ctx, v.done)
}

func (v *Verifier) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		if v.CheckNow(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CheckNow performs one verification check and advances the state
// machine. Returns true when the account is verified.
func (v *Verifier) CheckNow(ctx context.Context) bool {
	v.setStatus(Checking, nil)

	account, err := v.auth.GetAccount(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("Verification check failed")
		}
		v.setStatus(Failed, err)
		return false
	}

	if account.EmailVerification {
		v.setStatus(Verified, nil)
		v.cancelPolling()
		return true
	}

	v.setStatus(Unverified, nil)
	return false
}

// RequestEmail asks for a verification email. A remote conflict means
// the account is already verified; the machine moves to Verified and no
// error is returned.
func (v *Verifier) RequestEmail(ctx context.Context, redirectURL string) error {
	err := v.auth.SendVerification(ctx, redirectURL)
	if err == nil {
		return nil
	}
	if backend.IsConflict(err) {
		v.setStatus(Verified, nil)
		v.cancelPolling()
		return nil
	}
	return err
}

// Confirm completes verification with the emailed credentials and, on
// success, moves the machine to Verified.
func (v *Verifier) Confirm(ctx context.Context, accountID, secret string) error {
	if err := v.auth.ConfirmVerification(ctx, accountID, secret); err != nil {
		return err
	}
	v.setStatus(Verified, nil)
	v.cancelPolling()
	return nil
}

// Status returns the current state and the last check error, if any.
func (v *Verifier) Status() (VerificationStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status, v.lastErr
}

// Stop cancels polling and waits for the poller to exit. Idempotent;
// must be called on owner teardown.
func (v *Verifier) Stop() {
	v.mu.Lock()
	cancel := v.cancel
	done := v.done
	v.cancel = nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// cancelPolling cancels polling without waiting for the poller to
// exit; safe to call from inside the poller itself.
func (v *Verifier) cancelPolling() {
	v.mu.Lock()
	cancel := v.cancel
	v.cancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (v *Verifier) setStatus(status VerificationStatus, err error) {
	v.mu.Lock()
	v.status = status
	v.lastErr = err
	v.mu.Unlock()
}
