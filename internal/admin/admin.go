// Package admin manages the accounts behind the dashboard: sign-in and
// password change. It is collaborator glue around the core, not part of the
// record lifecycle itself.
package admin

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials covers both unknown emails and wrong passwords; callers
// get one message so the login form does not leak which half failed.
var ErrBadCredentials = errors.New("invalid email or password")

const minPasswordLen = 6

// Account is a dashboard login.
type Account struct {
	Email        string
	PasswordHash string
}

// Accounts is the persistence contract for admin credentials.
type Accounts interface {
	ByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, email, hash string) error
}

// Service verifies and rotates admin credentials.
type Service struct {
	accounts Accounts
}

// NewService creates the admin credential service.
func NewService(accounts Accounts) *Service {
	return &Service{accounts: accounts}
}

// Login checks the password against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, error) {
	acct, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return acct, nil
}

// ChangePassword rotates the password after re-verifying the current one.
// Issued tokens stay valid until their TTL; the client re-authenticates.
func (s *Service) ChangePassword(ctx context.Context, email, current, next string) error {
	if current == "" || next == "" {
		return errors.New("all fields are required")
	}
	if len(next) < minPasswordLen {
		return fmt.Errorf("new password must be at least %d characters", minPasswordLen)
	}
	if _, err := s.Login(ctx, email, current); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, email, string(hash))
}

// HashPassword produces a bcrypt hash for seeding accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
