package service

import (
	"context"
	"errors"
	"strings"

	"github.com/driftwoodhq/clientdesk/pkg/supabase"
)

// MinPasswordLen mirrors the backend's minimum so obviously short passwords
// are rejected before any network call is made.
const MinPasswordLen = 6

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// Authenticator is the slice of the backend client the auth service uses.
// *supabase.Client satisfies it.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.SignUpResult, error)
}

// AuthService fronts the remote auth service for the login/signup surface.
// Both flows are single-attempt; service errors are passed through verbatim
// for the user to see.
type AuthService struct {
	Backend Authenticator
}

// SignIn authenticates email+password against the remote service.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*supabase.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return s.Backend.SignIn(ctx, email, password)
}

// SignUp registers a new account. Whether the account is immediately usable
// or pending email confirmation is the remote service's policy.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*supabase.SignUpResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	return s.Backend.SignUp(ctx, email, password)
}
