package service

import (
	"context"
	"testing"

	"github.com/driftwoodhq/clientdesk/pkg/supabase"
	"github.com/stretchr/testify/require"
)

// fakeAuth counts network calls so tests can assert client-side rejections
// never reach the wire.
type fakeAuth struct {
	signInCalls int
	signUpCalls int
	err         error
}

func (f *fakeAuth) SignIn(context.Context, string, string) (*supabase.Session, error) {
	f.signInCalls++
	if f.err != nil {
		return nil, f.err
	}
	client := supabase.NewClient("http://backend.invalid", "anon")
	return client.NewSessionFromTokens(&supabase.TokenResponse{
		AccessToken: "access", ExpiresIn: 3600, RefreshToken: "refresh",
		User: supabase.User{ID: "user-1", Email: "ann@x.com"},
	}), nil
}

func (f *fakeAuth) SignUp(context.Context, string, string) (*supabase.SignUpResult, error) {
	f.signUpCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &supabase.SignUpResult{
		User:                 supabase.User{ID: "user-2", Email: "new@x.com"},
		ConfirmationRequired: true,
	}, nil
}

func TestSignInValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := &fakeAuth{}
	svc := &AuthService{Backend: backend}

	_, err := svc.SignIn(ctx, "", "secret123")
	require.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.SignIn(ctx, "ann@x.com", "")
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.Zero(t, backend.signInCalls)

	sess, err := svc.SignIn(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", sess.User().Email)
	require.Equal(t, 1, backend.signInCalls)
}

func TestSignUpRejectsShortPasswordBeforeNetwork(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := &fakeAuth{}
	svc := &AuthService{Backend: backend}

	_, err := svc.SignUp(ctx, "new@x.com", "12345")
	require.ErrorIs(t, err, ErrPasswordTooShort)
	require.Zero(t, backend.signUpCalls)

	result, err := svc.SignUp(ctx, "new@x.com", "123456")
	require.NoError(t, err)
	require.True(t, result.ConfirmationRequired)
	require.Equal(t, 1, backend.signUpCalls)
}
