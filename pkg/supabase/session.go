package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Session is an authenticated handle on the hosted backend. It holds the
// token pair and refreshes the access token transparently shortly before it
// expires. Safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         User
}

// newSession creates a session from a token response.
func newSession(client *Client, tokenResp *TokenResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  tokenResp.AccessToken,
		refreshToken: tokenResp.RefreshToken,
		expiresAt:    expiryFor(tokenResp.ExpiresIn),
		user:         tokenResp.User,
	}
}

// NewSessionFromTokens restores a session from previously issued tokens,
// e.g. tokens persisted across a restart. Auto-refresh still applies.
func (c *Client) NewSessionFromTokens(tokenResp *TokenResponse) *Session {
	return newSession(c, tokenResp)
}

// expiryFor converts an expires_in window into a refresh deadline with a
// 30 second buffer so the token is renewed before it actually lapses.
func expiryFor(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn)*time.Second - 30*time.Second)
}

// User returns the account this session was issued for.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// getValidToken returns a valid access token, refreshing it first if the
// deadline has passed.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock; another goroutine may
	// have refreshed already.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.RefreshSession(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}

	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = expiryFor(tokenResp.ExpiresIn)
	if tokenResp.User.ID != "" {
		s.user = tokenResp.User
	}

	return s.accessToken, nil
}

// doAuthRequest performs an authenticated request with a valid bearer token.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers["Authorization"] = "Bearer " + token

	return s.client.doRequest(ctx, method, path, body, headers)
}

// SignOut revokes the session on the auth service. The local token pair is
// cleared regardless of the outcome; a revocation failure is still returned
// so callers can log it.
func (s *Session) SignOut(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent, http.StatusOK)
}
