package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates with the password grant and returns an authenticated
// Session. The error message from the service is preserved verbatim in the
// returned *APIError so callers can surface it to the user.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := c.doRequest(ctx,
		http.MethodPost, "/auth/v1/token?grant_type=password",
		bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, &tokenResp), nil
}

// SignUp registers a new account. Whether the result carries a ready session
// or a pending user depends on the project's email confirmation policy.
func (c *Client) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := c.doRequest(ctx,
		http.MethodPost, "/auth/v1/signup",
		bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return nil, err
	}

	var raw signUpResponse
	if err := decodeJSON(resp, &raw, http.StatusOK); err != nil {
		return nil, err
	}

	result := &SignUpResult{}
	if raw.AccessToken != "" && raw.User != nil {
		result.User = *raw.User
		result.Session = &TokenResponse{
			AccessToken:  raw.AccessToken,
			TokenType:    raw.TokenType,
			ExpiresIn:    raw.ExpiresIn,
			RefreshToken: raw.RefreshToken,
			User:         *raw.User,
		}
		return result, nil
	}

	result.User = User{ID: raw.ID, Email: raw.Email}
	result.ConfirmationRequired = true
	return result, nil
}

// RefreshSession exchanges a refresh token for a fresh token pair. This is
// used both by Session auto-refresh and to restore a session across restarts.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to encode refresh request: %w", err)
	}

	resp, err := c.doRequest(ctx,
		http.MethodPost, "/auth/v1/token?grant_type=refresh_token",
		bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}
