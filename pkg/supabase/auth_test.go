package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFakeBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "anon-key")
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	t.Run("returns session on success", func(t *testing.T) {
		client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/v1/token", r.URL.Path)
			require.Equal(t, "password", r.URL.Query().Get("grant_type"))
			require.Equal(t, "anon-key", r.Header.Get("apikey"))

			var creds credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "ann@x.com", creds.Email)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(TokenResponse{
				AccessToken:  "access-1",
				TokenType:    "bearer",
				ExpiresIn:    3600,
				RefreshToken: "refresh-1",
				User:         User{ID: "user-1", Email: "ann@x.com"},
			})
		})

		sess, err := client.SignIn(context.Background(), "ann@x.com", "secret123")
		require.NoError(t, err)
		require.Equal(t, "access-1", sess.AccessToken())
		require.Equal(t, "refresh-1", sess.RefreshToken())
		require.Equal(t, "ann@x.com", sess.User().Email)
	})

	t.Run("surfaces the service error verbatim", func(t *testing.T) {
		client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid login credentials",
			})
		})

		_, err := client.SignIn(context.Background(), "ann@x.com", "wrong")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "invalid_grant", apiErr.Code)
		require.Equal(t, "Invalid login credentials", apiErr.Message)
	})
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("pending account requires confirmation", func(t *testing.T) {
		client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/v1/signup", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":    "user-2",
				"email": "new@x.com",
			})
		})

		result, err := client.SignUp(context.Background(), "new@x.com", "secret123")
		require.NoError(t, err)
		require.True(t, result.ConfirmationRequired)
		require.Nil(t, result.Session)
		require.Equal(t, "new@x.com", result.User.Email)
	})

	t.Run("auto-confirm returns a ready session", func(t *testing.T) {
		client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-2",
				"token_type":    "bearer",
				"expires_in":    3600,
				"refresh_token": "refresh-2",
				"user":          User{ID: "user-3", Email: "auto@x.com"},
			})
		})

		result, err := client.SignUp(context.Background(), "auto@x.com", "secret123")
		require.NoError(t, err)
		require.False(t, result.ConfirmationRequired)
		require.NotNil(t, result.Session)
		require.Equal(t, "access-2", result.Session.AccessToken)
		require.Equal(t, "auto@x.com", result.User.Email)
	})

	t.Run("rejection is surfaced verbatim", func(t *testing.T) {
		client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"msg": "User already registered",
			})
		})

		_, err := client.SignUp(context.Background(), "dup@x.com", "secret123")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "User already registered", apiErr.Message)
	})
}

func TestSessionAutoRefresh(t *testing.T) {
	t.Parallel()

	refreshCalls := 0
	client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			refreshCalls++
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(TokenResponse{
				AccessToken:  "access-new",
				ExpiresIn:    3600,
				RefreshToken: "refresh-new",
			})
		case r.URL.Path == "/rest/v1/clients":
			require.Equal(t, "Bearer access-new", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("[]"))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
	})

	// ExpiresIn of zero puts the refresh deadline in the past, so the first
	// authenticated call must refresh before hitting the row store.
	sess := client.NewSessionFromTokens(&TokenResponse{
		AccessToken:  "access-stale",
		ExpiresIn:    0,
		RefreshToken: "refresh-old",
	})

	var rows []map[string]any
	require.NoError(t, sess.Select(context.Background(), "clients", "select=*", &rows))
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, "refresh-new", sess.RefreshToken())

	// A second call reuses the refreshed token.
	require.NoError(t, sess.Select(context.Background(), "clients", "select=*", &rows))
	require.Equal(t, 1, refreshCalls)
}

func TestSignOut(t *testing.T) {
	t.Parallel()

	client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/logout", r.URL.Path)
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	sess := client.NewSessionFromTokens(&TokenResponse{
		AccessToken:  "access-1",
		ExpiresIn:    3600,
		RefreshToken: "refresh-1",
	})

	require.NoError(t, sess.SignOut(context.Background()))
	require.Empty(t, sess.AccessToken())
	require.Empty(t, sess.RefreshToken())
}
