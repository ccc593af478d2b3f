package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
	"github.com/driftwoodhq/clientdesk/internal/crm/service"
	"github.com/driftwoodhq/clientdesk/internal/crm/session"
	"github.com/driftwoodhq/clientdesk/pkg/httpx"
	"github.com/driftwoodhq/clientdesk/pkg/slogx"
	"github.com/driftwoodhq/clientdesk/pkg/supabase"
)

// AuthHandler serves the login/signup/logout API behind the auth surface.
type AuthHandler struct {
	Auth          *service.AuthService
	Backend       *supabase.Client
	Sessions      *session.Store
	NewDashboard  DashboardFactory
	SecureCookies bool
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Redirect             string                `json:"redirect,omitempty"`
	ConfirmationRequired bool                  `json:"confirmation_required,omitempty"`
	Notice               *domain.Notification  `json:"notice,omitempty"`
	User                 string                `json:"user,omitempty"`
}

// HandleLogin handles POST /v1/auth/login. One attempt per request; the
// remote service's error message is passed through verbatim.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	remote, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeAuthError(w, log, err, "sign-in failed")
		return
	}

	sid := h.startSession(remote)
	h.setSessionCookie(w, sid)

	log.Info("user signed in", "user", remote.User().Email)
	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Redirect: "/dashboard",
		User:     remote.User().Email,
		Notice: &domain.Notification{
			Kind:    domain.NoticeSuccess,
			Title:   "Welcome back!",
			Message: "You've successfully logged in.",
		},
	})
}

// HandleSignup handles POST /v1/auth/signup. Short passwords are rejected
// before any network call; otherwise the remote policy decides whether the
// account needs email confirmation first.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	result, err := h.Auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		writeAuthError(w, log, err, "sign-up failed")
		return
	}

	if result.ConfirmationRequired {
		log.Info("user signed up, confirmation pending", "user", result.User.Email)
		httpx.WriteJSON(w, http.StatusOK, authResponse{
			ConfirmationRequired: true,
			Notice: &domain.Notification{
				Kind:    domain.NoticeSuccess,
				Title:   "Check your email",
				Message: "We've sent you a confirmation link to complete your registration.",
			},
		})
		return
	}

	// Auto-confirm projects hand back a ready session; sign the user in.
	remote := h.Backend.NewSessionFromTokens(result.Session)
	sid := h.startSession(remote)
	h.setSessionCookie(w, sid)

	log.Info("user signed up", "user", result.User.Email)
	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Redirect: "/dashboard",
		User:     result.User.Email,
		Notice: &domain.Notification{
			Kind:    domain.NoticeSuccess,
			Title:   "Account created",
			Message: "Welcome to your dashboard.",
		},
	})
}

// HandleLogout handles POST /v1/auth/logout. The remote session is revoked,
// the server entry dropped and the cookie cleared; after this no list
// operation is valid for the old session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	entry := entryFrom(ctx)

	if err := entry.Remote.SignOut(ctx); err != nil {
		// The local session is dropped regardless; revocation failure only
		// matters for logs.
		log.Warn("remote sign-out failed", "err", err)
	}
	h.Sessions.Delete(entry.ID)
	h.clearSessionCookie(w)

	log.Info("user signed out")
	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Redirect: "/login",
		Notice: &domain.Notification{
			Kind:    domain.NoticeSuccess,
			Title:   "Logged out",
			Message: "You've been successfully logged out.",
		},
	})
}

func (h *AuthHandler) startSession(remote *supabase.Session) string {
	notices := &service.NotificationBuffer{}
	return h.Sessions.Put(&session.Entry{
		Remote:    remote,
		Dashboard: h.NewDashboard(remote, notices),
		Notices:   notices,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeAuthError maps auth failures onto responses. Remote service errors
// keep their own wording; local validation failures get a 400.
func writeAuthError(w http.ResponseWriter, log interface{ Warn(string, ...any) }, err error, what string) {
	var apiErr *supabase.APIError
	switch {
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusUnauthorized
		}
		httpx.WriteError(w, status, "auth_failed", apiErr.Message)
	case errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrPasswordTooShort):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		log.Warn(what, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "auth_unavailable", "Authentication service is unavailable. Please try again.")
	}
}
