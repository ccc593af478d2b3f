package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/driftwoodhq/clientdesk/internal/crm/session"
	"github.com/driftwoodhq/clientdesk/pkg/httpx"
	"github.com/driftwoodhq/clientdesk/pkg/slogx"
)

type ctxKey string

const ctxKeyEntry ctxKey = "session_entry"

// gateMode controls how an unauthenticated request is turned away: HTML
// surfaces are redirected to the login page, the JSON API gets a 401.
type gateMode int

const (
	gateRedirect gateMode = iota
	gateJSON
)

// SessionGate is the middleware in front of everything that needs a signed-in
// user. It resolves the session cookie against the store, optionally verifies
// the remote access token's signature, and injects the session entry into the
// request context. Absence of a valid session is the only signal consumed;
// any inspection error is treated the same as no session.
func (r *Router) SessionGate(mode gateMode) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			entry, ok := r.lookupSession(req)
			if !ok {
				switch mode {
				case gateJSON:
					httpx.WriteError(w, http.StatusUnauthorized, "not_authenticated", "Sign in to continue")
				default:
					http.Redirect(w, req, "/login", http.StatusFound)
				}
				return
			}

			ctx := context.WithValue(req.Context(), ctxKeyEntry, entry)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func (r *Router) lookupSession(req *http.Request) (*session.Entry, bool) {
	cookie, err := req.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	entry, ok := r.Sessions.Get(cookie.Value)
	if !ok {
		return nil, false
	}

	if r.JWTSecret != "" {
		if err := verifyAccessToken(entry.Remote.AccessToken(), r.JWTSecret); err != nil {
			slogx.FromContext(req.Context()).Warn("access token rejected", "err", err)
			r.Sessions.Delete(cookie.Value)
			return nil, false
		}
	}

	return entry, true
}

// verifyAccessToken checks the HS256 signature of the backend-issued access
// token against the project JWT secret. Expiry is deliberately not enforced
// here; the SDK session refreshes the token transparently on use.
func verifyAccessToken(token, secret string) error {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return fmt.Errorf("failed to parse access token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("access token has no subject")
	}
	return nil
}

// entryFrom returns the session entry the gate stored in the context.
func entryFrom(ctx context.Context) *session.Entry {
	entry, _ := ctx.Value(ctxKeyEntry).(*session.Entry)
	return entry
}
