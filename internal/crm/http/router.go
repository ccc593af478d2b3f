package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/driftwoodhq/clientdesk/internal/crm/service"
	"github.com/driftwoodhq/clientdesk/internal/crm/session"
	"github.com/driftwoodhq/clientdesk/pkg/httpx"
	"github.com/driftwoodhq/clientdesk/pkg/metricsx"
	"github.com/driftwoodhq/clientdesk/pkg/slogx"
	"github.com/driftwoodhq/clientdesk/pkg/supabase"
)

// DashboardFactory builds the per-session view-state controller once a user
// has signed in.
type DashboardFactory func(remote *supabase.Session, notices *service.NotificationBuffer) *service.Dashboard

// Router holds shared dependencies for the HTTP handlers: the two HTML
// surfaces, the JSON API behind the dashboard, and the system endpoints.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	logger       *slog.Logger
	startTime    time.Time
	buildVersion string

	Auth          *service.AuthService
	Sessions      *session.Store
	Backend       *supabase.Client
	NewDashboard  DashboardFactory
	JWTSecret     string
	SecureCookies bool
}

func NewRouter(
	backend *supabase.Client,
	sessions *session.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		logger:       logger,
		startTime:    time.Now(),
		buildVersion: buildVersion,
		Sessions:     sessions,
		Backend:      backend,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metricsx.HTTPMiddleware,
	}

	return r
}

// Use appends a global middleware, e.g. the error reporting hub.
func (r *Router) Use(mw httpx.Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerAuth()
	r.registerClients()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPages() {
	h := &PagesHandler{Sessions: r.Sessions, JWTSecret: r.JWTSecret}

	r.Mux.Handle("GET /{$}", http.RedirectHandler("/login", http.StatusFound))
	r.Mux.HandleFunc("GET /login", h.HandleLoginPage)

	// The dashboard is behind the session gate.
	r.Mux.Handle("GET /dashboard",
		httpx.Chain(http.HandlerFunc(h.HandleDashboardPage),
			r.SessionGate(gateRedirect),
		),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Auth:          r.Auth,
		Backend:       r.Backend,
		Sessions:      r.Sessions,
		NewDashboard:  r.NewDashboard,
		SecureCookies: r.SecureCookies,
	}

	r.Mux.HandleFunc("POST /v1/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /v1/auth/signup", h.HandleSignup)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.SessionGate(gateJSON),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{}

	gated := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, r.SessionGate(gateJSON))
	}

	r.Mux.Handle("GET /v1/clients", gated(h.HandleList))
	r.Mux.Handle("POST /v1/clients", gated(h.HandleCreate))
	r.Mux.Handle("PUT /v1/clients/{id}", gated(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/clients/{id}", gated(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Backend, r.Sessions))
	r.Mux.Handle("GET /metrics", metricsx.Handler())
}
