package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	httpapi "github.com/driftwoodhq/clientdesk/internal/crm/http"
	"github.com/driftwoodhq/clientdesk/internal/crm/repo"
	"github.com/driftwoodhq/clientdesk/internal/crm/service"
	"github.com/driftwoodhq/clientdesk/internal/crm/session"
	"github.com/driftwoodhq/clientdesk/pkg/metricsx"
	"github.com/driftwoodhq/clientdesk/pkg/slogx"
	"github.com/driftwoodhq/clientdesk/pkg/supabase"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the dashboard server together: the backend client, the
// session store, the auth service and the HTTP surface.
type Application struct {
	cfg    Config
	logger *slog.Logger

	backend  *supabase.Client
	sessions *session.Store

	authService *service.AuthService

	server *http.Server
	router *httpapi.Router

	sentryEnabled bool
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clientdesk",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			Release:     "clientdesk@" + BuildVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize error reporting: %w", err)
		}
		app.sentryEnabled = true
	}

	metricsx.MustRegister()

	app.backend = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	app.sessions = session.NewStore(cfg.SessionTTL, app.logger)
	app.authService = &service.AuthService{Backend: app.backend}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("clientdesk starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"backend", app.cfg.SupabaseURL,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down clientdesk...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}

	app.logger.Info("clientdesk stopped")
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.backend, app.sessions, BuildVersion, app.logger)

	router.Auth = app.authService
	router.JWTSecret = app.cfg.SupabaseJWTSecret
	router.SecureCookies = app.cfg.SecureCookies
	router.NewDashboard = func(remote *supabase.Session, notices *service.NotificationBuffer) *service.Dashboard {
		return service.NewDashboard(&repo.ClientRepository{Rows: remote}, notices)
	}

	router.Use(app.recoverMiddleware)
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// recoverMiddleware converts handler panics into 500s. Panics are forwarded
// to the error reporting hub when one is configured.
func (app *Application) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if app.sentryEnabled {
					sentry.CurrentHub().Recover(rec)
				}
				app.logger.Error("panic recovered", "error", rec, "path", r.URL.Path)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
