package http

import (
	"net/http"
	"time"

	"github.com/driftwoodhq/clientdesk/internal/crm/session"
	"github.com/driftwoodhq/clientdesk/pkg/httpx"
	"github.com/driftwoodhq/clientdesk/pkg/supabase"
)

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version"`
	Backend  string `json:"backend,omitempty"`
	Sessions int    `json:"sessions,omitempty"`
}

// LivezHandler reports that the process is up. Always 200 while serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler additionally pings the hosted backend; the app is not ready
// if its only dependency is unreachable.
func ReadyzHandler(
	startTime time.Time,
	version string,
	backend *supabase.Client,
	sessions *session.Store,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := healthResponse{
			Status:   "ok",
			Uptime:   time.Since(startTime).String(),
			Version:  version,
			Backend:  "ok",
			Sessions: sessions.Count(),
		}
		statusCode := http.StatusOK

		if err := backend.Health(r.Context()); err != nil {
			response.Status = "degraded"
			response.Backend = "error: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, response)
	}
}
