package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
	"github.com/driftwoodhq/clientdesk/internal/crm/service"
	"github.com/driftwoodhq/clientdesk/internal/crm/session"
	"github.com/driftwoodhq/clientdesk/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PagesHandler renders the two HTML surfaces. The dashboard page is a
// server-rendered snapshot of the controller's state; the page script keeps
// it live through the JSON API.
type PagesHandler struct {
	Sessions  *session.Store
	JWTSecret string
}

type dashboardPage struct {
	User    string
	Phase   service.ListPhase
	Clients []domain.Client
	Filter  string
	Stats   service.Stats
	Notices []domain.Notification
}

// HandleLoginPage handles GET /login. An already-active session skips the
// form and goes straight to the dashboard.
func (h *PagesHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if _, ok := h.Sessions.Get(cookie.Value); ok {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}

	h.render(w, r, "login.html", nil)
}

// HandleDashboardPage handles GET /dashboard (behind the session gate).
// The first visit triggers the initial list load; a load failure still
// renders the page, with the error state and prior (or empty) list shown.
func (h *PagesHandler) HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry := entryFrom(ctx)
	dash := entry.Dashboard

	if r.URL.Query().Has("q") {
		dash.SetFilter(r.URL.Query().Get("q"))
	}

	if dash.Phase() == service.ListLoading {
		if err := dash.Load(ctx); err != nil {
			slogx.FromContext(ctx).Error("initial client load failed", "error", err)
		}
	}

	h.render(w, r, "dashboard.html", dashboardPage{
		User:    entry.Remote.User().Email,
		Phase:   dash.Phase(),
		Clients: dash.Visible(),
		Filter:  dash.Filter(),
		Stats:   dash.Stats(),
		Notices: entry.Notices.Drain(),
	})
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		slogx.FromContext(r.Context()).Error("template render failed", "template", name, "error", err)
	}
}
