package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
	"github.com/driftwoodhq/clientdesk/internal/crm/service"
	"github.com/driftwoodhq/clientdesk/pkg/httpx"
	"github.com/driftwoodhq/clientdesk/pkg/slogx"
)

// ClientsHandler serves the JSON API the dashboard page drives. All routes
// sit behind the session gate; the per-session dashboard controller comes
// out of the request context.
type ClientsHandler struct{}

type listResponse struct {
	Phase   service.ListPhase     `json:"phase"`
	Clients []domain.Client       `json:"clients"`
	Stats   service.Stats         `json:"stats"`
	Notices []domain.Notification `json:"notices,omitempty"`
}

type clientResponse struct {
	Client  domain.Client         `json:"client"`
	Notices []domain.Notification `json:"notices,omitempty"`
}

type noticesResponse struct {
	Notices []domain.Notification `json:"notices,omitempty"`
}

// HandleList handles GET /v1/clients. The q parameter sets the live filter;
// reload=true (and the very first call) fetches from the remote store,
// otherwise the in-memory list is served as-is.
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry := entryFrom(ctx)
	dash := entry.Dashboard

	if r.URL.Query().Has("q") {
		dash.SetFilter(r.URL.Query().Get("q"))
	}

	if dash.Phase() != service.ListLoaded || r.URL.Query().Get("reload") == "true" {
		if err := dash.Load(ctx); err != nil {
			slogx.FromContext(ctx).Error("failed to load clients", "error", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, listResponse{
		Phase:   dash.Phase(),
		Clients: dash.Visible(),
		Stats:   dash.Stats(),
		Notices: entry.Notices.Drain(),
	})
}

// HandleCreate handles POST /v1/clients.
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry := entryFrom(ctx)

	var input domain.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	entry.Dashboard.OpenCreate()
	created, err := entry.Dashboard.SubmitCreate(ctx, input)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, clientResponse{
		Client:  created,
		Notices: entry.Notices.Drain(),
	})
}

// HandleUpdate handles PUT /v1/clients/{id}.
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry := entryFrom(ctx)
	id := r.PathValue("id")

	var input domain.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	if err := entry.Dashboard.OpenEdit(id); err != nil {
		httpx.WriteError(w, http.StatusNotFound, "client_not_found", "Client not found")
		return
	}

	updated, err := entry.Dashboard.SubmitEdit(ctx, id, input)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientResponse{
		Client:  updated,
		Notices: entry.Notices.Drain(),
	})
}

// HandleDelete handles DELETE /v1/clients/{id}. The confirm=true parameter
// is the API-level footprint of the confirmation dialog; deletes without it
// are rejected.
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry := entryFrom(ctx)
	id := r.PathValue("id")

	if r.URL.Query().Get("confirm") != "true" {
		httpx.WriteError(w, http.StatusBadRequest, "confirmation_required", "Deleting a client requires explicit confirmation")
		return
	}

	if err := entry.Dashboard.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "client_not_found", "Client not found")
			return
		}
		h.writeMutationError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, noticesResponse{
		Notices: entry.Notices.Drain(),
	})
}

// writeMutationError maps controller failures onto responses. Validation
// errors are the caller's fault; everything else is a remote failure whose
// category message the UI shows as a toast.
func (h *ClientsHandler) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	entry := entryFrom(r.Context())

	switch {
	case errors.Is(err, domain.ErrMissingField):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrClientNotFound):
		httpx.WriteError(w, http.StatusNotFound, "client_not_found", "Client not found")
	default:
		slogx.FromContext(r.Context()).Error("client operation failed", "error", err)
		httpx.WriteJSON(w, http.StatusBadGateway, struct {
			httpx.ErrorResponse
			Notices []domain.Notification `json:"notices,omitempty"`
		}{
			ErrorResponse: httpx.ErrorResponse{Error: "backend_error", ErrorDescription: err.Error()},
			Notices:       entry.Notices.Drain(),
		})
	}
}
