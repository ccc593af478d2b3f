package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
)

var ErrClientNotFound = errors.New("client not found")

// ClientRepository is the narrow set of remote operations the dashboard uses.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
	Create(ctx context.Context, input domain.ClientInput) (domain.Client, error)
	Update(ctx context.Context, client domain.Client) error
	Delete(ctx context.Context, id string) error
}

// Notifier receives the user-visible toast for every mutating flow.
type Notifier interface {
	Notify(domain.Notification)
}

// ListPhase is the state of the client list.
type ListPhase string

const (
	ListLoading ListPhase = "loading"
	ListLoaded  ListPhase = "loaded"
	ListFailed  ListPhase = "error"
)

// DialogMode is the state of the create/edit dialog.
type DialogMode string

const (
	DialogClosed DialogMode = "closed"
	DialogCreate DialogMode = "create"
	DialogEdit   DialogMode = "edit"
)

// Stats are the dashboard's summary counters. ActiveToday and NewThisWeek
// are decorative fractions of the total; there is no temporal data source
// behind them.
type Stats struct {
	Total       int `json:"total"`
	ActiveToday int `json:"active_today"`
	NewThisWeek int `json:"new_this_week"`
}

// Dashboard owns the in-memory client list, the live search filter and the
// dialog state for one signed-in browser session. The presentation layer
// never mutates the list directly; it submits intents and the dashboard
// reconciles local state after each remote call settles. Mutations on the
// list are applied strictly in settlement order; concurrent edits to the
// same id are last-writer-wins.
//
// The mutex is released while a remote call is in flight so unrelated
// intents are not blocked behind it.
type Dashboard struct {
	Repo     ClientRepository
	Notifier Notifier

	mu         sync.Mutex
	phase      ListPhase
	clients    []domain.Client
	filter     string
	dialog     DialogMode
	editTarget domain.Client
}

// NewDashboard returns a dashboard in the loading phase with a closed dialog.
func NewDashboard(repo ClientRepository, notifier Notifier) *Dashboard {
	return &Dashboard{
		Repo:     repo,
		Notifier: notifier,
		phase:    ListLoading,
		dialog:   DialogClosed,
	}
}

// Load fetches the list from the remote store and settles the list state.
// On failure the previously loaded list (or the empty one) stays displayed.
func (d *Dashboard) Load(ctx context.Context) error {
	clients, err := d.Repo.List(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.phase = ListFailed
		d.notifyLocked(domain.Notification{
			Kind:    domain.NoticeError,
			Title:   "Error",
			Message: "Failed to load clients. Please try again.",
		})
		return err
	}

	d.phase = ListLoaded
	d.clients = clients
	return nil
}

// SetFilter updates the live search string.
func (d *Dashboard) SetFilter(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = query
}

// Visible returns the clients matching the current filter. The result is a
// fresh slice; callers cannot reach the owned list through it.
func (d *Dashboard) Visible() []domain.Client {
	d.mu.Lock()
	defer d.mu.Unlock()

	visible := domain.Filter(d.clients, d.filter)
	out := make([]domain.Client, len(visible))
	copy(out, visible)
	return out
}

// Phase returns the current list state.
func (d *Dashboard) Phase() ListPhase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// Filter returns the current search string.
func (d *Dashboard) Filter() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// Dialog returns the dialog mode and, in edit mode, the target client.
func (d *Dashboard) Dialog() (DialogMode, domain.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialog, d.editTarget
}

// OpenCreate opens the dialog with a blank form buffer.
func (d *Dashboard) OpenCreate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialog = DialogCreate
	d.editTarget = domain.Client{}
}

// OpenEdit opens the dialog pre-populated from the target client.
func (d *Dashboard) OpenEdit(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.clients {
		if c.ID == id {
			d.dialog = DialogEdit
			d.editTarget = c
			return nil
		}
	}
	return ErrClientNotFound
}

// CloseDialog closes the dialog without saving.
func (d *Dashboard) CloseDialog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialog = DialogClosed
	d.editTarget = domain.Client{}
}

// SubmitCreate validates the form buffer and inserts the client. On success
// the server record is prepended to the list and the dialog closes; on
// failure the list is untouched and the dialog stays open so nothing appears
// to have succeeded silently.
func (d *Dashboard) SubmitCreate(ctx context.Context, input domain.ClientInput) (domain.Client, error) {
	if err := input.Validate(); err != nil {
		return domain.Client{}, err
	}

	created, err := d.Repo.Create(ctx, input)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.notifyLocked(domain.Notification{
			Kind:    domain.NoticeError,
			Title:   "Error",
			Message: "Failed to add client. Please try again.",
		})
		return domain.Client{}, err
	}

	d.clients = append([]domain.Client{created}, d.clients...)
	d.dialog = DialogClosed
	d.editTarget = domain.Client{}
	d.notifyLocked(domain.Notification{
		Kind:    domain.NoticeSuccess,
		Title:   "Client added",
		Message: fmt.Sprintf("%s has been added successfully.", created.Name),
	})
	return created, nil
}

// SubmitEdit merges the form buffer over the client matching id and pushes
// the result to the remote store. On success the list entry is replaced in
// place, position preserved; on failure the prior local copy is kept and the
// dialog stays open.
func (d *Dashboard) SubmitEdit(ctx context.Context, id string, input domain.ClientInput) (domain.Client, error) {
	if err := input.Validate(); err != nil {
		return domain.Client{}, err
	}

	d.mu.Lock()
	target, idx := d.findLocked(id)
	d.mu.Unlock()
	if idx < 0 {
		return domain.Client{}, ErrClientNotFound
	}

	merged := input.Apply(target)
	err := d.Repo.Update(ctx, merged)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.notifyLocked(domain.Notification{
			Kind:    domain.NoticeError,
			Title:   "Error",
			Message: "Failed to update client. Please try again.",
		})
		return domain.Client{}, err
	}

	// Re-resolve the index; the list may have shifted while the call was in
	// flight. If the entry vanished meanwhile, the delete already won.
	if _, idx := d.findLocked(id); idx >= 0 {
		d.clients[idx] = merged
	}
	d.dialog = DialogClosed
	d.editTarget = domain.Client{}
	d.notifyLocked(domain.Notification{
		Kind:    domain.NoticeSuccess,
		Title:   "Client updated",
		Message: fmt.Sprintf("%s has been updated successfully.", merged.Name),
	})
	return merged, nil
}

// Delete removes the client by id. The caller is responsible for the
// explicit confirmation step before invoking this. The local entry is only
// dropped once the server confirms the deletion.
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	target, idx := d.findLocked(id)
	d.mu.Unlock()
	if idx < 0 {
		return ErrClientNotFound
	}

	err := d.Repo.Delete(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.notifyLocked(domain.Notification{
			Kind:    domain.NoticeError,
			Title:   "Error",
			Message: "Failed to delete client. Please try again.",
		})
		return err
	}

	if _, idx := d.findLocked(id); idx >= 0 {
		d.clients = append(d.clients[:idx], d.clients[idx+1:]...)
	}
	d.notifyLocked(domain.Notification{
		Kind:    domain.NoticeSuccess,
		Title:   "Client deleted",
		Message: fmt.Sprintf("%s has been removed.", target.Name),
	})
	return nil
}

// Stats returns the summary counters for the current list.
func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	total := len(d.clients)
	return Stats{
		Total:       total,
		ActiveToday: total * 6 / 10,
		NewThisWeek: total * 3 / 10,
	}
}

func (d *Dashboard) findLocked(id string) (domain.Client, int) {
	for i, c := range d.clients {
		if c.ID == id {
			return c, i
		}
	}
	return domain.Client{}, -1
}

func (d *Dashboard) notifyLocked(n domain.Notification) {
	if d.Notifier != nil {
		d.Notifier.Notify(n)
	}
}
