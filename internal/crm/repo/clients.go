package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
	"github.com/driftwoodhq/clientdesk/pkg/metricsx"
)

// The four category errors the dashboard surfaces to the user. Underlying
// causes are attached for logs but never shown.
var (
	ErrListClients  = errors.New("failed to load clients")
	ErrCreateClient = errors.New("failed to add client")
	ErrUpdateClient = errors.New("failed to update client")
	ErrDeleteClient = errors.New("failed to delete client")
)

const clientsTable = "clients"

// RowStore is the slice of the backend session the repository needs.
// *supabase.Session satisfies it.
type RowStore interface {
	Select(ctx context.Context, table, query string, dest any) error
	Insert(ctx context.Context, table string, payload, dest any) error
	Update(ctx context.Context, table, filter string, payload any) error
	Delete(ctx context.Context, table, filter string) error
}

// ClientRepository maps the four client operations onto the remote clients
// table. Each operation is a single remote call with no batching or retries;
// rows are scoped to the authenticated account by the backend's row-level
// security.
type ClientRepository struct {
	Rows RowStore
}

type clientRow struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Company   string     `json:"company"`
	Phone     string     `json:"phone"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// observe counts the remote call by operation and outcome.
func observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metricsx.BackendCalls.WithLabelValues(operation, outcome).Inc()
}

func (r clientRow) toDomain() domain.Client {
	c := domain.Client{
		ID:      r.ID,
		Name:    r.Name,
		Email:   r.Email,
		Company: r.Company,
		Phone:   r.Phone,
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	return c
}

// List fetches all rows for the account, newest first. An empty list is a
// valid result, not an error.
func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	var rows []clientRow
	err := r.Rows.Select(ctx, clientsTable, "select=*&order=created_at.desc", &rows)
	observe("list", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListClients, err)
	}

	clients := make([]domain.Client, len(rows))
	for i, row := range rows {
		clients[i] = row.toDomain()
	}
	return clients, nil
}

// Create inserts one row and returns the server's full record, including the
// generated id. The insert is single-row atomic; there is no partial insert.
func (r *ClientRepository) Create(ctx context.Context, input domain.ClientInput) (domain.Client, error) {
	payload := clientRow{
		Name:    input.Name,
		Email:   input.Email,
		Company: input.Company,
		Phone:   input.Phone,
	}

	var created []clientRow
	err := r.Rows.Insert(ctx, clientsTable, payload, &created)
	observe("create", err)
	if err != nil {
		return domain.Client{}, fmt.Errorf("%w: %v", ErrCreateClient, err)
	}
	if len(created) != 1 {
		return domain.Client{}, fmt.Errorf("%w: expected one created row, got %d", ErrCreateClient, len(created))
	}

	return created[0].toDomain(), nil
}

// Update replaces the four mutable fields of the row matching the client's
// id. The caller already holds the desired state, so no payload is returned.
func (r *ClientRepository) Update(ctx context.Context, client domain.Client) error {
	payload := clientRow{
		Name:    client.Name,
		Email:   client.Email,
		Company: client.Company,
		Phone:   client.Phone,
	}

	err := r.Rows.Update(ctx, clientsTable, "id=eq."+client.ID, payload)
	observe("update", err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateClient, err)
	}
	return nil
}

// Delete removes the row matching id.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	err := r.Rows.Delete(ctx, clientsTable, "id=eq."+id)
	observe("delete", err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteClient, err)
	}
	return nil
}
