package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
	"github.com/stretchr/testify/require"
)

// fakeRows records calls and plays back canned responses.
type fakeRows struct {
	selectBody string
	insertBody string
	err        error

	lastTable  string
	lastQuery  string
	lastFilter string
	payloads   []any
}

func (f *fakeRows) Select(_ context.Context, table, query string, dest any) error {
	f.lastTable, f.lastQuery = table, query
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.selectBody), dest)
}

func (f *fakeRows) Insert(_ context.Context, table string, payload, dest any) error {
	f.lastTable = table
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.insertBody), dest)
}

func (f *fakeRows) Update(_ context.Context, table, filter string, payload any) error {
	f.lastTable, f.lastFilter = table, filter
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *fakeRows) Delete(_ context.Context, table, filter string) error {
	f.lastTable, f.lastFilter = table, filter
	return f.err
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("maps rows newest first as returned", func(t *testing.T) {
		rows := &fakeRows{selectBody: `[
			{"id":"2","name":"Sarah Johnson","email":"sarah.j@company.com","company":"Digital Ventures","phone":"2","created_at":"2026-08-29T10:00:00Z"},
			{"id":"1","name":"John Smith","email":"john@x.com","company":"Tech Solutions","phone":"1","created_at":"2026-08-28T10:00:00Z"}
		]`}
		r := &ClientRepository{Rows: rows}

		clients, err := r.List(context.Background())
		require.NoError(t, err)
		require.Equal(t, "clients", rows.lastTable)
		require.Equal(t, "select=*&order=created_at.desc", rows.lastQuery)
		require.Len(t, clients, 2)
		require.Equal(t, "Sarah Johnson", clients[0].Name)
		require.Equal(t, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), clients[0].CreatedAt)
	})

	t.Run("empty list is not an error", func(t *testing.T) {
		r := &ClientRepository{Rows: &fakeRows{selectBody: `[]`}}
		clients, err := r.List(context.Background())
		require.NoError(t, err)
		require.Empty(t, clients)
	})

	t.Run("failure maps to the load category", func(t *testing.T) {
		r := &ClientRepository{Rows: &fakeRows{err: errors.New("boom")}}
		_, err := r.List(context.Background())
		require.ErrorIs(t, err, ErrListClients)
	})
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("returns the server-assigned record", func(t *testing.T) {
		rows := &fakeRows{insertBody: `[{"id":"srv-9","name":"Ann Lee","email":"ann@x.com","company":"Acme","phone":"555-0000"}]`}
		r := &ClientRepository{Rows: rows}

		created, err := r.Create(context.Background(), domain.ClientInput{
			Name: "Ann Lee", Email: "ann@x.com", Company: "Acme", Phone: "555-0000",
		})
		require.NoError(t, err)
		require.Equal(t, "srv-9", created.ID)

		// The payload must not carry a client-chosen id.
		payload, ok := rows.payloads[0].(clientRow)
		require.True(t, ok)
		require.Empty(t, payload.ID)
	})

	t.Run("failure maps to the add category", func(t *testing.T) {
		r := &ClientRepository{Rows: &fakeRows{err: errors.New("boom")}}
		_, err := r.Create(context.Background(), domain.ClientInput{Name: "Ann"})
		require.ErrorIs(t, err, ErrCreateClient)
	})
}

func TestUpdateDelete(t *testing.T) {
	t.Parallel()

	t.Run("update targets the row by id", func(t *testing.T) {
		rows := &fakeRows{}
		r := &ClientRepository{Rows: rows}

		err := r.Update(context.Background(), domain.Client{ID: "42", Name: "Ann"})
		require.NoError(t, err)
		require.Equal(t, "id=eq.42", rows.lastFilter)
	})

	t.Run("update failure maps to the update category", func(t *testing.T) {
		r := &ClientRepository{Rows: &fakeRows{err: errors.New("boom")}}
		require.ErrorIs(t, r.Update(context.Background(), domain.Client{ID: "42"}), ErrUpdateClient)
	})

	t.Run("delete targets the row by id", func(t *testing.T) {
		rows := &fakeRows{}
		r := &ClientRepository{Rows: rows}

		require.NoError(t, r.Delete(context.Background(), "42"))
		require.Equal(t, "id=eq.42", rows.lastFilter)
	})

	t.Run("delete failure maps to the delete category", func(t *testing.T) {
		r := &ClientRepository{Rows: &fakeRows{err: errors.New("boom")}}
		require.ErrorIs(t, r.Delete(context.Background(), "42"), ErrDeleteClient)
	})
}
