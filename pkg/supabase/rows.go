package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Row-store operations against /rest/v1/{table}. Filters use the row store's
// query syntax, e.g. "id=eq.42" or "select=*&order=created_at.desc". Rows are
// implicitly scoped to the authenticated account by the backend's row-level
// security; no account filter is passed from here.

// Select fetches rows matching the query into dest (a pointer to a slice).
func (s *Session) Select(ctx context.Context, table, query string, dest any) error {
	path := "/rest/v1/" + table
	if query != "" {
		path += "?" + query
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}

	return decodeJSON(resp, dest, http.StatusOK)
}

// Insert inserts a single row and decodes the server's representation of the
// created row (including generated columns) into dest, a pointer to a slice.
func (s *Session) Insert(ctx context.Context, table string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	resp, err := s.doAuthRequest(ctx,
		http.MethodPost, "/rest/v1/"+table,
		bytes.NewReader(body),
		map[string]string{
			"Content-Type": "application/json",
			"Prefer":       "return=representation",
		},
	)
	if err != nil {
		return err
	}

	return decodeJSON(resp, dest, http.StatusCreated)
}

// Update patches rows matching the filter with the given payload.
func (s *Session) Update(ctx context.Context, table, filter string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	resp, err := s.doAuthRequest(ctx,
		http.MethodPatch, "/rest/v1/"+table+"?"+filter,
		bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent, http.StatusOK)
}

// Delete removes rows matching the filter.
func (s *Session) Delete(ctx context.Context, table, filter string) error {
	resp, err := s.doAuthRequest(ctx,
		http.MethodDelete, "/rest/v1/"+table+"?"+filter,
		nil, nil,
	)
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent, http.StatusOK)
}
