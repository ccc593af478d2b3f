package domain

import (
	"errors"
	"strings"
	"time"
)

// Client is a contact record. ID is assigned by the remote row store on
// creation and never changes; CreatedAt only drives the newest-first listing
// order and is not otherwise shown to the user.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ClientInput is the user-editable portion of a client record.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

var ErrMissingField = errors.New("all fields are required")

// Validate enforces the non-empty requirement on all four fields. Format
// checking beyond that is left to input-type hinting in the form.
func (in ClientInput) Validate() error {
	for _, v := range []string{in.Name, in.Email, in.Company, in.Phone} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}
	return nil
}

// Apply returns a copy of c with the editable fields replaced by the input.
func (in ClientInput) Apply(c Client) Client {
	c.Name = in.Name
	c.Email = in.Email
	c.Company = in.Company
	c.Phone = in.Phone
	return c
}

// Filter returns the clients whose name, email or company contains the query
// as a case-insensitive substring. An empty query matches everything. The
// match is pure and recomputed from the full list on every call; nothing is
// persisted or pushed to the server.
func Filter(clients []Client, query string) []Client {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clients
	}

	matched := make([]Client, 0, len(clients))
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q) ||
			strings.Contains(strings.ToLower(c.Company), q) {
			matched = append(matched, c)
		}
	}
	return matched
}
