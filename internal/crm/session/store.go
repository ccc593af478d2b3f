// Package session holds server-side state for signed-in browsers: the
// remote backend session plus the dashboard controller and notification
// buffer tied to it, keyed by an opaque cookie id.
package session

import (
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/driftwoodhq/clientdesk/internal/crm/service"
	"github.com/driftwoodhq/clientdesk/pkg/supabase"
)

// CookieName is the session cookie issued on sign-in.
const CookieName = "clientdesk_session"

// Entry is everything the server keeps for one signed-in browser.
type Entry struct {
	ID        string
	Remote    *supabase.Session
	Dashboard *service.Dashboard
	Notices   *service.NotificationBuffer
}

// Store is a TTL cache of session entries. Expiry stands in for the
// session-transition subscription of the hosted auth client: when an entry
// is evicted the next gated request sees no session and is sent back to the
// login surface.
type Store struct {
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewStore creates a store whose entries live for ttl since last issuance.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	c := gocache.New(ttl, ttl/2)
	s := &Store{cache: c, logger: logger}

	c.OnEvicted(func(sid string, v interface{}) {
		if entry, ok := v.(*Entry); ok {
			s.logger.Info("session expired", "sid", sid, "user", entry.Remote.User().Email)
		}
	})

	return s
}

// Put stores the entry under a fresh opaque id and returns it.
func (s *Store) Put(entry *Entry) string {
	sid := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
	entry.ID = sid
	s.cache.SetDefault(sid, entry)
	return sid
}

// Get looks up a live session entry.
func (s *Store) Get(sid string) (*Entry, bool) {
	v, ok := s.cache.Get(sid)
	if !ok {
		return nil, false
	}
	entry, ok := v.(*Entry)
	return entry, ok
}

// Delete drops the entry, e.g. on logout. Deleting an unknown id is a no-op.
func (s *Store) Delete(sid string) {
	s.cache.Delete(sid)
}

// Count reports the number of live sessions. Used by readiness reporting.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
