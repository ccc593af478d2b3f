package service

import (
	"sync"

	"github.com/driftwoodhq/clientdesk/internal/crm/domain"
)

// NotificationBuffer collects toasts until the next response or page render
// drains them. One buffer lives per browser session.
type NotificationBuffer struct {
	mu      sync.Mutex
	pending []domain.Notification
}

func (b *NotificationBuffer) Notify(n domain.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, n)
}

// Drain returns the pending notifications and clears the buffer.
func (b *NotificationBuffer) Drain() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil
	return out
}
