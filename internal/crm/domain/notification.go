package domain

// NotificationKind distinguishes success toasts from failure toasts.
type NotificationKind string

const (
	NoticeSuccess NotificationKind = "success"
	NoticeError   NotificationKind = "error"
)

// Notification is a user-visible toast. Every mutating flow emits one,
// naming the affected client where available.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}
