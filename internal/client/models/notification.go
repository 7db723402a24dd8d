package models

import "time"

// NotificationType tells the UI where a notification should navigate.
type NotificationType string

const (
	NotifyMessage NotificationType = "message"
	NotifyMemo    NotificationType = "memo"
)

// Notification is a derived, non-persistent projection over messages and
// memos. It is never created directly and has no lifecycle of its own; the
// deriver recomputes the full list on every snapshot change.
type Notification struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	ReferenceID string           `json:"referenceId"`
	Timestamp   time.Time        `json:"timestamp"`
	IsRead      bool             `json:"isRead"`
}
