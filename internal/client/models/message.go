package models

import (
	"strings"
	"time"
)

// Priority flags a message for the notification deriver.
type Priority string

const (
	PriorityNormal       Priority = "Normal"
	PriorityUrgent       Priority = "Urgent"
	PriorityConfidential Priority = "Confidential"
)

// MessageKind separates regular mail from board memos on the wire.
type MessageKind string

const (
	KindEmail MessageKind = "email"
	KindMemo  MessageKind = "memo"
)

// FolderKind selects which folder a fetch targets.
type FolderKind string

const (
	FolderInbox   FolderKind = "inbox"
	FolderSent    FolderKind = "sent"
	FolderArchive FolderKind = "archive"
	FolderMemo    FolderKind = "memo"
)

// RecipientStatus is a per-recipient read receipt.
type RecipientStatus struct {
	UserID string     `json:"userId"`
	Name   string     `json:"name"`
	IsRead bool       `json:"isRead"`
	ReadAt *time.Time `json:"readAt"`
}

// Message is a mail item or a board memo. A message is immutable once
// created except for per-recipient read/archive flags and, for memos,
// the acknowledgment set.
//
// IsRead and IsArchived are relative to the account the folder was fetched
// for; RecipientDetails carries the per-recipient receipts.
type Message struct {
	ID               string            `json:"id"`
	SenderID         string            `json:"senderId"`
	RecipientIDs     []string          `json:"recipientIds"`
	RecipientDetails []RecipientStatus `json:"recipientDetails,omitempty"`
	CcIDs            []string          `json:"ccIds"`
	BccIDs           []string          `json:"bccIds"`
	Subject          string            `json:"subject"`
	Body             string            `json:"body"`
	Priority         Priority          `json:"priority"`
	Attachments      []Attachment      `json:"attachments"`
	CreatedAt        time.Time         `json:"createdAt"`
	IsRead           bool              `json:"isRead"`
	ThreadID         string            `json:"threadId"`
	Kind             MessageKind       `json:"type"`
	IsArchived       bool              `json:"isArchived,omitempty"`

	// Memo specialization.
	RequiresAcknowledgement bool     `json:"requiresAcknowledgement,omitempty"`
	AcknowledgedBy          []string `json:"acknowledgedBy,omitempty"`
}

const (
	// BroadcastAllStaff matches every account at read time.
	BroadcastAllStaff = "ALL_STAFF"
	// DeptAliasPrefix plus a department name matches that department.
	DeptAliasPrefix = "DEPT_"
)

// AddressedTo reports whether the message targets the given account,
// directly or through a broadcast alias.
func (m Message) AddressedTo(accountID string, dept Department) bool {
	for _, r := range m.RecipientIDs {
		switch {
		case r == accountID:
			return true
		case r == BroadcastAllStaff:
			return true
		case strings.HasPrefix(r, DeptAliasPrefix) && strings.EqualFold(strings.TrimPrefix(r, DeptAliasPrefix), string(dept)):
			return true
		}
	}
	return false
}

// Acknowledged reports membership in the memo's acknowledgment set.
func (m Message) Acknowledged(accountID string) bool {
	for _, id := range m.AcknowledgedBy {
		if id == accountID {
			return true
		}
	}
	return false
}
