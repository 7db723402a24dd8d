package models

import "time"

// Audit actions recorded by the gateway.
const (
	AuditLogin         = "LOGIN"
	AuditLoginFailed   = "LOGIN_FAILED"
	AuditPasswordReset = "PASSWORD_RESET"
	AuditRoleChange    = "ROLE_CHANGE"
	AuditAccountCreate = "ACCOUNT_CREATE"
)

// AuditEntry is an append-only record of a security-relevant action.
// Entries are never mutated or deleted by the client.
type AuditEntry struct {
	ID        string    `json:"id"`
	AccountID string    `json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"ipAddress"`
}
