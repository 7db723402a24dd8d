package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/dbx"
)

// AuditRepository is append-only: entries are written once and never
// mutated or deleted by the client.
type AuditRepository struct {
	db dbx.DBTX
}

// Append stores one audit entry.
func (r *AuditRepository) Append(ctx context.Context, e models.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, account_id, action, details, origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.AccountID, e.Action, e.Details, e.Origin, e.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns all entries, newest first.
func (r *AuditRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, action, details, origin, created_at
		FROM audit_log ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var result []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Action, &e.Details, &e.Origin, &createdAt); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
