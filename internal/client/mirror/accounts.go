package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
	"github.com/fmchong/intramail/internal/dbx"
)

// AccountRepository holds the last-known-good directory snapshot. Accounts
// are stored as JSON payloads keyed by id; removal is a soft flag so ids
// referenced by messages stay resolvable.
type AccountRepository struct {
	db dbx.DBTX
}

// List returns directory accounts. Soft-removed accounts are included only
// when includeRemoved is set.
func (r *AccountRepository) List(ctx context.Context, includeRemoved bool) ([]models.Account, error) {
	query := `SELECT payload FROM accounts WHERE removed = 0 ORDER BY id`
	if includeRemoved {
		query = `SELECT payload FROM accounts ORDER BY id`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a models.Account
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Get returns a single account by id, removed or not.
func (r *AccountRepository) Get(ctx context.Context, id string) (models.Account, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM accounts WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, common.ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	var a models.Account
	if err := json.Unmarshal(payload, &a); err != nil {
		return models.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return a, nil
}

// GetByUsername resolves a login name case-insensitively.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	accounts, err := r.List(ctx, false)
	if err != nil {
		return models.Account{}, err
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Username, username) {
			return a, nil
		}
	}
	return models.Account{}, common.ErrNotFound
}

// Upsert writes one account record, clearing any soft-removal flag.
func (r *AccountRepository) Upsert(ctx context.Context, a models.Account) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, payload, removed) VALUES (?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, removed = 0
	`, a.ID, payload)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", a.ID, err)
	}
	return nil
}

// SoftRemove hides an account from the directory without deleting the row.
func (r *AccountRepository) SoftRemove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET removed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove account %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// replaceAll swaps the whole directory for the given list. Soft-removed rows
// are dropped: the incoming list is the new authority.
func (r *AccountRepository) replaceAll(ctx context.Context, accounts []models.Account) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	for _, a := range accounts {
		if err := r.Upsert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// credentialRepository persists the per-account offline credential map.
// It is unexported: credential writes go through Store.SaveDirectory so the
// account list and credential map stay atomically consistent.
type credentialRepository struct {
	db dbx.DBTX
}

func (r *credentialRepository) get(ctx context.Context, accountID string) (Credential, error) {
	var c Credential
	err := r.db.QueryRowContext(ctx,
		`SELECT salt, verifier FROM credentials WHERE account_id = ?`, accountID).
		Scan(&c.Salt, &c.Verifier)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, common.ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return c, nil
}

func (r *credentialRepository) set(ctx context.Context, accountID string, c Credential) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (account_id, salt, verifier) VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET salt = excluded.salt, verifier = excluded.verifier
	`, accountID, c.Salt, c.Verifier)
	if err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) all(ctx context.Context) (map[string]Credential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT account_id, salt, verifier FROM credentials`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	result := make(map[string]Credential)
	for rows.Next() {
		var id string
		var c Credential
		if err := rows.Scan(&id, &c.Salt, &c.Verifier); err != nil {
			return nil, err
		}
		result[id] = c
	}
	return result, rows.Err()
}
