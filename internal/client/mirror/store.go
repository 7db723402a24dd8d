// Package mirror implements the Local Mirror Store: the durable, client-side
// copy of directory, message, and memo state used whenever the remote
// service is unreachable. The Sync Gateway is the only writer; the UI only
// ever reads complete snapshots returned by the store.
package mirror

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/fmchong/intramail/internal/client/mirror/migrations"
	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/dbx"
	"github.com/fmchong/intramail/internal/logging"
)

// Credential is the offline verifier pair persisted per account. The mirror
// never stores the password itself.
type Credential struct {
	Salt     []byte
	Verifier []byte
}

// Store is the mirror facade. All repositories share one SQLite handle.
type Store struct {
	db  *sql.DB
	log logging.Logger

	Accounts *AccountRepository
	Messages *MessageRepository
	Audit    *AuditRepository

	creds *credentialRepository
}

// Open opens (creating if necessary) the mirror database at dsn, applies
// pending migrations, and seeds the fixed first-run state when the directory
// is empty so the client is usable fully offline.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mirror db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate mirror db: %w", err)
	}

	s := &Store{
		db:       db,
		log:      log,
		Accounts: &AccountRepository{db: db},
		Messages: &MessageRepository{db: db},
		Audit:    &AuditRepository{db: db},
		creds:    &credentialRepository{db: db},
	}

	if err := s.seed(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed mirror db: %w", err)
	}
	return s, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDirectory persists the account list and the credential map in a single
// transaction. The two are never observable out of sync: a credential change
// without its matching account record (or vice versa) cannot be committed.
// The account list is replaced wholesale; credentials are upserted so that
// accounts absent from creds keep their stored secret.
func (s *Store) SaveDirectory(ctx context.Context, accounts []models.Account, creds map[string]Credential) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ar := &AccountRepository{db: tx}
		if err := ar.replaceAll(ctx, accounts); err != nil {
			return err
		}
		cr := &credentialRepository{db: tx}
		for id, c := range creds {
			if err := cr.set(ctx, id, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveAccount persists one account record together with its credential in a
// single transaction, for the paths that touch exactly one directory entry
// (login caching, account creation, password changes). The atomicity
// invariant is the same as SaveDirectory's.
func (s *Store) SaveAccount(ctx context.Context, a models.Account, c Credential) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ar := &AccountRepository{db: tx}
		if err := ar.Upsert(ctx, a); err != nil {
			return err
		}
		cr := &credentialRepository{db: tx}
		return cr.set(ctx, a.ID, c)
	})
}

// Credential returns the stored verifier pair for an account, or
// common.ErrNotFound via the repository when none exists.
func (s *Store) Credential(ctx context.Context, accountID string) (Credential, error) {
	return s.creds.get(ctx, accountID)
}

// Credentials returns the full offline credential map.
func (s *Store) Credentials(ctx context.Context) (map[string]Credential, error) {
	return s.creds.all(ctx)
}

// Stats computes dashboard aggregates from mirror contents. Used when the
// remote stats endpoint is unreachable; health is reported as offline.
func (s *Store) Stats(ctx context.Context) (models.DashboardStats, error) {
	accounts, err := s.Accounts.List(ctx, false)
	if err != nil {
		return models.DashboardStats{}, err
	}

	byRole := map[string]int{}
	for _, a := range accounts {
		byRole[string(a.Role)]++
	}
	dist := make([]models.RoleCount, 0, len(byRole))
	for _, a := range accounts {
		if n, ok := byRole[string(a.Role)]; ok {
			dist = append(dist, models.RoleCount{Name: string(a.Role), Value: n})
			delete(byRole, string(a.Role))
		}
	}

	var messages, memos int
	row := s.db.QueryRowContext(ctx, `SELECT
		COUNT(CASE WHEN kind = ? THEN 1 END),
		COUNT(CASE WHEN kind = ? THEN 1 END) FROM messages`,
		string(models.KindEmail), string(models.KindMemo))
	if err := row.Scan(&messages, &memos); err != nil {
		return models.DashboardStats{}, fmt.Errorf("count messages: %w", err)
	}

	return models.DashboardStats{
		ActiveUsers:       len(accounts),
		TotalMessages:     messages,
		TotalMemos:        memos,
		SystemHealth:      "Offline (mirror)",
		RolesDistribution: dist,
	}, nil
}
