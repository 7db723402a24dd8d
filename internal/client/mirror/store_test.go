package mirror

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
	"github.com/fmchong/intramail/internal/cryptox"
	"github.com/fmchong/intramail/internal/logging"

	_ "modernc.org/sqlite"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "mirror.db")
	s, err := Open(context.Background(), dsn, logging.NewSlogLogger(slog.Default()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seededAccount(t *testing.T, s *Store, id string) models.Account {
	t.Helper()
	a, err := s.Accounts.Get(context.Background(), id)
	require.NoError(t, err)
	return a
}

func TestOpen_SeedsFirstRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	accounts, err := s.Accounts.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	admin, err := s.Accounts.GetByUsername(ctx, "SHAMMAH")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)

	cred, err := s.Credential(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, cryptox.VerifyCredential(common.DefaultPassword, cred.Salt, cred.Verifier))

	memos, err := s.Messages.Folder(ctx, admin, models.FolderMemo)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.True(t, memos[0].RequiresAcknowledgement)
}

func TestOpen_SeedRunsOnce(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "mirror.db")
	log := logging.NewSlogLogger(slog.Default())
	ctx := context.Background()

	s, err := Open(ctx, dsn, log)
	require.NoError(t, err)
	require.NoError(t, s.Accounts.SoftRemove(ctx, "u2"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn, log)
	require.NoError(t, err)
	defer s.Close()

	accounts, err := s.Accounts.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, accounts, 2, "reopen must not reseed over existing state")
}

func TestSaveDirectory_AtomicAndPreservesCredentials(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	next := append(seedAccounts(), models.Account{
		ID: "u3", Name: "Grace Bello", Username: "grace",
		Email: "grace@fmchong.local", Role: models.RoleDoctor, Department: models.DeptClinical,
	})
	salt, verifier := cryptox.HashCredential("s3cret-pass")
	err := s.SaveDirectory(ctx, next, map[string]Credential{
		"u3": {Salt: salt, Verifier: verifier},
	})
	require.NoError(t, err)

	accounts, err := s.Accounts.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, accounts, 4)

	// the new account and its credential appear together
	cred, err := s.Credential(ctx, "u3")
	require.NoError(t, err)
	assert.True(t, cryptox.VerifyCredential("s3cret-pass", cred.Salt, cred.Verifier))

	// untouched accounts keep their stored secret
	cred, err = s.Credential(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, cryptox.VerifyCredential(common.DefaultPassword, cred.Salt, cred.Verifier))
}

func TestAccounts_SoftRemoveKeepsRow(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Accounts.SoftRemove(ctx, "u2"))

	_, err := s.Accounts.GetByUsername(ctx, "sarah")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// still resolvable by id for message rendering
	a, err := s.Accounts.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Okon", a.Name)

	assert.ErrorIs(t, s.Accounts.SoftRemove(ctx, "nope"), common.ErrNotFound)
}

func insertInboxMessage(t *testing.T, s *Store, id, recipient string, at time.Time) {
	t.Helper()
	require.NoError(t, s.Messages.Insert(context.Background(), models.Message{
		ID:           id,
		SenderID:     "u1",
		RecipientIDs: []string{recipient},
		Subject:      "subj " + id,
		Body:         "body",
		Priority:     models.PriorityNormal,
		CreatedAt:    at,
		ThreadID:     "t_" + id,
		Kind:         models.KindEmail,
	}))
}

func TestMessages_FolderRouting(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sarah := seededAccount(t, s, "u2")
	now := time.Now()

	insertInboxMessage(t, s, "d1", "u2", now)
	insertInboxMessage(t, s, "d2", models.BroadcastAllStaff, now.Add(time.Minute))
	insertInboxMessage(t, s, "d3", models.DeptAliasPrefix+"Nursing Services", now.Add(2*time.Minute))
	insertInboxMessage(t, s, "d4", "admin_shammah", now.Add(3*time.Minute))

	inbox, err := s.Messages.Folder(ctx, sarah, models.FolderInbox)
	require.NoError(t, err)
	ids := make([]string, 0, len(inbox))
	for _, m := range inbox {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"d3", "d2", "d1"}, ids, "direct, broadcast and dept alias, newest first")

	sent, err := s.Messages.Folder(ctx, seededAccount(t, s, "u1"), models.FolderSent)
	require.NoError(t, err)
	assert.Len(t, sent, 5) // d1..d4 plus the seeded welcome message

	// archiving moves a message from inbox to archive
	require.NoError(t, s.Messages.SetArchived(ctx, "d1", "u2", true))
	inbox, err = s.Messages.Folder(ctx, sarah, models.FolderInbox)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)
	archive, err := s.Messages.Folder(ctx, sarah, models.FolderArchive)
	require.NoError(t, err)
	require.Len(t, archive, 1)
	assert.True(t, archive[0].IsArchived)
}

func TestMessages_MarkReadIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	insertInboxMessage(t, s, "d1", "u2", time.Now())

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Messages.MarkRead(ctx, "d1", "u2"))
	}

	m, err := s.Messages.Get(ctx, "d1", "u2")
	require.NoError(t, err)
	assert.True(t, m.IsRead)

	// unrelated account still unread
	m, err = s.Messages.Get(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.False(t, m.IsRead)

	assert.ErrorIs(t, s.Messages.MarkRead(ctx, "missing", "u2"), common.ErrNotFound)
}

func TestMessages_MarkAllRead(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sarah := seededAccount(t, s, "u2")
	now := time.Now()

	insertInboxMessage(t, s, "d1", "u2", now)
	insertInboxMessage(t, s, "d2", models.BroadcastAllStaff, now)
	insertInboxMessage(t, s, "d3", "admin_shammah", now)

	require.NoError(t, s.Messages.MarkAllRead(ctx, sarah))

	inbox, err := s.Messages.Folder(ctx, sarah, models.FolderInbox)
	require.NoError(t, err)
	for _, m := range inbox {
		assert.True(t, m.IsRead, "message %s", m.ID)
	}

	m, err := s.Messages.Get(ctx, "d3", "admin_shammah")
	require.NoError(t, err)
	assert.False(t, m.IsRead, "other recipients are untouched")
}

func TestMessages_ToggleArchiveIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	insertInboxMessage(t, s, "d1", "u2", time.Now())

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Messages.SetArchived(ctx, "d1", "u2", true))
	}
	m, err := s.Messages.Get(ctx, "d1", "u2")
	require.NoError(t, err)
	assert.True(t, m.IsArchived)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Messages.SetArchived(ctx, "d1", "u2", false))
	}
	m, err = s.Messages.Get(ctx, "d1", "u2")
	require.NoError(t, err)
	assert.False(t, m.IsArchived)
}

func TestMessages_AcknowledgeMonotone(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Messages.Acknowledge(ctx, "memo1", "u2"))
	}
	require.NoError(t, s.Messages.Acknowledge(ctx, "memo1", "u1"))

	m, err := s.Messages.Get(ctx, "memo1", "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, m.AcknowledgedBy)

	// only memos can be acknowledged
	insertInboxMessage(t, s, "d1", "u2", time.Now())
	assert.ErrorIs(t, s.Messages.Acknowledge(ctx, "d1", "u2"), common.ErrNotFound)
}

func TestMessages_ApplyRemoteReplacesWholesale(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sarah := seededAccount(t, s, "u2")

	// offline acknowledgment, later superseded by an authoritative pull
	require.NoError(t, s.Messages.Acknowledge(ctx, "memo1", "u2"))

	remote := []models.Message{{
		ID:                      "memo1",
		SenderID:                "u1",
		RecipientIDs:            []string{models.BroadcastAllStaff},
		Subject:                 "CIRCULAR: System Maintenance",
		Body:                    "Rescheduled to next weekend.",
		Priority:                models.PriorityUrgent,
		CreatedAt:               time.Now(),
		ThreadID:                "t_memo1",
		Kind:                    models.KindMemo,
		RequiresAcknowledgement: true,
		AcknowledgedBy:          []string{"u1"},
	}}
	require.NoError(t, s.Messages.ApplyRemote(ctx, sarah, models.FolderMemo, remote))

	memos, err := s.Messages.Folder(ctx, sarah, models.FolderMemo)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, "Rescheduled to next weekend.", memos[0].Body)
	assert.Equal(t, []string{"u1"}, memos[0].AcknowledgedBy, "pull replaces the set, never merges")
}

func TestMessages_ApplyRemoteDropsDeleted(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sarah := seededAccount(t, s, "u2")
	now := time.Now()

	insertInboxMessage(t, s, "d1", "u2", now)
	insertInboxMessage(t, s, "d2", "u2", now)

	keep := models.Message{
		ID: "d2", SenderID: "u1", RecipientIDs: []string{"u2"},
		Subject: "subj d2", Body: "body", Priority: models.PriorityNormal,
		CreatedAt: now, ThreadID: "t_d2", Kind: models.KindEmail, IsRead: true,
	}
	require.NoError(t, s.Messages.ApplyRemote(ctx, sarah, models.FolderInbox, []models.Message{keep}))

	inbox, err := s.Messages.Folder(ctx, sarah, models.FolderInbox)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "d2", inbox[0].ID)
	assert.True(t, inbox[0].IsRead, "read flag reconstructed from the remote view")
}

func TestAudit_AppendOnlyNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now()

	for i, action := range []string{models.AuditLogin, models.AuditPasswordReset} {
		require.NoError(t, s.Audit.Append(ctx, models.AuditEntry{
			ID:        string(rune('a' + i)),
			AccountID: "u2",
			Action:    action,
			Details:   "detail",
			Origin:    "local",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := s.Audit.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditPasswordReset, entries[0].Action)
}

func TestStats_FromMirror(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ActiveUsers)
	assert.Equal(t, 1, stats.TotalMessages)
	assert.Equal(t, 1, stats.TotalMemos)
	assert.Len(t, stats.RolesDistribution, 3)
}
