package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
	"github.com/fmchong/intramail/internal/dbx"
)

// MessageRepository stores mail and memos. The immutable message payload
// lives in one column; the three mutable per-recipient sets (read, archived,
// acknowledged) live next to it as JSON arrays of account ids. Set updates
// are membership operations, so repeating one with identical parameters
// leaves the row unchanged.
type MessageRepository struct {
	db dbx.DBTX
}

type messageRow struct {
	payload      models.Message
	readBy       []string
	archivedBy   []string
	acknowledged []string
}

func (row messageRow) view(accountID string) models.Message {
	m := row.payload
	m.IsRead = slices.Contains(row.readBy, accountID)
	m.IsArchived = slices.Contains(row.archivedBy, accountID)
	if m.Kind == models.KindMemo {
		m.AcknowledgedBy = append([]string(nil), row.acknowledged...)
	}
	for i := range m.RecipientDetails {
		m.RecipientDetails[i].IsRead = slices.Contains(row.readBy, m.RecipientDetails[i].UserID)
	}
	return m
}

func decodeSet(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var set []string
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode id set: %w", err)
	}
	return set, nil
}

func encodeSet(set []string) []byte {
	if set == nil {
		set = []string{}
	}
	raw, _ := json.Marshal(set)
	return raw
}

func (r *MessageRepository) scanRow(scan func(...any) error) (messageRow, error) {
	var payload, readBy, archivedBy, acknowledged []byte
	if err := scan(&payload, &readBy, &archivedBy, &acknowledged); err != nil {
		return messageRow{}, err
	}

	var row messageRow
	if err := json.Unmarshal(payload, &row.payload); err != nil {
		return messageRow{}, fmt.Errorf("decode message: %w", err)
	}
	var err error
	if row.readBy, err = decodeSet(readBy); err != nil {
		return messageRow{}, err
	}
	if row.archivedBy, err = decodeSet(archivedBy); err != nil {
		return messageRow{}, err
	}
	if row.acknowledged, err = decodeSet(acknowledged); err != nil {
		return messageRow{}, err
	}
	return row, nil
}

func (r *MessageRepository) get(ctx context.Context, id string) (messageRow, error) {
	row, err := r.scanRow(r.db.QueryRowContext(ctx,
		`SELECT payload, read_by, archived_by, acknowledged_by FROM messages WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return messageRow{}, common.ErrNotFound
	}
	if err != nil {
		return messageRow{}, err
	}
	return row, nil
}

// Get returns one message as seen by the given account.
func (r *MessageRepository) Get(ctx context.Context, id, accountID string) (models.Message, error) {
	row, err := r.get(ctx, id)
	if err != nil {
		return models.Message{}, err
	}
	return row.view(accountID), nil
}

// Insert stores a locally composed message. The caller owns id assignment;
// flag sets start empty.
func (r *MessageRepository) Insert(ctx context.Context, m models.Message) error {
	return r.write(ctx, messageRow{payload: stripFlags(m)})
}

func (r *MessageRepository) write(ctx context.Context, row messageRow) error {
	payload, err := json.Marshal(row.payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO messages (id, kind, sender_id, created_at, payload, read_by, archived_by, acknowledged_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			read_by = excluded.read_by,
			archived_by = excluded.archived_by,
			acknowledged_by = excluded.acknowledged_by
	`, row.payload.ID, string(row.payload.Kind), row.payload.SenderID,
		row.payload.CreatedAt.UTC().Format(time.RFC3339Nano), payload,
		encodeSet(row.readBy), encodeSet(row.archivedBy), encodeSet(row.acknowledged))
	if err != nil {
		return fmt.Errorf("write message %s: %w", row.payload.ID, err)
	}
	return nil
}

// stripFlags clears the per-account projection fields so the stored payload
// holds only the immutable part of a message.
func stripFlags(m models.Message) models.Message {
	m.IsRead = false
	m.IsArchived = false
	m.AcknowledgedBy = nil
	return m
}

// addToSet appends id to the named set column if absent. Missing message ids
// map to common.ErrNotFound.
func (r *MessageRepository) addToSet(ctx context.Context, messageID, column, accountID string) error {
	row, err := r.get(ctx, messageID)
	if err != nil {
		return err
	}

	var set *[]string
	switch column {
	case "read_by":
		set = &row.readBy
	case "archived_by":
		set = &row.archivedBy
	case "acknowledged_by":
		set = &row.acknowledged
	default:
		return fmt.Errorf("unknown set column %q", column)
	}

	if slices.Contains(*set, accountID) {
		return nil
	}
	*set = append(*set, accountID)
	return r.write(ctx, row)
}

// MarkRead records that accountID has read the message. Idempotent.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, accountID string) error {
	return r.addToSet(ctx, messageID, "read_by", accountID)
}

// MarkAllRead marks every message addressed to the account as read.
func (r *MessageRepository) MarkAllRead(ctx context.Context, account models.Account) error {
	rows, err := r.kindRows(ctx, models.KindEmail)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if !row.payload.AddressedTo(account.ID, account.Department) {
			continue
		}
		if slices.Contains(row.readBy, account.ID) {
			continue
		}
		row.readBy = append(row.readBy, account.ID)
		if err := r.write(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// SetArchived moves the message in or out of the account's archive.
// Idempotent in both directions.
func (r *MessageRepository) SetArchived(ctx context.Context, messageID, accountID string, archived bool) error {
	if archived {
		return r.addToSet(ctx, messageID, "archived_by", accountID)
	}
	row, err := r.get(ctx, messageID)
	if err != nil {
		return err
	}
	i := slices.Index(row.archivedBy, accountID)
	if i < 0 {
		return nil
	}
	row.archivedBy = slices.Delete(row.archivedBy, i, i+1)
	return r.write(ctx, row)
}

// Acknowledge adds the account to a memo's acknowledgment set. The set is
// monotone: ids are only ever added, never removed.
func (r *MessageRepository) Acknowledge(ctx context.Context, memoID, accountID string) error {
	row, err := r.get(ctx, memoID)
	if err != nil {
		return err
	}
	if row.payload.Kind != models.KindMemo {
		return common.ErrNotFound
	}
	return r.addToSet(ctx, memoID, "acknowledged_by", accountID)
}

func (r *MessageRepository) kindRows(ctx context.Context, kind models.MessageKind) ([]messageRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload, read_by, archived_by, acknowledged_by FROM messages
		WHERE kind = ? ORDER BY created_at DESC, id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s messages: %w", kind, err)
	}
	defer rows.Close()

	var result []messageRow
	for rows.Next() {
		row, err := r.scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Folder evaluates a folder query for the account, newest first. Broadcast
// aliases are expanded at read time against the account's department.
func (r *MessageRepository) Folder(ctx context.Context, account models.Account, kind models.FolderKind) ([]models.Message, error) {
	msgKind := models.KindEmail
	if kind == models.FolderMemo {
		msgKind = models.KindMemo
	}
	rows, err := r.kindRows(ctx, msgKind)
	if err != nil {
		return nil, err
	}

	result := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		archived := slices.Contains(row.archivedBy, account.ID)
		switch kind {
		case models.FolderInbox:
			if !row.payload.AddressedTo(account.ID, account.Department) || archived {
				continue
			}
		case models.FolderSent:
			if row.payload.SenderID != account.ID {
				continue
			}
		case models.FolderArchive:
			if !row.payload.AddressedTo(account.ID, account.Department) || !archived {
				continue
			}
		case models.FolderMemo:
			// the memo board is visible to everyone
		default:
			return nil, fmt.Errorf("%w: unknown folder %q", common.ErrValidation, kind)
		}
		result = append(result, row.view(account.ID))
	}
	return result, nil
}

// ApplyRemote reconciles one folder from an authoritative pull for the given
// account: every returned message replaces its mirror row wholesale (payload
// and flag sets rebuilt from the remote view, never field-merged), and rows
// that would still fall into the pulled folder but are absent from the
// result are dropped as remotely deleted.
func (r *MessageRepository) ApplyRemote(ctx context.Context, account models.Account, kind models.FolderKind, msgs []models.Message) error {
	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		seen[m.ID] = struct{}{}
		if err := r.write(ctx, rowFromRemote(account.ID, kind, m)); err != nil {
			return err
		}
	}

	current, err := r.Folder(ctx, account, kind)
	if err != nil {
		return err
	}
	for _, m := range current {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, m.ID); err != nil {
			return fmt.Errorf("drop stale message %s: %w", m.ID, err)
		}
	}
	return nil
}

// rowFromRemote rebuilds the stored row from the remote's per-account view.
func rowFromRemote(accountID string, kind models.FolderKind, m models.Message) messageRow {
	row := messageRow{payload: stripFlags(m)}

	if m.IsRead {
		row.readBy = append(row.readBy, accountID)
	}
	for _, rs := range m.RecipientDetails {
		if rs.IsRead && !slices.Contains(row.readBy, rs.UserID) {
			row.readBy = append(row.readBy, rs.UserID)
		}
	}
	if m.IsArchived || kind == models.FolderArchive {
		row.archivedBy = append(row.archivedBy, accountID)
	}
	row.acknowledged = append([]string(nil), m.AcknowledgedBy...)
	return row
}
