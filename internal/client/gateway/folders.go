package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
)

// FetchFolder returns the named folder for the session account, newest
// first. When the remote is reachable its view is authoritative and is
// reconciled into the mirror before being returned; otherwise the mirror
// answers directly.
func (g *Gateway) FetchFolder(ctx context.Context, kind models.FolderKind) ([]models.Message, error) {
	account, err := g.CurrentAccount()
	if err != nil {
		return nil, err
	}

	var msgs []models.Message
	err = g.tryRemote(ctx, readTimeout, func(rctx context.Context) error {
		var err error
		msgs, err = g.remote.FetchFolder(rctx, account.ID, kind)
		return err
	})
	switch {
	case err == nil:
		if err := g.mirror.Messages.ApplyRemote(ctx, account, kind, msgs); err != nil {
			g.log.Warn(ctx, "mirror reconcile failed", "folder", kind, "err", err)
		}
		return msgs, nil

	case errors.Is(err, common.ErrUnavailable):
		return g.mirror.Messages.Folder(ctx, account, kind)

	default:
		return nil, err
	}
}

// Send validates and dispatches a new message or memo. The gateway assigns
// the id and timestamp so the message is identical whichever leg stores it
// first; offline sends land in the mirror and appear in the sender's sent
// folder immediately.
func (g *Gateway) Send(ctx context.Context, m models.Message) (models.Message, error) {
	account, err := g.CurrentAccount()
	if err != nil {
		return models.Message{}, err
	}

	if len(m.RecipientIDs) == 0 {
		return models.Message{}, fmt.Errorf("%w: at least one recipient is required", common.ErrValidation)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return models.Message{}, fmt.Errorf("%w: subject is required", common.ErrValidation)
	}
	if m.Kind != models.KindEmail && m.Kind != models.KindMemo {
		return models.Message{}, fmt.Errorf("%w: unknown message type %q", common.ErrValidation, m.Kind)
	}
	if m.RequiresAcknowledgement && m.Kind != models.KindMemo {
		return models.Message{}, fmt.Errorf("%w: only memos can require acknowledgment", common.ErrValidation)
	}

	m.ID = newID()
	m.SenderID = account.ID
	m.CreatedAt = time.Now().UTC()
	if m.ThreadID == "" {
		m.ThreadID = m.ID
	}
	if m.Priority == "" {
		m.Priority = models.PriorityNormal
	}
	m.AcknowledgedBy = nil

	err = g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		return g.remote.Send(rctx, m)
	})
	if err != nil && !errors.Is(err, common.ErrUnavailable) {
		return models.Message{}, err
	}

	if err := g.mirror.Messages.Insert(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// flagUpdate runs one per-recipient flag change through both legs: the
// remote when reachable, the mirror always. The mirror write keeps the local
// view consistent whether or not the remote heard about it; the next pull
// replaces it with the authoritative state either way.
func (g *Gateway) flagUpdate(ctx context.Context, remoteFn func(context.Context) error, mirrorFn func(context.Context) error) error {
	err := g.tryRemote(ctx, writeTimeout, remoteFn)
	if err != nil && !errors.Is(err, common.ErrUnavailable) {
		return err
	}
	return mirrorFn(ctx)
}

// MarkRead records the session account's read receipt. Idempotent.
func (g *Gateway) MarkRead(ctx context.Context, messageID string) error {
	account, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	return g.flagUpdate(ctx,
		func(rctx context.Context) error { return g.remote.MarkRead(rctx, messageID, account.ID) },
		func(ctx context.Context) error { return g.mirror.Messages.MarkRead(ctx, messageID, account.ID) },
	)
}

// MarkAllRead marks every inbox message of the session account as read.
func (g *Gateway) MarkAllRead(ctx context.Context) error {
	account, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	return g.flagUpdate(ctx,
		func(rctx context.Context) error { return g.remote.MarkAllRead(rctx, account.ID) },
		func(ctx context.Context) error { return g.mirror.Messages.MarkAllRead(ctx, account) },
	)
}

// ToggleArchive moves a message in or out of the session account's archive.
func (g *Gateway) ToggleArchive(ctx context.Context, messageID string, archived bool) error {
	account, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	return g.flagUpdate(ctx,
		func(rctx context.Context) error {
			return g.remote.ToggleArchive(rctx, messageID, account.ID, archived)
		},
		func(ctx context.Context) error {
			return g.mirror.Messages.SetArchived(ctx, messageID, account.ID, archived)
		},
	)
}

// Acknowledge records the session account on a memo's acknowledgment list.
// The list only ever grows.
func (g *Gateway) Acknowledge(ctx context.Context, memoID string) error {
	account, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	return g.flagUpdate(ctx,
		func(rctx context.Context) error { return g.remote.Acknowledge(rctx, memoID, account.ID) },
		func(ctx context.Context) error { return g.mirror.Messages.Acknowledge(ctx, memoID, account.ID) },
	)
}
