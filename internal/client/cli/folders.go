package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmchong/intramail/internal/client/compose"
	"github.com/fmchong/intramail/internal/client/models"
)

func (a *App) showFolder(ctx context.Context, kind models.FolderKind) error {
	a.scheduler.SetView(kind)

	msgs, err := a.gw.FetchFolder(ctx, kind)
	if err != nil {
		printlnFn("Fetch failed:", err)
		return err
	}
	if len(msgs) == 0 {
		printlnFn("(empty)")
		return nil
	}
	for _, m := range msgs {
		printlnFn(formatMessageLine(m))
	}
	return nil
}

func (a *App) Inbox(ctx context.Context) error   { return a.showFolder(ctx, models.FolderInbox) }
func (a *App) Sent(ctx context.Context) error    { return a.showFolder(ctx, models.FolderSent) }
func (a *App) Archive(ctx context.Context) error { return a.showFolder(ctx, models.FolderArchive) }
func (a *App) Memos(ctx context.Context) error   { return a.showFolder(ctx, models.FolderMemo) }

// Read shows one message in full and records the read receipt.
func (a *App) Read(ctx context.Context, id string) error {
	account, err := a.gw.CurrentAccount()
	if err != nil {
		return err
	}
	m, err := a.store.Messages.Get(ctx, id, account.ID)
	if err != nil {
		printlnFn("Not found:", id)
		return err
	}

	printlnFn(formatMessage(m))
	if err := a.gw.MarkRead(ctx, id); err != nil {
		printlnFn("Could not record read receipt:", err)
		return err
	}
	return nil
}

// Ack acknowledges a circular memo.
func (a *App) Ack(ctx context.Context, id string) error {
	if err := a.gw.Acknowledge(ctx, id); err != nil {
		printlnFn("Acknowledge failed:", err)
		return err
	}
	printlnFn("Acknowledged.")
	return nil
}

// Notifications prints the current derived feed.
func (a *App) Notifications(ctx context.Context) error {
	notifications := a.currentNotifications()
	if len(notifications) == 0 {
		printlnFn("No notifications.")
		return nil
	}
	for _, n := range notifications {
		printlnFn(fmt.Sprintf("[%s] %s: %s", n.Timestamp.Format("15:04"), n.Title, n.Message))
	}
	if snap := a.currentSnapshot(); !snap.At.IsZero() && !snap.Online {
		printlnFn("(offline; based on mirror data from " + snap.At.Format("15:04:05") + ")")
	}
	return nil
}

// Compose walks the user through a new message or memo: recipients, subject,
// body, priority, and optional attachments. Attachment previews are released
// on every path out, sent or abandoned.
func (a *App) Compose(ctx context.Context) error {
	draft := compose.NewDraft()
	defer draft.Discard()

	to, err := getSimpleText(a.reader, "To (comma-separated ids, ALL_STAFF, or DEPT_<name>)", os.Stdout)
	if err != nil {
		return err
	}
	subject, err := getSimpleText(a.reader, "Subject", os.Stdout)
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, "Body", os.Stdout)
	if err != nil {
		return err
	}
	priority, err := getSimpleText(a.reader, "Priority (Normal/Urgent/Confidential, default Normal)", os.Stdout)
	if err != nil {
		return err
	}
	kindAnswer, err := getSimpleText(a.reader, "Post as memo to the circular board? (y/N)", os.Stdout)
	if err != nil {
		return err
	}

	m := models.Message{
		Subject:  subject,
		Body:     body,
		Kind:     models.KindEmail,
		Priority: models.Priority(strings.TrimSpace(priority)),
	}
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			m.RecipientIDs = append(m.RecipientIDs, r)
		}
	}
	if strings.EqualFold(kindAnswer, "y") {
		m.Kind = models.KindMemo
		ackAnswer, err := getSimpleText(a.reader, "Require acknowledgment? (y/N)", os.Stdout)
		if err != nil {
			return err
		}
		m.RequiresAcknowledgement = strings.EqualFold(ackAnswer, "y")
	}

	for {
		path, err := getSimpleText(a.reader, "Attach file (path, empty to continue)", os.Stdout)
		if err != nil {
			return err
		}
		if path == "" {
			break
		}
		if err := a.attach(ctx, draft, path); err != nil {
			printlnFn("Attachment failed:", err)
		}
	}

	m.Attachments, err = draft.Finish()
	if err != nil {
		a.log.Warn(ctx, "preview cleanup failed", "err", err)
	}

	sent, err := a.gw.Send(ctx, m)
	if err != nil {
		printlnFn("Send failed:", err)
		return err
	}
	printlnFn("Sent", sent.ID)
	return nil
}

func (a *App) attach(ctx context.Context, draft *compose.Draft, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	attachment, err := a.gw.UploadAttachment(ctx, name, data)
	if err != nil {
		return err
	}

	preview, err := compose.NewPreview(name, data)
	if err != nil {
		a.log.Warn(ctx, "preview creation failed", "file", name, "err", err)
		preview = nil
	}
	draft.Add(attachment, preview)
	printlnFn(fmt.Sprintf("Attached %s (%s)", attachment.Name, attachment.Size))
	return nil
}
