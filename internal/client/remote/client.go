// Package remote speaks the intramail action API: one HTTP endpoint, the
// action selected by a query parameter, JSON bodies both ways. The gateway
// treats every error from this package that wraps common.ErrUnavailable as a
// transport failure and falls back to the mirror.
package remote

import (
	"context"

	"github.com/fmchong/intramail/internal/client/models"
)

// Client is the remote leg of the sync gateway.
type Client interface {
	// Ping is the connectivity probe: side-effect-free, bounded by the
	// caller's context deadline.
	Ping(ctx context.Context) error

	Login(ctx context.Context, username, password string) (models.Account, error)
	FetchFolder(ctx context.Context, accountID string, kind models.FolderKind) ([]models.Message, error)
	Send(ctx context.Context, m models.Message) error
	MarkRead(ctx context.Context, messageID, accountID string) error
	MarkAllRead(ctx context.Context, accountID string) error
	ToggleArchive(ctx context.Context, messageID, accountID string, archived bool) error
	Acknowledge(ctx context.Context, memoID, accountID string) error

	ListAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context, a models.Account) error
	UpdateAccount(ctx context.Context, a models.Account, actorID string) error
	UpdateAvatar(ctx context.Context, accountID, avatarURL string) error

	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
	AdminResetPassword(ctx context.Context, targetID, newPassword, actorID string) error

	UploadAttachment(ctx context.Context, filename string, data []byte) (models.Attachment, error)
	FetchStats(ctx context.Context) (models.DashboardStats, error)
}
