// Package gateway is the synchronization core: every read and write from the
// UI goes through it, and it alone decides whether an operation runs against
// the remote service or the local mirror. The gateway is also the mirror's
// single writer.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fmchong/intramail/internal/client/mirror"
	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/client/remote"
	"github.com/fmchong/intramail/internal/client/upload"
	"github.com/fmchong/intramail/internal/common"
	"github.com/fmchong/intramail/internal/logging"
)

// Remote call deadlines. A dead remote must never block the UI: reads and
// writes are short, only uploads get room for large files.
const (
	probeTimeout  = 1 * time.Second
	readTimeout   = 2 * time.Second
	writeTimeout  = 3 * time.Second
	uploadTimeout = 60 * time.Second
)

// Gateway carries the explicit session context: the cached connectivity
// flag, the mirror handle, the remote client, and the account bound to the
// current session. There is exactly one active session per client process.
type Gateway struct {
	mirror   *mirror.Store
	remote   remote.Client
	uploader upload.Uploader
	log      logging.Logger

	mu        sync.RWMutex
	connected bool
	account   models.Account
	loggedIn  bool
}

func New(store *mirror.Store, rc remote.Client, up upload.Uploader, log logging.Logger) *Gateway {
	if up == nil {
		up = upload.NewActionUploader(rc)
	}
	return &Gateway{mirror: store, remote: rc, uploader: up, log: log}
}

// Connected reports the cached reachability state. The flag only changes on
// an explicit probe or when a gateway call observes the transport.
func (g *Gateway) Connected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connected
}

func (g *Gateway) setConnected(ctx context.Context, connected bool) {
	g.mu.Lock()
	changed := g.connected != connected
	g.connected = connected
	g.mu.Unlock()
	if changed {
		g.log.Info(ctx, "connectivity changed", "connected", connected)
	}
}

// CurrentAccount returns the account bound to the session.
func (g *Gateway) CurrentAccount() (models.Account, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.loggedIn {
		return models.Account{}, common.ErrUnauthenticated
	}
	return g.account, nil
}

func (g *Gateway) bindSession(a models.Account) {
	g.mu.Lock()
	g.account = a
	g.loggedIn = true
	g.mu.Unlock()
}

// Logout unbinds the session account. Mirror state stays on disk for the
// next offline login.
func (g *Gateway) Logout() {
	g.mu.Lock()
	g.account = models.Account{}
	g.loggedIn = false
	g.mu.Unlock()
}

// Probe performs one bounded reachability check and caches the result.
// It has no side effects beyond the connectivity flag.
func (g *Gateway) Probe(ctx context.Context) bool {
	rctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := g.remote.Ping(rctx)
	ok := err == nil || !errors.Is(err, common.ErrUnavailable)
	g.setConnected(ctx, ok)
	return ok
}

// tryRemote runs fn under the given deadline if the session is connected.
// A transport failure flips the connectivity flag and comes back as
// common.ErrUnavailable so the caller falls through to its local path;
// application-level errors pass through untouched. A nil return means the
// remote concluded the operation authoritatively.
func (g *Gateway) tryRemote(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if !g.Connected() {
		return common.ErrUnavailable
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(rctx)
	if errors.Is(err, common.ErrUnavailable) {
		g.setConnected(ctx, false)
		return err
	}
	return err
}

// audit appends a security-relevant entry to the mirror's append-only log.
// Audit failures are logged, never propagated into the user operation.
func (g *Gateway) audit(ctx context.Context, accountID, action, details, origin string) {
	e := models.AuditEntry{
		ID:        newID(),
		AccountID: accountID,
		Action:    action,
		Details:   details,
		Origin:    origin,
		Timestamp: time.Now(),
	}
	if err := g.mirror.Audit.Append(ctx, e); err != nil {
		g.log.Warn(ctx, "audit append failed", "action", action, "err", err)
	}
}

// AuditTrail returns the locally recorded security log, newest first.
func (g *Gateway) AuditTrail(ctx context.Context) ([]models.AuditEntry, error) {
	return g.mirror.Audit.List(ctx)
}

// FetchStats returns dashboard aggregates: the remote's when reachable,
// otherwise computed from the mirror.
func (g *Gateway) FetchStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := g.tryRemote(ctx, readTimeout, func(rctx context.Context) error {
		var err error
		stats, err = g.remote.FetchStats(rctx)
		return err
	})
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, common.ErrUnavailable) {
		return models.DashboardStats{}, err
	}
	return g.mirror.Stats(ctx)
}

// UploadAttachment validates and uploads a file. There is no offline
// equivalent: size and type are checked before any network call, and an
// unreachable remote surfaces as a user-visible failure.
func (g *Gateway) UploadAttachment(ctx context.Context, filename string, data []byte) (models.Attachment, error) {
	if filename == "" || len(data) == 0 {
		return models.Attachment{}, fmt.Errorf("%w: empty attachment", common.ErrValidation)
	}
	if len(data) > upload.MaxSize {
		return models.Attachment{}, fmt.Errorf("%w: file exceeds the %s limit",
			common.ErrValidation, models.SizeLabel(upload.MaxSize))
	}
	if t := models.ClassifyFile(filename); !upload.Allowed(t) {
		return models.Attachment{}, fmt.Errorf("%w: file type %q is not allowed", common.ErrValidation, t)
	}

	var att models.Attachment
	err := g.tryRemote(ctx, uploadTimeout, func(rctx context.Context) error {
		var err error
		att, err = g.uploader.Upload(rctx, filename, data)
		return err
	})
	if err != nil {
		return models.Attachment{}, err
	}
	return att, nil
}
