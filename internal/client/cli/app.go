package cli

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fmchong/intramail/internal/client/config"
	"github.com/fmchong/intramail/internal/client/gateway"
	"github.com/fmchong/intramail/internal/client/mirror"
	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/client/notify"
	"github.com/fmchong/intramail/internal/client/refresh"
	"github.com/fmchong/intramail/internal/client/remote"
	"github.com/fmchong/intramail/internal/client/upload"
	"github.com/fmchong/intramail/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the client together: mirror, remote, gateway, refresh loop, and
// the interactive command surface on top of them.
type App struct {
	config    *config.Config
	gw        *gateway.Gateway
	scheduler *refresh.Scheduler
	store     *mirror.Store
	log       logging.Logger
	reader    *bufio.Reader

	mu            sync.Mutex
	snapshot      refresh.Snapshot
	notifications []models.Notification

	stopSync func()
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.Default())

	if err := os.MkdirAll(filepath.Dir(c.MirrorPath), 0o770); err != nil {
		log.Printf("error creating mirror directory: %s", err.Error())
		return nil, err
	}

	store, err := mirror.Open(ctx, c.MirrorPath, logger)
	if err != nil {
		log.Printf("error initializing mirror database: %s", err.Error())
		return nil, err
	}

	apiClient := remote.NewHTTPClient(c.ServerEndpointAddr, nil)

	var uploader upload.Uploader
	if c.ObjectStorage.Bucket != "" {
		uploader, err = upload.NewS3Uploader(ctx, upload.S3Options{
			Endpoint:      c.ObjectStorage.Endpoint,
			Region:        c.ObjectStorage.Region,
			AccessKey:     c.ObjectStorage.AccessKey,
			SecretKey:     c.ObjectStorage.SecretKey,
			Bucket:        c.ObjectStorage.Bucket,
			PublicBaseURL: c.ObjectStorage.PublicBaseURL,
		})
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	gw := gateway.New(store, apiClient, uploader, logger)
	scheduler := refresh.NewScheduler(gw, c.RefreshInterval, logger)

	return &App{
		config:    c,
		gw:        gw,
		scheduler: scheduler,
		store:     store,
		log:       logger,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	defer a.stopBackgroundSync()

	a.gw.Probe(ctx)
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	_, err := a.gw.CurrentAccount()
	return err == nil
}

func (a *App) mode() Mode {
	if a.gw.Connected() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) status() string {
	account, err := a.gw.CurrentAccount()
	if err != nil {
		return string(a.mode())
	}
	return account.Username + " | " + string(a.mode())
}

// startBackgroundSync launches the connectivity watcher and the refresh
// loop. Called once a session account is bound; fetching folders requires
// one.
func (a *App) startBackgroundSync(ctx context.Context) {
	if a.stopSync != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.scheduler.Start(ctx)
	go a.watchConnectivity(ctx, a.config.ProbeInterval)
	go a.consumeSnapshots(ctx)

	a.stopSync = func() {
		cancel()
		a.scheduler.Stop()
	}
}

func (a *App) stopBackgroundSync() {
	if a.stopSync != nil {
		a.stopSync()
		a.stopSync = nil
	}
}

func (a *App) watchConnectivity(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wasOnline := a.gw.Connected()
			if a.gw.Probe(ctx) && !wasOnline {
				a.scheduler.Trigger()
			}
		case <-ctx.Done():
			return
		}
	}
}

// consumeSnapshots folds published snapshots into the app state and rebuilds
// the notification feed. A newly appearing notification is announced once.
func (a *App) consumeSnapshots(ctx context.Context) {
	for {
		select {
		case snap := <-a.scheduler.Updates():
			account, err := a.gw.CurrentAccount()
			if err != nil {
				continue
			}
			fresh := notify.Derive(snap.Inbox, snap.Memos, account.ID)

			a.mu.Lock()
			known := make(map[string]bool, len(a.notifications))
			for _, n := range a.notifications {
				known[n.ID] = true
			}
			a.snapshot = snap
			a.notifications = fresh
			a.mu.Unlock()

			for _, n := range fresh {
				if !known[n.ID] {
					printlnFn("* " + n.Title + ": " + n.Message)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// discardSnapshots drops all in-memory state tied to the ended session.
func (a *App) discardSnapshots() {
	a.mu.Lock()
	a.snapshot = refresh.Snapshot{}
	a.notifications = nil
	a.mu.Unlock()
}

func (a *App) currentSnapshot() refresh.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

func (a *App) currentNotifications() []models.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Notification(nil), a.notifications...)
}
