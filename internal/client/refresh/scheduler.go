// Package refresh drives the periodic background synchronization cycle and
// publishes complete folder snapshots for the UI to render. The UI never
// fetches on its own: it observes snapshots and asks for an immediate cycle
// when the user changes views.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/logging"
)

// DefaultInterval is the steady-state cycle period.
const DefaultInterval = 10 * time.Second

// Fetcher is the slice of the gateway the scheduler needs.
type Fetcher interface {
	FetchFolder(ctx context.Context, kind models.FolderKind) ([]models.Message, error)
	Connected() bool
}

// Snapshot is one complete, self-consistent view of the mailbox. The slices
// are never mutated after publication.
type Snapshot struct {
	Inbox    []models.Message
	Sent     []models.Message
	Archived []models.Message
	Memos    []models.Message
	Online   bool
	At       time.Time
}

// Scheduler runs the refresh loop. One cycle fetches the inbox, sent, and
// memo folders every time; the archive only while the archive view is
// active. Cycles run one at a time: a trigger arriving while a cycle is in
// flight is coalesced into at most one pending cycle.
type Scheduler struct {
	fetcher  Fetcher
	log      logging.Logger
	interval time.Duration

	mu   sync.Mutex
	view models.FolderKind

	kick    chan struct{}
	updates chan Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(fetcher Fetcher, interval time.Duration, log logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		fetcher:  fetcher,
		log:      log,
		interval: interval,
		view:     models.FolderInbox,
		kick:     make(chan struct{}, 1),
		updates:  make(chan Snapshot, 1),
	}
}

// Updates is the snapshot stream. Only the latest snapshot is retained: a
// slow consumer sees the freshest state, never a backlog.
func (s *Scheduler) Updates() <-chan Snapshot {
	return s.updates
}

// SetView records the folder the user is looking at and triggers an
// immediate cycle so a view change is never stale for a full period.
func (s *Scheduler) SetView(kind models.FolderKind) {
	s.mu.Lock()
	s.view = kind
	s.mu.Unlock()
	s.Trigger()
}

func (s *Scheduler) activeView() models.FolderKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Trigger requests an immediate cycle. Safe from any goroutine; requests
// arriving while a cycle runs collapse into one.
func (s *Scheduler) Trigger() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Start launches the loop with an immediate first cycle. It returns after
// the loop goroutine is running.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.Trigger()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-s.kick:
			}
			s.cycle(ctx)
		}
	}()
}

// Stop cancels the loop and waits for it. In-flight fetches abort through
// the context and their results are discarded, never published.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) cycle(ctx context.Context) {
	snap := Snapshot{At: time.Now()}

	var err error
	if snap.Inbox, err = s.fetcher.FetchFolder(ctx, models.FolderInbox); err != nil {
		s.log.Warn(ctx, "refresh cycle failed", "folder", models.FolderInbox, "err", err)
		return
	}
	if snap.Sent, err = s.fetcher.FetchFolder(ctx, models.FolderSent); err != nil {
		s.log.Warn(ctx, "refresh cycle failed", "folder", models.FolderSent, "err", err)
		return
	}
	if snap.Memos, err = s.fetcher.FetchFolder(ctx, models.FolderMemo); err != nil {
		s.log.Warn(ctx, "refresh cycle failed", "folder", models.FolderMemo, "err", err)
		return
	}
	if s.activeView() == models.FolderArchive {
		if snap.Archived, err = s.fetcher.FetchFolder(ctx, models.FolderArchive); err != nil {
			s.log.Warn(ctx, "refresh cycle failed", "folder", models.FolderArchive, "err", err)
			return
		}
	}
	snap.Online = s.fetcher.Connected()

	if ctx.Err() != nil {
		return
	}
	s.publish(snap)
}

// publish replaces any unconsumed snapshot with the fresh one.
func (s *Scheduler) publish(snap Snapshot) {
	for {
		select {
		case s.updates <- snap:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
