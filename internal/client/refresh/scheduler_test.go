package refresh

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/logging"
)

type fakeFetcher struct {
	mu      sync.Mutex
	fetched map[models.FolderKind]int
	block   chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{fetched: map[models.FolderKind]int{}}
}

func (f *fakeFetcher) FetchFolder(ctx context.Context, kind models.FolderKind) ([]models.Message, error) {
	f.mu.Lock()
	f.fetched[kind]++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []models.Message{{ID: "m_" + string(kind), Kind: models.KindEmail}}, nil
}

func (f *fakeFetcher) Connected() bool { return true }

func (f *fakeFetcher) count(kind models.FolderKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[kind]
}

func testLogger() logging.Logger { return logging.NewSlogLogger(slog.Default()) }

func waitSnapshot(t *testing.T, s *Scheduler) Snapshot {
	t.Helper()
	select {
	case snap := <-s.Updates():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
		return Snapshot{}
	}
}

func TestStart_PublishesImmediately(t *testing.T) {
	f := newFakeFetcher()
	s := NewScheduler(f, time.Hour, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	snap := waitSnapshot(t, s)
	assert.Len(t, snap.Inbox, 1)
	assert.Len(t, snap.Sent, 1)
	assert.Len(t, snap.Memos, 1)
	assert.True(t, snap.Online)
}

func TestArchive_OnlyFetchedWhileArchiveViewActive(t *testing.T) {
	f := newFakeFetcher()
	s := NewScheduler(f, time.Hour, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	snap := waitSnapshot(t, s)
	assert.Nil(t, snap.Archived)
	assert.Zero(t, f.count(models.FolderArchive))

	s.SetView(models.FolderArchive)
	snap = waitSnapshot(t, s)
	assert.Len(t, snap.Archived, 1)
	assert.Equal(t, 1, f.count(models.FolderArchive))

	s.SetView(models.FolderInbox)
	snap = waitSnapshot(t, s)
	assert.Nil(t, snap.Archived)
	assert.Equal(t, 1, f.count(models.FolderArchive))
}

func TestTicker_DrivesPeriodicCycles(t *testing.T) {
	f := newFakeFetcher()
	s := NewScheduler(f, 20*time.Millisecond, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return f.count(models.FolderInbox) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTrigger_CoalescesWhileCycleInFlight(t *testing.T) {
	f := newFakeFetcher()
	block := make(chan struct{})
	f.block = block

	s := NewScheduler(f, time.Hour, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return f.count(models.FolderInbox) == 1
	}, 2*time.Second, time.Millisecond)

	for i := 0; i < 5; i++ {
		s.Trigger()
	}
	close(block)
	f.mu.Lock()
	f.block = nil
	f.mu.Unlock()

	waitSnapshot(t, s)
	waitSnapshot(t, s)

	// five triggers against a busy loop collapse into a single extra cycle
	assert.LessOrEqual(t, f.count(models.FolderInbox), 3)
}

func TestStop_DiscardsLateResults(t *testing.T) {
	f := newFakeFetcher()
	block := make(chan struct{})
	f.block = block

	s := NewScheduler(f, time.Hour, testLogger())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return f.count(models.FolderInbox) == 1
	}, 2*time.Second, time.Millisecond)

	s.Stop()
	close(block)

	select {
	case snap := <-s.Updates():
		t.Fatalf("snapshot published after stop: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_KeepsOnlyLatestSnapshot(t *testing.T) {
	f := newFakeFetcher()
	s := NewScheduler(f, time.Hour, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return f.count(models.FolderInbox) == 1
	}, 2*time.Second, time.Millisecond)

	s.Trigger()
	require.Eventually(t, func() bool {
		return f.count(models.FolderInbox) == 2
	}, 2*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	first := waitSnapshot(t, s)
	assert.NotZero(t, first.At)

	select {
	case <-s.Updates():
		t.Fatal("stale snapshot retained alongside the fresh one")
	case <-time.After(20 * time.Millisecond):
	}
}
