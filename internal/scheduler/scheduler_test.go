package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/notify"
	"github.com/jhshakil/kocialpilot/internal/platform"
	"github.com/jhshakil/kocialpilot/internal/store"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{} // when set, Publish waits until closed
	began chan struct{} // when set, closed on first Publish entry
}

func (p *fakePublisher) Publish(ctx context.Context, creds platform.Credentials, content, imageURL string) (*platform.PublishResult, error) {
	p.mu.Lock()
	p.calls++
	began := p.began
	p.began = nil
	p.mu.Unlock()

	if began != nil {
		close(began)
	}
	if p.block != nil {
		<-p.block
	}
	if p.err != nil {
		return nil, p.err
	}
	return &platform.PublishResult{PostID: "remote-1"}, nil
}

func (p *fakePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeNotifier struct {
	mu        sync.Mutex
	succeeded [][]string
	failed    []string
}

func (n *fakeNotifier) PublishSucceeded(ctx context.Context, post *models.ScheduledPost, platforms []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, platforms)
}

func (n *fakeNotifier) PublishFailed(ctx context.Context, post *models.ScheduledPost, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, reason)
}

type staticConnections struct {
	conn *models.PlatformConnection
}

func (s *staticConnections) Get(ctx context.Context, family string) (*models.PlatformConnection, error) {
	return s.conn, nil
}

func connectedRecord() *models.PlatformConnection {
	return &models.PlatformConnection{
		Status:             models.ConnectionStatusConnected,
		PageID:             "page-1",
		PageAccessToken:    "token-1",
		InstagramAccountID: "ig-1",
	}
}

func passthroughProject(conn *models.PlatformConnection) *platform.Credentials {
	if conn == nil || conn.Status != models.ConnectionStatusConnected {
		return nil
	}
	return &platform.Credentials{PageID: conn.PageID, PageAccessToken: conn.PageAccessToken}
}

func newTestScheduler(t *testing.T, posts []*models.ScheduledPost, registry *platform.Registry, now time.Time) (*Scheduler, store.PostStore, *fakeNotifier) {
	t.Helper()

	ps := store.NewPostStore(store.NewMemoryKV())
	if err := ps.SaveAll(context.Background(), posts); err != nil {
		t.Fatalf("seed posts: %v", err)
	}

	notifier := &fakeNotifier{}
	s := New(ps, &staticConnections{conn: connectedRecord()}, registry, notifier)
	s.now = func() time.Time { return now }
	return s, ps, notifier
}

func registryWith(defs map[string]platform.Publisher) *platform.Registry {
	r := platform.NewRegistry()
	for name, pub := range defs {
		r.Register(name, platform.Definition{
			Family:    "fb_ig",
			Project:   passthroughProject,
			Publisher: pub,
		})
	}
	return r
}

var _ notify.Notifier = (*fakeNotifier)(nil)

func TestCyclePartialSuccessIsPublished(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	post := postAt("p1", now, models.PostStatusScheduled)
	post.Platforms = []string{"alpha", "beta"}

	registry := registryWith(map[string]platform.Publisher{
		"alpha": &fakePublisher{},
		"beta":  &fakePublisher{err: errors.New("remote rejection")},
	})

	s, ps, notifier := newTestScheduler(t, []*models.ScheduledPost{post}, registry, now)
	if err := s.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	stored, err := ps.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("read back post: %v", err)
	}
	if stored.Status != models.PostStatusPublished {
		t.Fatalf("expected published, got %s", stored.Status)
	}
	if len(notifier.succeeded) != 1 || len(notifier.succeeded[0]) != 1 || notifier.succeeded[0][0] != "alpha" {
		t.Fatalf("expected success notification listing only alpha, got %v", notifier.succeeded)
	}
	if len(notifier.failed) != 0 {
		t.Fatalf("expected no failure notification, got %v", notifier.failed)
	}
}

func TestCycleAllPlatformsFailedIsFailed(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	post := postAt("p1", now, models.PostStatusScheduled)
	post.Platforms = []string{"alpha", "beta"}

	registry := registryWith(map[string]platform.Publisher{
		"alpha": &fakePublisher{err: errors.New("boom")},
		"beta":  &fakePublisher{err: errors.New("bang")},
	})

	s, ps, notifier := newTestScheduler(t, []*models.ScheduledPost{post}, registry, now)
	if err := s.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	stored, _ := ps.Get(context.Background(), "p1")
	if stored.Status != models.PostStatusFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}
	if len(notifier.failed) != 1 {
		t.Fatalf("expected one failure notification, got %v", notifier.failed)
	}
	if len(notifier.succeeded) != 0 {
		t.Fatalf("expected no success notification, got %v", notifier.succeeded)
	}
}

func TestCycleMissingConnectionDoesNotBlockOtherPlatforms(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	post := postAt("p1", now, models.PostStatusScheduled)
	post.Platforms = []string{"orphan", "alpha"}

	alpha := &fakePublisher{}
	registry := registryWith(map[string]platform.Publisher{"alpha": alpha})
	registry.Register("orphan", platform.Definition{
		Family:    "fb_ig",
		Project:   func(*models.PlatformConnection) *platform.Credentials { return nil },
		Publisher: &fakePublisher{},
	})

	s, ps, _ := newTestScheduler(t, []*models.ScheduledPost{post}, registry, now)
	if err := s.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if alpha.callCount() != 1 {
		t.Fatalf("expected alpha to be attempted once, got %d", alpha.callCount())
	}
	stored, _ := ps.Get(context.Background(), "p1")
	if stored.Status != models.PostStatusPublished {
		t.Fatalf("expected published after partial success, got %s", stored.Status)
	}
}

func TestOverlappingCycleIsSkipped(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	post := postAt("p1", now, models.PostStatusScheduled)
	post.Platforms = []string{"alpha"}

	block := make(chan struct{})
	began := make(chan struct{})
	slow := &fakePublisher{block: block, began: began}
	registry := registryWith(map[string]platform.Publisher{"alpha": slow})

	s, _, _ := newTestScheduler(t, []*models.ScheduledPost{post}, registry, now)

	done := make(chan error, 1)
	go func() {
		done <- s.RunCycle(context.Background())
	}()

	<-began
	if err := s.RunCycle(context.Background()); !errors.Is(err, ErrCycleInFlight) {
		t.Fatalf("expected ErrCycleInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	if slow.callCount() != 1 {
		t.Fatalf("post published %d times, want 1", slow.callCount())
	}
}

func TestCycleMarksMissedPostsFailed(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	stale := postAt("stale", now.Add(-time.Hour), models.PostStatusScheduled)

	pub := &fakePublisher{}
	registry := registryWith(map[string]platform.Publisher{"facebook": pub})

	s, ps, notifier := newTestScheduler(t, []*models.ScheduledPost{stale}, registry, now)
	if err := s.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	stored, _ := ps.Get(context.Background(), "stale")
	if stored.Status != models.PostStatusFailed {
		t.Fatalf("expected missed post to fail, got %s", stored.Status)
	}
	if stored.Error != "missed publish window" {
		t.Fatalf("unexpected error message: %q", stored.Error)
	}
	if pub.callCount() != 0 {
		t.Fatalf("missed post must not be published, got %d attempts", pub.callCount())
	}
	if len(notifier.failed) != 1 {
		t.Fatalf("expected one failure notification, got %v", notifier.failed)
	}
}
