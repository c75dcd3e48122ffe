package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"

	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/notify"
	"github.com/jhshakil/kocialpilot/internal/platform"
	"github.com/jhshakil/kocialpilot/internal/store"
)

// ErrCycleInFlight is returned when a cycle fires while the previous one is
// still running. The overlapping firing is skipped, never queued.
var ErrCycleInFlight = errors.New("publishing cycle already in flight")

// ConnectionSource resolves the credential record for a platform family.
// Returns (nil, nil) when no usable record exists.
type ConnectionSource interface {
	Get(ctx context.Context, family string) (*models.PlatformConnection, error)
}

// Scheduler owns the background publishing loop: a recurring timer that
// selects due posts, attempts each of their target platforms sequentially and
// reconciles final status back into the post store.
type Scheduler struct {
	posts    store.PostStore
	conns    ConnectionSource
	registry *platform.Registry
	notifier notify.Notifier
	now      func() time.Time
	cronSpec string

	cron     *cron.Cron
	inFlight atomic.Bool
}

func New(posts store.PostStore, conns ConnectionSource, registry *platform.Registry, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		posts:    posts,
		conns:    conns,
		registry: registry,
		notifier: notifier,
		now:      time.Now,
		cronSpec: "@every 0h1m0s",
	}
}

// Start runs one immediate cycle, then ticks every minute until Stop.
func (s *Scheduler) Start() error {
	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	s.runLogged()

	c := cron.New()
	if err := c.AddFunc(s.cronSpec, s.runLogged); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// runLogged is the timer entry point. Cycle-level errors are logged so the
// next tick always fires.
func (s *Scheduler) runLogged() {
	if err := s.RunCycle(context.Background()); err != nil && !errors.Is(err, ErrCycleInFlight) {
		slog.Error("publishing cycle failed", "error", err)
	}
}

// RunCycle executes one select → publish → reconcile pass. At most one cycle
// runs at a time; an overlapping call returns ErrCycleInFlight without doing
// any work.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer s.inFlight.Store(false)

	posts, err := s.posts.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read post list: %w", err)
	}

	now := s.now()

	for _, post := range Missed(posts, now) {
		reason := "missed publish window"
		if err := s.posts.UpdateStatus(ctx, post.ID, models.PostStatusFailed, reason); err != nil {
			slog.Error("failed to reconcile missed post", "post_id", post.ID, "error", err)
			continue
		}
		s.notifier.PublishFailed(ctx, post, reason)
	}

	for _, post := range Due(posts, now) {
		s.publishPost(ctx, post)
	}
	return nil
}

// publishPost attempts each target platform in listed order. One platform's
// failure never blocks another's attempt. The post ends published when at
// least one platform succeeded, failed otherwise.
func (s *Scheduler) publishPost(ctx context.Context, post *models.ScheduledPost) {
	var succeeded []string
	var lastErr string

	for _, name := range post.Platforms {
		def, ok := s.registry.Lookup(name)
		if !ok {
			slog.Warn("unsupported platform", "platform", name, "post_id", post.ID)
			lastErr = fmt.Sprintf("unsupported platform %q", name)
			continue
		}

		conn, err := s.conns.Get(ctx, def.Family)
		if err != nil {
			slog.Warn("failed to load connection", "platform", name, "error", err)
			lastErr = err.Error()
			continue
		}

		creds := def.Project(conn)
		if creds == nil {
			slog.Warn("no usable connection", "platform", name, "post_id", post.ID)
			lastErr = fmt.Sprintf("no usable connection for %s", name)
			continue
		}

		result, err := def.Publisher.Publish(ctx, *creds, post.Content, post.FirstImage())
		if err != nil {
			slog.Warn("publish attempt failed", "platform", name, "post_id", post.ID, "error", err)
			lastErr = err.Error()
			continue
		}

		slog.Info("published", "platform", name, "post_id", post.ID, "remote_id", result.PostID)
		succeeded = append(succeeded, name)
	}

	status := models.PostStatusFailed
	errMsg := lastErr
	if len(succeeded) > 0 {
		status = models.PostStatusPublished
		errMsg = ""
	}

	if err := s.posts.UpdateStatus(ctx, post.ID, status, errMsg); err != nil {
		slog.Error("failed to persist post status", "post_id", post.ID, "error", err)
	}

	if len(succeeded) > 0 {
		s.notifier.PublishSucceeded(ctx, post, succeeded)
	} else {
		s.notifier.PublishFailed(ctx, post, lastErr)
	}
}
