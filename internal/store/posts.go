package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jhshakil/kocialpilot/internal/models"
)

const postsKey = "kocialpilot_posts"

var ErrPostNotFound = errors.New("post not found")

// PostStore owns the canonical scheduled-post list. Every write replaces the
// whole list in a single Put (last writer wins; one loop instance is the only
// concurrent writer).
type PostStore interface {
	List(ctx context.Context) ([]*models.ScheduledPost, error)
	SaveAll(ctx context.Context, posts []*models.ScheduledPost) error
	Get(ctx context.Context, id string) (*models.ScheduledPost, error)
	Add(ctx context.Context, post *models.ScheduledPost) error
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	UpdateSchedule(ctx context.Context, id, date, timeOfDay string) error
	Remove(ctx context.Context, id string) error
}

type postStore struct {
	kv KV
}

func NewPostStore(kv KV) PostStore {
	return &postStore{kv: kv}
}

func (s *postStore) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	raw, err := s.kv.Get(ctx, postsKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	// Entries are decoded one at a time so a single malformed record cannot
	// take the whole list down with it.
	var entries []json.RawMessage
	if err := json.Unmarshal(decodeRecord(raw), &entries); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	posts := make([]*models.ScheduledPost, 0, len(entries))
	for _, entry := range entries {
		var post models.ScheduledPost
		if err := json.Unmarshal(entry, &post); err != nil {
			slog.Info("skipping malformed post record: " + err.Error())
			continue
		}
		posts = append(posts, &post)
	}
	return posts, nil
}

func (s *postStore) SaveAll(ctx context.Context, posts []*models.ScheduledPost) error {
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	value, err := encodeRecord(posts)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return s.kv.Put(ctx, postsKey, value)
}

func (s *postStore) Get(ctx context.Context, id string) (*models.ScheduledPost, error) {
	posts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if post.ID == id {
			return post, nil
		}
	}
	return nil, ErrPostNotFound
}

func (s *postStore) Add(ctx context.Context, post *models.ScheduledPost) error {
	posts, err := s.List(ctx)
	if err != nil {
		return err
	}
	posts = append(posts, post)
	return s.SaveAll(ctx, posts)
}

func (s *postStore) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	return s.update(ctx, id, func(post *models.ScheduledPost) {
		post.Status = status
		post.Error = errMsg
	})
}

func (s *postStore) UpdateSchedule(ctx context.Context, id, date, timeOfDay string) error {
	return s.update(ctx, id, func(post *models.ScheduledPost) {
		post.Date = date
		post.Time = timeOfDay
	})
}

func (s *postStore) Remove(ctx context.Context, id string) error {
	posts, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := posts[:0]
	found := false
	for _, post := range posts {
		if post.ID == id {
			found = true
			continue
		}
		kept = append(kept, post)
	}
	if !found {
		return ErrPostNotFound
	}
	return s.SaveAll(ctx, kept)
}

// update re-reads the authoritative list, mutates the matching post and
// persists the whole list in one write.
func (s *postStore) update(ctx context.Context, id string, mutate func(*models.ScheduledPost)) error {
	posts, err := s.List(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, post := range posts {
		if post.ID == id {
			mutate(post)
			found = true
			break
		}
	}
	if !found {
		return ErrPostNotFound
	}
	return s.SaveAll(ctx, posts)
}
