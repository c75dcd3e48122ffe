package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/store"
	"github.com/jhshakil/kocialpilot/internal/transfer"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type PostService interface {
	Create(ctx context.Context, pc *transfer.PostCreation) (*models.ScheduledPost, error)
	List(ctx context.Context) ([]*models.ScheduledPost, error)
	Info(ctx context.Context, id string) (*models.ScheduledPost, error)
	Reschedule(ctx context.Context, id, date, timeOfDay string) error
	Remove(ctx context.Context, id string) error
}

type postService struct {
	ps    store.PostStore
	media *MediaService
}

func NewPostService(ps store.PostStore, media *MediaService) PostService {
	return &postService{
		ps:    ps,
		media: media,
	}
}

func (s *postService) Create(ctx context.Context, pc *transfer.PostCreation) (*models.ScheduledPost, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if strings.TrimSpace(pc.Content) == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}
	if len(pc.Platforms) == 0 {
		err := errors.New("no platforms selected")
		slog.Info(err.Error())
		return nil, err
	}
	if err := validateSchedule(pc.Date, pc.Time); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	post := &models.ScheduledPost{
		ID:        id,
		Content:   pc.Content,
		Images:    s.resolveImages(ctx, pc.Images),
		Date:      pc.Date,
		Time:      pc.Time,
		Platforms: pc.Platforms,
		Status:    models.PostStatusScheduled,
		CreatedAt: time.Now(),
	}

	if err := s.ps.Add(ctx, post); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}
	return post, nil
}

// resolveImages uploads inline data-URI images to media storage when it is
// configured, so publishers receive http(s) URLs. Upload failures keep the
// inline reference; the adapters have their own fallbacks for those.
func (s *postService) resolveImages(ctx context.Context, images []string) []string {
	if len(images) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(images))
	for _, image := range images {
		if strings.HasPrefix(image, "data:") && s.media != nil && s.media.Enabled() {
			url, err := s.media.UploadImage(ctx, image)
			if err != nil {
				slog.Info("inline image upload failed: " + err.Error())
			} else {
				resolved = append(resolved, url)
				continue
			}
		}
		resolved = append(resolved, image)
	}
	return resolved
}

func (s *postService) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	posts, err := s.ps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Info(ctx context.Context, id string) (*models.ScheduledPost, error) {
	if id == "" {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	return s.ps.Get(ctx, id)
}

func (s *postService) Reschedule(ctx context.Context, id, date, timeOfDay string) error {
	if id == "" {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}
	if err := validateSchedule(date, timeOfDay); err != nil {
		slog.Info(err.Error())
		return err
	}

	post, err := s.ps.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.Status != models.PostStatusScheduled {
		err = fmt.Errorf("only scheduled posts can be rescheduled, status is %s", post.Status)
		slog.Info(err.Error())
		return err
	}

	return s.ps.UpdateSchedule(ctx, id, date, timeOfDay)
}

func (s *postService) Remove(ctx context.Context, id string) error {
	if id == "" {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}
	return s.ps.Remove(ctx, id)
}

func validateSchedule(date, timeOfDay string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	if _, err := time.Parse(timeLayout, timeOfDay); err != nil {
		return fmt.Errorf("invalid time format: %w", err)
	}
	return nil
}
