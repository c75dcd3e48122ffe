package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jhshakil/kocialpilot/internal/models"
)

// Notifier surfaces cycle outcomes to the user. One success notification per
// post listing the platforms that worked, or a single failure notification
// when none did.
type Notifier interface {
	PublishSucceeded(ctx context.Context, post *models.ScheduledPost, platforms []string)
	PublishFailed(ctx context.Context, post *models.ScheduledPost, reason string)
}

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) PublishSucceeded(ctx context.Context, post *models.ScheduledPost, platforms []string) {
	slog.Info("post published", "post_id", post.ID, "platforms", strings.Join(platforms, ", "))
}

func (n *LogNotifier) PublishFailed(ctx context.Context, post *models.ScheduledPost, reason string) {
	slog.Warn("post failed to publish", "post_id", post.ID, "reason", reason)
}
