package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/jhshakil/kocialpilot/internal/models"
)

// SlackNotifier posts cycle summaries to an incoming webhook. Delivery
// failures are logged and swallowed; notifications never affect publishing.
type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

func (n *SlackNotifier) PublishSucceeded(ctx context.Context, post *models.ScheduledPost, platforms []string) {
	text := fmt.Sprintf("Published post %s to: %s", post.ID, strings.Join(platforms, ", "))
	n.send(ctx, text)
}

func (n *SlackNotifier) PublishFailed(ctx context.Context, post *models.ScheduledPost, reason string) {
	text := fmt.Sprintf("Failed to publish post %s: %s", post.ID, reason)
	n.send(ctx, text)
}

func (n *SlackNotifier) send(ctx context.Context, text string) {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		slog.Info("slack notification failed: " + err.Error())
	}
}
