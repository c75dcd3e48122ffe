package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jhshakil/kocialpilot/internal/models"
)

// imageSkippedNotice is appended to the message when an image reference
// cannot be attached as a link. Inline image data is not uploaded to
// Facebook; the post still goes out text-only.
const imageSkippedNotice = "\n\n[image not included]"

type FacebookPublisher struct {
	client  *http.Client
	baseURL string
}

func NewFacebookPublisher(client *http.Client) *FacebookPublisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &FacebookPublisher{client: client, baseURL: DefaultGraphURL}
}

func (p *FacebookPublisher) Publish(ctx context.Context, creds Credentials, content, imageURL string) (*PublishResult, error) {
	if creds.PageID == "" || creds.PageAccessToken == "" {
		return nil, ErrMissingCredentials
	}

	payload := map[string]interface{}{
		"message":      content,
		"access_token": creds.PageAccessToken,
	}
	if imageURL != "" {
		if isHTTPURL(imageURL) {
			payload["link"] = imageURL
		} else {
			payload["message"] = content + imageSkippedNotice
		}
	}

	url := fmt.Sprintf("%s/%s/feed", p.baseURL, creds.PageID)

	var result struct {
		ID string `json:"id"`
	}
	if err := postGraph(ctx, p.client, url, payload, &result); err != nil {
		return nil, fmt.Errorf("failed to post to Facebook: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("no post ID returned from Facebook")
	}

	return &PublishResult{
		PostID: result.ID,
		Raw:    map[string]interface{}{"id": result.ID},
	}, nil
}

func projectFacebook(conn *models.PlatformConnection) *Credentials {
	if conn == nil || !projectionReady(conn, conn.PageID, conn.PageAccessToken) {
		return nil
	}
	return &Credentials{
		PageID:          conn.PageID,
		PageAccessToken: conn.PageAccessToken,
	}
}
