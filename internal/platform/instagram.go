package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jhshakil/kocialpilot/internal/models"
)

// InstagramPublisher publishes in two phases: create a media container with
// the image URL and caption, then publish the container by its creation id.
// Instagram rejects text-only posts, so the image is validated before any
// network call.
type InstagramPublisher struct {
	client  *http.Client
	baseURL string
}

func NewInstagramPublisher(client *http.Client) *InstagramPublisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &InstagramPublisher{client: client, baseURL: DefaultGraphURL}
}

func (p *InstagramPublisher) Publish(ctx context.Context, creds Credentials, content, imageURL string) (*PublishResult, error) {
	if creds.InstagramAccountID == "" || creds.PageAccessToken == "" {
		return nil, ErrMissingCredentials
	}
	if imageURL == "" || !isHTTPURL(imageURL) {
		return nil, ErrMissingImage
	}

	containerURL := fmt.Sprintf("%s/%s/media", p.baseURL, creds.InstagramAccountID)
	containerPayload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      content,
		"access_token": creds.PageAccessToken,
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := postGraph(ctx, p.client, containerURL, containerPayload, &container); err != nil {
		return nil, fmt.Errorf("failed to create Instagram media container: %w", err)
	}
	if container.ID == "" {
		return nil, fmt.Errorf("no media container ID returned from Instagram")
	}

	publishURL := fmt.Sprintf("%s/%s/media_publish", p.baseURL, creds.InstagramAccountID)
	publishPayload := map[string]string{
		"creation_id":  container.ID,
		"access_token": creds.PageAccessToken,
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := postGraph(ctx, p.client, publishURL, publishPayload, &published); err != nil {
		return nil, fmt.Errorf("failed to publish Instagram media container: %w", err)
	}
	if published.ID == "" {
		return nil, fmt.Errorf("no media ID returned from Instagram")
	}

	return &PublishResult{
		PostID: published.ID,
		Raw:    map[string]interface{}{"id": published.ID, "creation_id": container.ID},
	}, nil
}

func projectInstagram(conn *models.PlatformConnection) *Credentials {
	if conn == nil || !projectionReady(conn, conn.InstagramAccountID, conn.PageAccessToken) {
		return nil
	}
	return &Credentials{
		InstagramAccountID: conn.InstagramAccountID,
		PageAccessToken:    conn.PageAccessToken,
	}
}

// DefaultRegistry wires the facebook and instagram strategies. Both share the
// fb_ig connection family.
func DefaultRegistry(client *http.Client) *Registry {
	r := NewRegistry()
	r.Register("facebook", Definition{
		Family:    "fb_ig",
		Project:   projectFacebook,
		Publisher: NewFacebookPublisher(client),
	})
	r.Register("instagram", Definition{
		Family:    "fb_ig",
		Project:   projectInstagram,
		Publisher: NewInstagramPublisher(client),
	})
	return r
}
