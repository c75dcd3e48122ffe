package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/jhshakil/kocialpilot/internal/platform"
)

type stubPublisher struct {
	lastCreds   platform.Credentials
	lastContent string
	lastImage   string
	result      *platform.PublishResult
	err         error
}

func (p *stubPublisher) Publish(ctx context.Context, creds platform.Credentials, content, imageURL string) (*platform.PublishResult, error) {
	p.lastCreds = creds
	p.lastContent = content
	p.lastImage = imageURL
	return p.result, p.err
}

func newPublishApp(pub platform.Publisher) *fiber.App {
	registry := platform.NewRegistry()
	registry.Register("facebook", platform.Definition{Family: "fb_ig", Publisher: pub})

	app := fiber.New()
	app.Post("/api/publish", NewPublishHandler(registry).Publish)
	return app
}

func doJSON(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/publish", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response %q: %v", raw, err)
	}
	return resp, decoded
}

func TestPublishSuccess(t *testing.T) {
	pub := &stubPublisher{result: &platform.PublishResult{
		PostID: "page-1_123",
		Raw:    map[string]interface{}{"id": "page-1_123"},
	}}
	app := newPublishApp(pub)

	resp, body := doJSON(t, app, `{
		"content": "hello",
		"imageUrl": "https://cdn.example.com/a.png",
		"platform": "facebook",
		"connectionData": {"pageId": "page-1", "pageAccessToken": "token"}
	}`)

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != true || body["postId"] != "page-1_123" {
		t.Fatalf("unexpected body: %v", body)
	}
	if pub.lastCreds.PageID != "page-1" || pub.lastCreds.PageAccessToken != "token" {
		t.Fatalf("credentials not forwarded: %+v", pub.lastCreds)
	}
	if pub.lastContent != "hello" || pub.lastImage != "https://cdn.example.com/a.png" {
		t.Fatalf("content not forwarded: %q %q", pub.lastContent, pub.lastImage)
	}
}

func TestPublishNullImageURL(t *testing.T) {
	pub := &stubPublisher{result: &platform.PublishResult{PostID: "x"}}
	app := newPublishApp(pub)

	resp, _ := doJSON(t, app, `{"content":"hello","imageUrl":null,"platform":"facebook","connectionData":{}}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if pub.lastImage != "" {
		t.Fatalf("null imageUrl must reach the publisher as empty, got %q", pub.lastImage)
	}
}

func TestPublishUnsupportedPlatform(t *testing.T) {
	app := newPublishApp(&stubPublisher{})

	resp, body := doJSON(t, app, `{"content":"hello","platform":"tiktok","connectionData":{}}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "Unsupported platform: tiktok" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestPublishMissingPlatform(t *testing.T) {
	app := newPublishApp(&stubPublisher{})

	resp, _ := doJSON(t, app, `{"content":"hello","connectionData":{}}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPublishCredentialErrorIsBadRequest(t *testing.T) {
	app := newPublishApp(&stubPublisher{err: platform.ErrMissingCredentials})

	resp, _ := doJSON(t, app, `{"content":"hello","platform":"facebook","connectionData":{}}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPublishRemoteFailureIsBadGateway(t *testing.T) {
	app := newPublishApp(&stubPublisher{err: errors.New("Invalid OAuth access token")})

	resp, body := doJSON(t, app, `{"content":"hello","platform":"facebook","connectionData":{"pageId":"p","pageAccessToken":"t"}}`)
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if body["error"] != "Invalid OAuth access token" {
		t.Fatalf("upstream message not surfaced: %v", body)
	}
}
