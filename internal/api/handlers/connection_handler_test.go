package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	config "github.com/jhshakil/kocialpilot/configs"
)

func newCallbackApp(frontendURL string) *fiber.App {
	h := NewConnectionHandler(config.Config{FrontendURL: frontendURL}, nil, nil)

	app := fiber.New()
	app.Get("/api/facebook/callback", h.Callback)
	return app
}

func doCallback(t *testing.T, app *fiber.App, query string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/facebook/callback"+query, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestCallbackForwardsCodeToFrontend(t *testing.T) {
	app := newCallbackApp("http://localhost:5173")

	resp := doCallback(t, app, "?code=auth-code&state=signed-state")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	want := "http://localhost:5173/social-media?code=auth-code&state=signed-state"
	if location != want {
		t.Fatalf("unexpected redirect target:\n got %s\nwant %s", location, want)
	}
}

func TestCallbackForwardsProviderError(t *testing.T) {
	app := newCallbackApp("http://localhost:5173")

	resp := doCallback(t, app, "?error=access_denied")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	want := "http://localhost:5173/social-media?error=access_denied"
	if got := resp.Header.Get("Location"); got != want {
		t.Fatalf("unexpected redirect target:\n got %s\nwant %s", got, want)
	}
}

func TestCallbackWithoutCodeRedirectsWithError(t *testing.T) {
	app := newCallbackApp("http://localhost:5173")

	resp := doCallback(t, app, "")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	want := "http://localhost:5173/social-media?error=No+authorization+code+received"
	if got := resp.Header.Get("Location"); got != want {
		t.Fatalf("unexpected redirect target:\n got %s\nwant %s", got, want)
	}
}

func TestCallbackTrimsFrontendTrailingSlash(t *testing.T) {
	app := newCallbackApp("http://localhost:5173/")

	resp := doCallback(t, app, "?code=auth-code")
	want := "http://localhost:5173/social-media?code=auth-code"
	if got := resp.Header.Get("Location"); got != want {
		t.Fatalf("unexpected redirect target:\n got %s\nwant %s", got, want)
	}
}
