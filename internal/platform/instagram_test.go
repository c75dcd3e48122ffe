package platform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jhshakil/kocialpilot/internal/models"
)

func igCreds() Credentials {
	return Credentials{InstagramAccountID: "ig-1", PageAccessToken: "page-token"}
}

func TestInstagramPublishTwoPhase(t *testing.T) {
	capture := &graphCapture{}
	srv := newGraphServer(t, capture, func(path string) (int, string) {
		if strings.HasSuffix(path, "/media") {
			return 200, `{"id":"container-1"}`
		}
		return 200, `{"id":"media-1"}`
	})
	defer srv.Close()

	p := NewInstagramPublisher(srv.Client())
	p.baseURL = srv.URL

	result, err := p.Publish(context.Background(), igCreds(), "caption", "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.PostID != "media-1" {
		t.Fatalf("unexpected media id: %s", result.PostID)
	}

	if len(capture.paths) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(capture.paths))
	}
	if capture.paths[0] != "/ig-1/media" || capture.paths[1] != "/ig-1/media_publish" {
		t.Fatalf("unexpected call sequence: %v", capture.paths)
	}
	if capture.bodies[0]["image_url"] != "https://cdn.example.com/a.png" {
		t.Fatalf("container missing image_url: %v", capture.bodies[0])
	}
	if capture.bodies[0]["caption"] != "caption" {
		t.Fatalf("container missing caption: %v", capture.bodies[0])
	}
	if capture.bodies[1]["creation_id"] != "container-1" {
		t.Fatalf("publish phase missing creation_id: %v", capture.bodies[1])
	}
}

func TestInstagramPublishRequiresImageBeforeNetwork(t *testing.T) {
	capture := &graphCapture{}
	srv := newGraphServer(t, capture, func(string) (int, string) {
		return 200, `{"id":"should-not-happen"}`
	})
	defer srv.Close()

	p := NewInstagramPublisher(srv.Client())
	p.baseURL = srv.URL

	for _, imageURL := range []string{"", "data:image/png;base64,AAAA"} {
		if _, err := p.Publish(context.Background(), igCreds(), "caption", imageURL); !errors.Is(err, ErrMissingImage) {
			t.Fatalf("imageURL %q: expected ErrMissingImage, got %v", imageURL, err)
		}
	}
	if len(capture.paths) != 0 {
		t.Fatalf("image validation must happen before any network call, saw %v", capture.paths)
	}
}

func TestInstagramPublishContainerFailure(t *testing.T) {
	capture := &graphCapture{}
	srv := newGraphServer(t, capture, func(path string) (int, string) {
		return 400, `{"error":{"message":"Media type unsupported"}}`
	})
	defer srv.Close()

	p := NewInstagramPublisher(srv.Client())
	p.baseURL = srv.URL

	_, err := p.Publish(context.Background(), igCreds(), "caption", "https://cdn.example.com/a.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to create Instagram media container") {
		t.Fatalf("phase not named in error: %v", err)
	}
	if !strings.Contains(err.Error(), "Media type unsupported") {
		t.Fatalf("upstream message not surfaced: %v", err)
	}
	if len(capture.paths) != 1 {
		t.Fatalf("publish phase must not run after container failure, saw %v", capture.paths)
	}
}

func TestInstagramPublishSecondPhaseFailure(t *testing.T) {
	capture := &graphCapture{}
	srv := newGraphServer(t, capture, func(path string) (int, string) {
		if strings.HasSuffix(path, "/media") {
			return 200, `{"id":"container-1"}`
		}
		return 500, `{"error":{"message":"Publish limit reached"}}`
	})
	defer srv.Close()

	p := NewInstagramPublisher(srv.Client())
	p.baseURL = srv.URL

	_, err := p.Publish(context.Background(), igCreds(), "caption", "https://cdn.example.com/a.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to publish Instagram media container") {
		t.Fatalf("phase not named in error: %v", err)
	}
}

func TestInstagramPublishMissingCredentials(t *testing.T) {
	p := NewInstagramPublisher(nil)
	_, err := p.Publish(context.Background(), Credentials{}, "caption", "https://cdn.example.com/a.png")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestProjectInstagram(t *testing.T) {
	conn := &models.PlatformConnection{
		Status:             models.ConnectionStatusConnected,
		PageAccessToken:    "page-token",
		InstagramAccountID: "ig-1",
	}
	creds := projectInstagram(conn)
	if creds == nil || creds.InstagramAccountID != "ig-1" || creds.PageAccessToken != "page-token" {
		t.Fatalf("unexpected projection: %+v", creds)
	}

	noIG := *conn
	noIG.InstagramAccountID = ""
	if projectInstagram(&noIG) != nil {
		t.Fatal("record without instagram account must not project")
	}
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := DefaultRegistry(nil)
	for _, name := range []string{"facebook", "Facebook", "INSTAGRAM"} {
		if _, ok := r.Lookup(name); !ok {
			t.Fatalf("lookup %q failed", name)
		}
	}
	if _, ok := r.Lookup("tiktok"); ok {
		t.Fatal("unknown platform must not resolve")
	}
}
