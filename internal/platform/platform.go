package platform

import (
	"context"
	"errors"
	"strings"

	"github.com/jhshakil/kocialpilot/internal/models"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrMissingImage       = errors.New("missing required image")
)

// Credentials is the minimal bundle a publisher needs for one publish call.
type Credentials struct {
	PageID             string
	PageAccessToken    string
	InstagramAccountID string
}

type PublishResult struct {
	PostID string                 `json:"postId"`
	Raw    map[string]interface{} `json:"result"`
}

// Publisher performs exactly one outbound publish attempt. Implementations
// never touch the post store.
type Publisher interface {
	Publish(ctx context.Context, creds Credentials, content, imageURL string) (*PublishResult, error)
}

// Definition binds a platform name to its connection projection and publish
// strategy. Adding a platform is one Register call.
type Definition struct {
	Family    string
	Project   func(conn *models.PlatformConnection) *Credentials
	Publisher Publisher
}

type Registry struct {
	defs map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

func (r *Registry) Register(name string, def Definition) {
	r.defs[strings.ToLower(name)] = def
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[strings.ToLower(name)]
	return def, ok
}

func isHTTPURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func projectionReady(conn *models.PlatformConnection, fields ...string) bool {
	if conn == nil || conn.Status != models.ConnectionStatusConnected {
		return false
	}
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}
