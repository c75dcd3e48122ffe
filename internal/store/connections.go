package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jhshakil/kocialpilot/internal/models"
)

// FamilyFacebookInstagram is the platform family shared by the facebook and
// instagram adapters; both publish through the one credential record.
const FamilyFacebookInstagram = "fb_ig"

// ConnectionStore persists one PlatformConnection record per platform family.
type ConnectionStore interface {
	Get(ctx context.Context, family string) (*models.PlatformConnection, error)
	Set(ctx context.Context, family string, conn *models.PlatformConnection) error
	Delete(ctx context.Context, family string) error
}

type connectionStore struct {
	kv KV
}

func NewConnectionStore(kv KV) ConnectionStore {
	return &connectionStore{kv: kv}
}

func connectionKey(family string) string {
	return fmt.Sprintf("kocialpilot_%s_connections", family)
}

func (s *connectionStore) Get(ctx context.Context, family string) (*models.PlatformConnection, error) {
	raw, err := s.kv.Get(ctx, connectionKey(family))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var conn models.PlatformConnection
	if err := json.Unmarshal(decodeRecord(raw), &conn); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &conn, nil
}

func (s *connectionStore) Set(ctx context.Context, family string, conn *models.PlatformConnection) error {
	value, err := encodeRecord(conn)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return s.kv.Put(ctx, connectionKey(family), value)
}

func (s *connectionStore) Delete(ctx context.Context, family string) error {
	return s.kv.Delete(ctx, connectionKey(family))
}
