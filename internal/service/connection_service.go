package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/jhshakil/kocialpilot/configs"
	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/store"
	"github.com/jhshakil/kocialpilot/internal/transfer"
	"github.com/jhshakil/kocialpilot/pkg/utils"
)

// ConnectionService mediates every read and write of the credential record.
// Access tokens are encrypted before the record is persisted and decrypted on
// the way out, so the rest of the system only ever sees plaintext tokens.
type ConnectionService interface {
	Get(ctx context.Context, family string) (*models.PlatformConnection, error)
	Save(ctx context.Context, family string, conn *models.PlatformConnection) error
	SaveBundle(ctx context.Context, bundle *transfer.ConnectionBundle) error
	MarkError(ctx context.Context, family, message string) error
	Disconnect(ctx context.Context, family string) error
	Test(ctx context.Context, family string) error
}

type connectionService struct {
	cfg config.Config
	cs  store.ConnectionStore
	fb  FacebookService
}

func NewConnectionService(cfg config.Config, cs store.ConnectionStore, fb FacebookService) ConnectionService {
	return &connectionService{
		cfg: cfg,
		cs:  cs,
		fb:  fb,
	}
}

func (s *connectionService) Get(ctx context.Context, family string) (*models.PlatformConnection, error) {
	conn, err := s.cs.Get(ctx, family)
	if err != nil || conn == nil {
		return nil, err
	}

	if s.cfg.SecretKey != "" {
		if conn.UserAccessToken, err = s.decrypt(conn.UserAccessToken); err != nil {
			return nil, err
		}
		if conn.PageAccessToken, err = s.decrypt(conn.PageAccessToken); err != nil {
			return nil, err
		}
	}
	return conn, nil
}

func (s *connectionService) Save(ctx context.Context, family string, conn *models.PlatformConnection) error {
	if conn == nil {
		err := errors.New("connection record is nil")
		slog.Info(err.Error())
		return err
	}

	stored := *conn
	if s.cfg.SecretKey != "" {
		var err error
		if stored.UserAccessToken, err = s.encrypt(stored.UserAccessToken); err != nil {
			return err
		}
		if stored.PageAccessToken, err = s.encrypt(stored.PageAccessToken); err != nil {
			return err
		}
	}
	return s.cs.Set(ctx, family, &stored)
}

func (s *connectionService) SaveBundle(ctx context.Context, bundle *transfer.ConnectionBundle) error {
	if bundle == nil {
		err := errors.New("connection bundle is nil")
		slog.Info(err.Error())
		return err
	}

	conn := &models.PlatformConnection{
		Status:             models.ConnectionStatusConnected,
		UserAccessToken:    bundle.UserAccessToken,
		UserName:           bundle.UserName,
		UserID:             bundle.UserID,
		PageID:             bundle.PageID,
		PageName:           bundle.PageName,
		PageAccessToken:    bundle.PageAccessToken,
		InstagramAccountID: bundle.InstagramAccountID,
		InstagramUsername:  bundle.InstagramUsername,
		ConnectedAt:        time.Now(),
		RefreshedAt:        bundle.RefreshedAt,
	}
	return s.Save(ctx, store.FamilyFacebookInstagram, conn)
}

func (s *connectionService) MarkError(ctx context.Context, family, message string) error {
	conn, err := s.Get(ctx, family)
	if err != nil {
		return err
	}
	if conn == nil {
		return errors.New("no connection record to update")
	}

	conn.Status = models.ConnectionStatusError
	conn.LastError = message
	return s.Save(ctx, family, conn)
}

func (s *connectionService) Disconnect(ctx context.Context, family string) error {
	return s.cs.Delete(ctx, family)
}

func (s *connectionService) Test(ctx context.Context, family string) error {
	conn, err := s.Get(ctx, family)
	if err != nil {
		return err
	}
	if conn == nil {
		return errors.New("no connection record found")
	}
	return s.fb.TestConnection(ctx, conn)
}

func (s *connectionService) encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	encrypted, err := utils.Encrypt([]byte(value), []byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return encrypted, nil
}

func (s *connectionService) decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	decrypted, err := utils.Decrypt(value, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return decrypted, nil
}
