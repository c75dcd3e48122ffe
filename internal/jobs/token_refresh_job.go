package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/service"
	"github.com/jhshakil/kocialpilot/internal/store"
)

// Long-lived Facebook user tokens last about 60 days; renew well before that.
const refreshAfter = 45 * 24 * time.Hour

type TokenRefreshJob struct {
	conns service.ConnectionService
	fb    service.FacebookService
}

func NewTokenRefreshJob(conns service.ConnectionService, fb service.FacebookService) *TokenRefreshJob {
	return &TokenRefreshJob{
		conns: conns,
		fb:    fb,
	}
}

// RefreshTokens renews the stored long-lived user token when it is old
// enough. A failed refresh flips the record to error status with the message
// on its last-error field.
func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	conn, err := j.conns.Get(ctx, store.FamilyFacebookInstagram)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if conn == nil || conn.Status != models.ConnectionStatusConnected {
		return
	}

	last := conn.RefreshedAt
	if last.IsZero() {
		last = conn.ConnectedAt
	}
	if time.Since(last) < refreshAfter {
		return
	}

	bundle, err := j.fb.RefreshToken(ctx, conn.UserAccessToken)
	if err != nil {
		slog.Info("Unable to refresh tokens for Facebook")
		if err := j.conns.MarkError(ctx, store.FamilyFacebookInstagram, err.Error()); err != nil {
			slog.Info(err.Error())
		}
		return
	}

	if err := j.conns.SaveBundle(ctx, bundle); err != nil {
		slog.Info(err.Error())
	}
}
