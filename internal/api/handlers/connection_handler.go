package handlers

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	config "github.com/jhshakil/kocialpilot/configs"
	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/service"
	"github.com/jhshakil/kocialpilot/internal/store"
	"github.com/jhshakil/kocialpilot/internal/transfer"
	"github.com/jhshakil/kocialpilot/pkg/utils"
)

const oauthStateTTL = 10 * time.Minute

type ConnectionHandler struct {
	cfg config.Config
	fb  service.FacebookService
	cs  service.ConnectionService
}

func NewConnectionHandler(cfg config.Config, fb service.FacebookService, cs service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		cfg: cfg,
		fb:  fb,
		cs:  cs,
	}
}

// OAuthURL returns the Facebook dialog URL with a signed state parameter.
func (h *ConnectionHandler) OAuthURL(c *fiber.Ctx) error {
	state, err := utils.GenerateStateToken(h.cfg.SecretKey, oauthStateTTL)
	if err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to generate OAuth URL")
	}

	oauthURL, err := h.fb.OAuthURL(state)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     true,
		"oauthUrl":    oauthURL,
		"redirectUri": h.cfg.FacebookRedirectURI,
	})
}

// Callback receives the browser back from the Facebook dialog and bounces it
// to the frontend's social media page with the code or error, where the
// exchange is completed.
func (h *ConnectionHandler) Callback(c *fiber.Ctx) error {
	base := strings.TrimSuffix(h.cfg.FrontendURL, "/") + "/social-media"

	if errParam := c.Query("error"); errParam != "" {
		return c.Redirect(base+"?error="+url.QueryEscape(errParam), fiber.StatusFound)
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect(base+"?error="+url.QueryEscape("No authorization code received"), fiber.StatusFound)
	}

	target := base + "?code=" + url.QueryEscape(code)
	if state := c.Query("state"); state != "" {
		target += "&state=" + url.QueryEscape(state)
	}
	return c.Redirect(target, fiber.StatusFound)
}

// OAuthExchange trades an authorization code for the connection bundle and
// persists it.
func (h *ConnectionHandler) OAuthExchange(c *fiber.Ctx) error {
	var req transfer.OAuthExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}
	if req.Code == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Authorization code is required")
	}
	if req.State != "" {
		if err := utils.ValidateStateToken(h.cfg.SecretKey, req.State); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid OAuth state")
		}
	}

	bundle, err := h.fb.ExchangeCode(c.Context(), req.Code)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.cs.SaveBundle(c.Context(), bundle); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save connection")
	}

	return c.Status(fiber.StatusOK).JSON(bundle)
}

// Connect verifies a manually supplied access token and persists the bundle.
func (h *ConnectionHandler) Connect(c *fiber.Ctx) error {
	var req transfer.ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}
	if req.AccessToken == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Access Token is required")
	}

	bundle, err := h.fb.Connect(c.Context(), req.AccessToken)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.cs.SaveBundle(c.Context(), bundle); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save connection")
	}

	return c.Status(fiber.StatusOK).JSON(bundle)
}

// Refresh exchanges the current user token for a fresh long-lived one. The
// token comes from the body when supplied, otherwise from the stored record.
func (h *ConnectionHandler) Refresh(c *fiber.Ctx) error {
	var req transfer.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	token := req.UserAccessToken
	if token == "" {
		conn, err := h.cs.Get(c.Context(), store.FamilyFacebookInstagram)
		if err != nil || conn == nil {
			return errorJSON(c, fiber.StatusBadRequest, "No current access token to refresh")
		}
		token = conn.UserAccessToken
	}

	bundle, err := h.fb.RefreshToken(c.Context(), token)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.cs.SaveBundle(c.Context(), bundle); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save connection")
	}

	return c.Status(fiber.StatusOK).JSON(bundle)
}

// Test runs read-only verification calls. With a body it tests the supplied
// credentials, without one it tests the stored record.
func (h *ConnectionHandler) Test(c *fiber.Ctx) error {
	var req transfer.ConnectionTestRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	if req.AccessToken != "" {
		conn := &models.PlatformConnection{
			UserAccessToken:    req.AccessToken,
			PageAccessToken:    req.PageAccessToken,
			PageID:             req.PageID,
			InstagramAccountID: req.InstagramAccountID,
		}
		if err := h.fb.TestConnection(c.Context(), conn); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.cs.Test(c.Context(), store.FamilyFacebookInstagram); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "All connections are working properly",
	})
}

func (h *ConnectionHandler) GetConnection(c *fiber.Ctx) error {
	conn, err := h.cs.Get(c.Context(), store.FamilyFacebookInstagram)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to load connection")
	}
	if conn == nil {
		return errorJSON(c, fiber.StatusNotFound, "No connection found")
	}
	return c.Status(fiber.StatusOK).JSON(conn)
}

// SaveConnection stores a full record supplied by the manual setup form.
func (h *ConnectionHandler) SaveConnection(c *fiber.Ctx) error {
	var conn models.PlatformConnection
	if err := c.BodyParser(&conn); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}
	if conn.Status == "" {
		conn.Status = models.ConnectionStatusConnected
	}
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = time.Now()
	}

	if err := h.cs.Save(c.Context(), store.FamilyFacebookInstagram, &conn); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to save connection")
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *ConnectionHandler) RemoveConnection(c *fiber.Ctx) error {
	if err := h.cs.Disconnect(c.Context(), store.FamilyFacebookInstagram); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to remove connection")
	}
	return c.SendStatus(fiber.StatusOK)
}
