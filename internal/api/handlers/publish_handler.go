package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/jhshakil/kocialpilot/internal/platform"
	"github.com/jhshakil/kocialpilot/internal/transfer"
)

// PublishHandler serves the generic publish endpoint. Credentials arrive in
// the request body; this route never reads the connection store.
type PublishHandler struct {
	registry *platform.Registry
}

func NewPublishHandler(registry *platform.Registry) *PublishHandler {
	return &PublishHandler{registry: registry}
}

func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	if req.Platform == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Platform is required")
	}

	def, ok := h.registry.Lookup(req.Platform)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Unsupported platform: "+req.Platform)
	}

	creds := platform.Credentials{
		PageID:             req.ConnectionData.PageID,
		PageAccessToken:    req.ConnectionData.PageAccessToken,
		InstagramAccountID: req.ConnectionData.InstagramAccountID,
	}

	imageURL := ""
	if req.ImageURL != nil {
		imageURL = *req.ImageURL
	}

	result, err := def.Publisher.Publish(c.Context(), creds, req.Content, imageURL)
	if err != nil {
		slog.Info(err.Error())
		status := fiber.StatusBadGateway
		if errors.Is(err, platform.ErrMissingCredentials) || errors.Is(err, platform.ErrMissingImage) {
			status = fiber.StatusBadRequest
		}
		return errorJSON(c, status, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"platform": req.Platform,
		"postId":   result.PostID,
		"result":   result.Raw,
	})
}
