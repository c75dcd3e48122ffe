package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/jhshakil/kocialpilot/internal/service"
	"github.com/jhshakil/kocialpilot/internal/transfer"
)

type GenerateHandler struct {
	s service.AIService
}

func NewGenerateHandler(s service.AIService) *GenerateHandler {
	return &GenerateHandler{s: s}
}

func (h *GenerateHandler) GenerateContent(c *fiber.Ctx) error {
	var req transfer.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	generated, err := h.s.GenerateContent(c.Context(), req.Prompt)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to generate content")
	}

	return c.Status(fiber.StatusOK).JSON(generated)
}

func (h *GenerateHandler) GenerateImage(c *fiber.Ctx) error {
	var req transfer.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	imageURL, err := h.s.GenerateImage(c.Context(), req.Prompt)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to generate image")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"imageUrl": imageURL,
	})
}
