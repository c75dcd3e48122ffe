package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/jhshakil/kocialpilot/internal/service"
	"github.com/jhshakil/kocialpilot/internal/store"
	"github.com/jhshakil/kocialpilot/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	post, err := h.s.Create(c.Context(), &pc)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	postID := c.Query("id")

	if postID != "" {
		post, err := h.s.Info(c.Context(), postID)
		if err != nil {
			if errors.Is(err, store.ErrPostNotFound) {
				return errorJSON(c, fiber.StatusNotFound, "Post not found")
			}
			return errorJSON(c, fiber.StatusBadRequest, "Unable to get post")
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context())
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Unable to list posts")
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// ReschedulePost backs the calendar drag-and-drop: it moves a still-scheduled
// post to a new date and time.
func (h *PostHandler) ReschedulePost(c *fiber.Ctx) error {
	var req transfer.PostReschedule
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	if err := h.s.Reschedule(c.Context(), req.ID, req.Date, req.Time); err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Post not found")
		}
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID := c.Query("id")

	if err := h.s.Remove(c.Context(), postID); err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Post not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to remove post")
	}
	return c.SendStatus(fiber.StatusOK)
}
