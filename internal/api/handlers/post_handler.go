package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"social-executor/internal/service"
	"social-executor/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) Healthz(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func (h *PostHandler) CreateDraft(c *fiber.Ctx) error {
	var dc transfer.DraftCreation
	if err := c.BodyParser(&dc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "request body must be valid JSON",
		})
	}

	postID, err := h.s.CreateDraft(c.Context(), &dc)
	if err != nil {
		return writeError(c, err)
	}

	response := fiber.Map{
		"ok":      true,
		"post_id": postID,
		"status":  "pending",
	}
	if link, err := h.s.ApprovalLink(postID); err != nil {
		slog.Error("failed to mint approval link", "post_id", postID, "err", err)
	} else if link != "" {
		response["approve_url"] = link
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// ApproveLink serves the one-click approval links from notification emails.
// The post id comes either from the query or from a validated token placed
// in locals by the middleware.
func (h *PostHandler) ApproveLink(c *fiber.Ctx) error {
	postID := c.Query("post_id")
	if tokenPostID, ok := c.Locals("post_id").(string); ok && tokenPostID != "" {
		postID = tokenPostID
	}

	req := &transfer.ApproveRequest{
		PostID:      postID,
		PublishNow:  parseBool(c.Query("publish_now"), false),
		Channels:    splitList(c.Query("channels")),
		ScheduledAt: c.Query("scheduled_at"),
	}

	result, err := h.s.Approve(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) ApproveAPI(c *fiber.Ctx) error {
	var req transfer.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "request body must be valid JSON",
		})
	}

	result, err := h.s.Approve(c.Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	status := c.Query("status")
	limit := c.QueryInt("limit", 100)

	posts, err := h.s.List(c.Context(), status, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"posts": posts})
}

func (h *PostHandler) DebugPost(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
	}

	post, err := h.s.Get(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if post == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
	}
	return c.Status(fiber.StatusOK).JSON(post)
}
