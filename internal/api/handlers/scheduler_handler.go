package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"social-executor/internal/models"
	"social-executor/internal/service"
)

type SchedulerHandler struct {
	s service.SchedulerService
}

func NewSchedulerHandler(s service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{s: s}
}

// RunScheduler is the externally triggered twice-daily run: resolve the
// slot's channel, publish the next eligible post, report what happened.
func (h *SchedulerHandler) RunScheduler(c *fiber.Ctx) error {
	slot, ok := models.ParseSlot(c.Query("slot", "am"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "slot must be am or pm"})
	}

	result, err := h.s.Run(c.Context(), slot, c.Query("channel"))
	if err != nil {
		var perr *models.PublishError
		if errors.As(err, &perr) && result != nil {
			// the publish failed but the run itself resolved a post; report both
			return c.Status(fiber.StatusBadGateway).JSON(result)
		}
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
