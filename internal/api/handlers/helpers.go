package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"social-executor/internal/models"
)

// writeError maps the error taxonomy onto status codes: validation 400,
// not-found 404, publish failures 502, storage failures 500.
func writeError(c *fiber.Ctx, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Msg})
	}

	if errors.Is(err, models.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var perr *models.PublishError
	if errors.As(err, &perr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": perr.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// parseBool accepts the loose truthy spellings approval links carry.
func parseBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
