package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	config "social-executor/configs"
	"social-executor/pkg/utils"
)

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

func (m *AuthMiddleware) apiKeyOK(c *fiber.Ctx) bool {
	if m.cfg.AdminAPIKey == "" {
		// no key configured: the deployment relies on network-level access control
		return true
	}
	key := c.Get("X-API-Key")
	if key == "" {
		key = c.Query("api_key")
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.cfg.AdminAPIKey)) == 1
}

// RequireAPIKey guards the mutating routes.
func (m *AuthMiddleware) RequireAPIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.apiKeyOK(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid api key",
			})
		}
		return c.Next()
	}
}

// AllowApprovalToken additionally accepts a signed approval-link token in
// place of the api key, pinning the request to the post id it was minted
// for.
func (m *AuthMiddleware) AllowApprovalToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Query("token"); token != "" && m.cfg.SecretKey != "" {
			claims, err := utils.ValidateApprovalToken(m.cfg.SecretKey, token)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid or expired approval token",
				})
			}
			c.Locals("post_id", claims.PostID)
			return c.Next()
		}

		if !m.apiKeyOK(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid api key",
			})
		}
		return c.Next()
	}
}
