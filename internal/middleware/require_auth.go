package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth rejects requests that JWTUidOnly did not authenticate.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if uid, _ := c.Locals(LocalUserID).(string); strings.TrimSpace(uid) == "" {
			if bad, _ := c.Locals(LocalTokenInvalid).(bool); bad {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}
