package middleware

import (
	"strings"

	"devconnector/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middlewares.
const (
	LocalUserID       = "user_id"
	LocalViewer       = "viewer"
	LocalTokenInvalid = "token_invalid"
)

// JWTUidOnly reads "Authorization: Bearer <token>" and stores the token's user id in
// Locals. It never rejects: requests without a usable token continue anonymously, and
// an invalid or expired token is flagged under LocalTokenInvalid for RequireAuth.
func JWTUidOnly(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			return c.Next()
		}

		claims, err := auth.Parse(strings.TrimSpace(header[7:]), key)
		if err != nil {
			c.Locals(LocalTokenInvalid, true)
			return c.Next()
		}

		c.Locals(LocalUserID, claims.UserID())
		return c.Next()
	}
}
