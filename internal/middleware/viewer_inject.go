package middleware

import (
	"context"
	"errors"
	"time"

	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserFinder interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

// InjectViewer loads the authenticated user and stores it under LocalViewer. Tokens
// for users that no longer exist are rejected with 401; notFound is the finder's
// sentinel for a missing user.
func InjectViewer(users UserFinder, notFound error, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := UIDObjectID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		u, err := users.FindByID(ctx, uid)
		if err != nil {
			if errors.Is(err, notFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
			}
			return err
		}
		c.Locals(LocalViewer, u)
		return c.Next()
	}
}
