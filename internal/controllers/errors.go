package controllers

import (
	"errors"
	"log/slog"

	"devconnector/dto"
	"devconnector/internal/services"

	"github.com/gofiber/fiber/v2"
)

// writeServiceError is the single error boundary for post and user handlers. Known
// service errors map to a status and a descriptive key; anything else is a store
// failure, logged and answered with an opaque 400.
func writeServiceError(c *fiber.Ctx, logger *slog.Logger, op string, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors(verr.Fields))
	}

	status, key, msg := fiber.StatusBadRequest, "error", "Unable to complete request"
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		status, key, msg = fiber.StatusNotFound, "postnotfound", "No post found"
	case errors.Is(err, services.ErrCommentNotFound):
		status, key, msg = fiber.StatusNotFound, "commentnotexists", "Comment does not exist"
	case errors.Is(err, services.ErrNotOwner):
		status, key, msg = fiber.StatusUnauthorized, "notauthorized", "User not authorized"
	case errors.Is(err, services.ErrAlreadyLiked):
		key, msg = "alreadyliked", "User already liked this post"
	case errors.Is(err, services.ErrNotLiked):
		key, msg = "notliked", "You have not yet liked this post"
	case errors.Is(err, services.ErrNoProfile):
		status, key, msg = fiber.StatusNotFound, "noprofile", "There is no profile for this user"
	case errors.Is(err, services.ErrUserNotFound):
		status, key, msg = fiber.StatusNotFound, "email", "User not found"
	case errors.Is(err, services.ErrPasswordIncorrect):
		key, msg = "password", "Password incorrect"
	default:
		logger.Error("request failed", "op", op, "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(dto.FieldErrors{key: msg})
}

// bindBody decodes the request body into dst. An empty body or a content type the
// parser does not handle leaves dst zero, so validation names the missing fields.
func bindBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return err
	}
	return nil
}
