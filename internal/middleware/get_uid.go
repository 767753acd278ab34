package middleware

import (
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UIDFromLocals returns the user id set by JWTUidOnly.
func UIDFromLocals(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals(LocalUserID).(string)
	if uid == "" {
		return "", fiber.ErrUnauthorized
	}
	return uid, nil
}

// UIDObjectID is UIDFromLocals parsed as an ObjectID.
func UIDObjectID(c *fiber.Ctx) (bson.ObjectID, error) {
	uid, err := UIDFromLocals(c)
	if err != nil {
		return bson.NilObjectID, err
	}
	oid, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return bson.NilObjectID, fiber.ErrUnauthorized
	}
	return oid, nil
}

// ViewerFrom returns the user loaded by InjectViewer, or nil.
func ViewerFrom(c *fiber.Ctx) *models.User {
	v, _ := c.Locals(LocalViewer).(*models.User)
	return v
}
