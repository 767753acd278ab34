package routes

import (
	"devconnector/internal/controllers"

	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App, h *controllers.UserHandler, auth []fiber.Handler) {
	users := app.Group("/api/users")

	users.Get("/test", h.Test)
	users.Post("/register", h.Register)
	users.Post("/login", h.Login)
	users.Get("/current", with(auth, h.Current)...)
}
