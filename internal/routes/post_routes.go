package routes

import (
	"devconnector/internal/controllers"

	"github.com/gofiber/fiber/v2"
)

// PostRoutes mounts /api/posts. /test is registered ahead of /:id so it is not
// captured as an id.
func PostRoutes(app *fiber.App, h *controllers.PostHandler, auth []fiber.Handler) {
	posts := app.Group("/api/posts")

	posts.Get("/test", h.Test)
	posts.Get("/", h.List)
	posts.Get("/:id", h.Get)

	posts.Post("/", with(auth, h.Create)...)
	posts.Delete("/:id", with(auth, h.Delete)...)
	posts.Post("/like/:id", with(auth, h.Like)...)
	posts.Post("/unlike/:id", with(auth, h.Unlike)...)
	posts.Post("/comment/:id", with(auth, h.AddComment)...)
	posts.Delete("/comment/:id/:comment_id", with(auth, h.RemoveComment)...)
}
