package routes

import (
	"log/slog"
	"time"

	"devconnector/internal/controllers"
	"devconnector/internal/middleware"
	"devconnector/internal/services"

	"github.com/gofiber/fiber/v2"
)

type Deps struct {
	Posts          *services.PostService
	Users          *services.UserService
	JWTSecret      string
	RequestTimeout time.Duration
	CORSOrigins    string
	Metrics        *middleware.Metrics
	Logger         *slog.Logger
	// RequestLog enables the per-request access log line.
	RequestLog bool
}

// private is the guard chain for routes that act on behalf of a user.
func private(d Deps) []fiber.Handler {
	return []fiber.Handler{
		middleware.RequireAuth(),
		middleware.InjectViewer(d.Users, services.ErrUserNotFound, d.RequestTimeout),
	}
}

// with appends the final handler to a guard chain.
func with(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

func Register(app *fiber.App, d Deps) {
	PostRoutes(app, controllers.NewPostHandler(d.Posts, d.RequestTimeout, d.Logger), private(d))
	UserRoutes(app, controllers.NewUserHandler(d.Users, d.RequestTimeout, d.Logger), private(d))
}
