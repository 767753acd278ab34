package controllers

import (
	"context"
	"log/slog"
	"time"

	"devconnector/dto"
	"devconnector/internal/middleware"
	"devconnector/internal/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Svc     *services.UserService
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewUserHandler(svc *services.UserService, timeout time.Duration, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{Svc: svc, Timeout: timeout, Logger: logger}
}

// Test godoc
// @Summary      Users route check
// @Tags         users
// @Produce      json
// @Success      200  {object}  dto.MsgResponse
// @Router       /api/users/test [get]
func (h *UserHandler) Test(c *fiber.Ctx) error {
	return c.JSON(dto.MsgResponse{Msg: "users works"})
}

// Register godoc
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        data  body      dto.RegisterReq  true  "Registration payload"
// @Success      200   {object}  models.User
// @Failure      400   {object}  dto.FieldErrors
// @Router       /api/users/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var body dto.RegisterReq
	if err := bindBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors{"body": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.Timeout)
	defer cancel()

	u, err := h.Svc.Register(ctx, body)
	if err != nil {
		return writeServiceError(c, h.Logger, "register", err)
	}
	return c.JSON(u)
}

// Login godoc
// @Summary      Log in and receive a JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        data  body      dto.LoginReq  true  "Credentials"
// @Success      200   {object}  dto.LoginResp
// @Failure      400   {object}  dto.FieldErrors
// @Failure      404   {object}  dto.FieldErrors
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var body dto.LoginReq
	if err := bindBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors{"body": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.Timeout)
	defer cancel()

	token, err := h.Svc.Login(ctx, body)
	if err != nil {
		return writeServiceError(c, h.Logger, "login", err)
	}
	return c.JSON(dto.LoginResp{Success: true, Token: "Bearer " + token})
}

// Current godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CurrentUserResp
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/users/current [get]
func (h *UserHandler) Current(c *fiber.Ctx) error {
	u := middleware.ViewerFrom(c)
	if u == nil {
		return fiber.ErrUnauthorized
	}
	return c.JSON(dto.CurrentUserResp{ID: u.ID.Hex(), Name: u.Name, Email: u.Email})
}
