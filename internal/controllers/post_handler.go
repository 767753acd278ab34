package controllers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"devconnector/dto"
	"devconnector/internal/middleware"
	"devconnector/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	Svc     *services.PostService
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewPostHandler(svc *services.PostService, timeout time.Duration, logger *slog.Logger) *PostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostHandler{Svc: svc, Timeout: timeout, Logger: logger}
}

func (h *PostHandler) ctx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.Timeout)
}

// callerFrom builds the acting user from the viewer injected by middleware.InjectViewer.
func callerFrom(c *fiber.Ctx) (services.Caller, error) {
	if v := middleware.ViewerFrom(c); v != nil {
		return services.Caller{ID: v.ID, Name: v.Name, Avatar: v.Avatar}, nil
	}
	uid, err := middleware.UIDObjectID(c)
	if err != nil {
		return services.Caller{}, err
	}
	return services.Caller{ID: uid}, nil
}

// Test godoc
// @Summary      Posts route check
// @Tags         posts
// @Produce      json
// @Success      200  {object}  dto.MsgResponse
// @Router       /api/posts/test [get]
func (h *PostHandler) Test(c *fiber.Ctx) error {
	return c.JSON(dto.MsgResponse{Msg: "posts works"})
}

// List godoc
// @Summary      List posts
// @Description  All posts, newest first
// @Tags         posts
// @Produce      json
// @Success      200  {array}   models.Post
// @Failure      400  {object}  dto.FieldErrors
// @Router       /api/posts [get]
func (h *PostHandler) List(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	posts, err := h.Svc.List(ctx)
	if err != nil {
		h.Logger.Error("list posts failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors{"nopostsfound": "No posts found"})
	}
	return c.JSON(posts)
}

// Get godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID (hex)"
// @Success      200  {object}  models.Post
// @Failure      400  {object}  dto.FieldErrors
// @Router       /api/posts/{id} [get]
func (h *PostHandler) Get(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Svc.Get(ctx, c.Params("id"))
	if err != nil {
		if !errors.Is(err, services.ErrPostNotFound) {
			h.Logger.Error("get post failed", "post_id", c.Params("id"), "error", err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors{"nopostfound": "No post found with that ID"})
	}
	return c.JSON(post)
}

// Create godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        data  body      dto.CreatePostReq  true  "Post payload"
// @Success      200   {object}  models.Post
// @Failure      400   {object}  dto.FieldErrors
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/posts [post]
func (h *PostHandler) Create(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var body dto.CreatePostReq
	if err := bindBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors{"body": "invalid body"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Svc.Create(ctx, caller, body)
	if err != nil {
		return writeServiceError(c, h.Logger, "create post", err)
	}
	return c.JSON(post)
}

// Delete godoc
// @Summary      Delete a post
// @Description  Only the author of a post can delete it
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID (hex)"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      401  {object}  dto.FieldErrors
// @Failure      404  {object}  dto.FieldErrors
// @Router       /api/posts/{id} [delete]
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Svc.Delete(ctx, caller, c.Params("id")); err != nil {
		return writeServiceError(c, h.Logger, "delete post", err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Like godoc
// @Summary      Like a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID (hex)"
// @Success      200  {object}  models.Post
// @Failure      400  {object}  dto.FieldErrors  "already liked"
// @Failure      404  {object}  dto.FieldErrors
// @Router       /api/posts/like/{id} [post]
func (h *PostHandler) Like(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Svc.Like(ctx, caller, c.Params("id"))
	if err != nil {
		return writeServiceError(c, h.Logger, "like post", err)
	}
	return c.JSON(post)
}

// Unlike godoc
// @Summary      Unlike a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID (hex)"
// @Success      200  {object}  models.Post
// @Failure      400  {object}  dto.FieldErrors  "not liked"
// @Failure      404  {object}  dto.FieldErrors
// @Router       /api/posts/unlike/{id} [post]
func (h *PostHandler) Unlike(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Svc.Unlike(ctx, caller, c.Params("id"))
	if err != nil {
		return writeServiceError(c, h.Logger, "unlike post", err)
	}
	return c.JSON(post)
}

// AddComment godoc
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Post ID (hex)"
// @Param        data  body      dto.CreateCommentReq  true  "Comment payload"
// @Success      200   {object}  models.Post
// @Failure      400   {object}  dto.FieldErrors
// @Failure      404   {object}  dto.FieldErrors
// @Router       /api/posts/comment/{id} [post]
func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var body dto.CreateCommentReq
	if err := bindBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FieldErrors{"body": "invalid body"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Svc.AddComment(ctx, caller, c.Params("id"), body)
	if err != nil {
		return writeServiceError(c, h.Logger, "add comment", err)
	}
	return c.JSON(post)
}

// RemoveComment godoc
// @Summary      Remove a comment
// @Description  The comment author or the post owner can remove a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true  "Post ID (hex)"
// @Param        comment_id  path      string  true  "Comment ID (hex)"
// @Success      200         {object}  models.Post
// @Failure      401         {object}  dto.FieldErrors
// @Failure      404         {object}  dto.FieldErrors
// @Router       /api/posts/comment/{id}/{comment_id} [delete]
func (h *PostHandler) RemoveComment(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Svc.RemoveComment(ctx, caller, c.Params("id"), c.Params("comment_id"))
	if err != nil {
		return writeServiceError(c, h.Logger, "remove comment", err)
	}
	return c.JSON(post)
}
