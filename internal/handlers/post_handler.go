package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/middleware"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth, imageUpload echo.MiddlewareFunc) {
	g.POST("/create", h.CreatePost, requireAuth, imageUpload)
	g.GET("/:id", h.GetPost)
	g.DELETE("/:id", h.DeletePost, requireAuth)
	g.POST("/:id/like", h.LikePost, requireAuth)
	g.POST("/:id/unlike", h.UnlikePost, requireAuth)
	g.POST("/:id/comment", h.CommentPost, requireAuth)
	g.POST("/:id/share", h.SharePost, requireAuth)
}

// CreatePost creates a new post from text, an image or both
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), userID, req.Content, middleware.UploadedImageURL(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post owned by the current user
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// LikePost adds the current user's like to a post
func (h *PostHandler) LikePost(c echo.Context) error {
	return h.react(c, h.posts.Like)
}

// UnlikePost removes the current user's like from a post
func (h *PostHandler) UnlikePost(c echo.Context) error {
	return h.react(c, h.posts.Unlike)
}

// SharePost increments a post's share count
func (h *PostHandler) SharePost(c echo.Context) error {
	return h.react(c, h.posts.Share)
}

// CommentPost appends a comment to a post
func (h *PostHandler) CommentPost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Comment(c.Request().Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) react(c echo.Context, apply func(ctx context.Context, userID, postID string) (*models.Post, error)) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	post, err := apply(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}
