package handlers

import (
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/middleware"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and search requests
type UserHandler struct {
	graph *services.GraphService
	feeds *services.FeedService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(graph *services.GraphService, feeds *services.FeedService) *UserHandler {
	return &UserHandler{graph: graph, feeds: feeds}
}

// RegisterProfileRoutes registers the profile and search routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, requireAuth, profileUpload echo.MiddlewareFunc) {
	g.GET("/profile/:id", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile, requireAuth, profileUpload)
	g.GET("/search", h.Search)
}

// GetProfile returns a user with followers, following and posts
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.graph.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile edits the current user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.graph.UpdateProfile(c.Request().Context(), userID, req, middleware.UploadedImageURL(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Search finds users and posts matching the q parameter
func (h *UserHandler) Search(c echo.Context) error {
	result, err := h.feeds.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
