package handlers

import (
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow and unfollow requests
type FollowHandler struct {
	graph *services.GraphService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.GraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow routes. Both require authentication.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/follow/:id", h.Follow, requireAuth)
	g.POST("/unfollow/:id", h.Unfollow, requireAuth)
}

// Follow makes the current user follow the user in the path
func (h *FollowHandler) Follow(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.graph.Follow(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User followed successfully"})
}

// Unfollow removes the follow relation to the user in the path
func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.graph.Unfollow(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
}
