package handlers

import (
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/feed"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the public ranked feeds
type FeedHandler struct {
	feeds *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feeds *services.FeedService) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// RegisterFeedRoutes registers the feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.feed(feed.Chronological))
	g.GET("/feed/liked", h.feed(feed.MostLiked))
	g.GET("/feed/commented", h.feed(feed.MostCommented))
	g.GET("/feed/shared", h.feed(feed.MostShared))
}

func (h *FeedHandler) feed(order feed.Order) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := feed.ParsePage(c.QueryParam("page"), c.QueryParam("limit"))
		result, err := h.feeds.Feed(c.Request().Context(), order, page)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}
