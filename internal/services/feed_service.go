package services

import (
	"context"
	"strings"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/feed"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"go.opentelemetry.io/otel/attribute"
)

const (
	searchUserLimit = 10
	searchPostLimit = 20
)

// FeedService serves the ranked feeds and search
type FeedService struct {
	posts repositories.PostRepository
	users repositories.UserRepository
}

func NewFeedService(posts repositories.PostRepository, users repositories.UserRepository) *FeedService {
	return &FeedService{posts: posts, users: users}
}

// Feed returns one page of posts in the given order. totalPosts counts the
// whole collection.
func (s *FeedService) Feed(ctx context.Context, order feed.Order, page feed.Page) (result *models.FeedPage, err error) {
	ctx, span := startSpan(ctx, "FeedService.Feed",
		attribute.String("feed.order", string(order)),
		attribute.Int("feed.page", page.Number),
		attribute.Int("feed.limit", page.Limit),
	)
	defer func() { endSpan(span, err) }()

	if !order.Valid() {
		return nil, apperror.Validation("Unknown feed order")
	}
	posts, err := s.posts.RankedPosts(ctx, order, page.Skip(), int64(page.Limit))
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	total, err := s.posts.CountPosts(ctx)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	if err := populateAuthors(ctx, s.users, posts); err != nil {
		return nil, apperror.Unexpected(err)
	}

	return &models.FeedPage{
		Posts:       posts,
		CurrentPage: page.Number,
		TotalPages:  feed.TotalPages(total, page.Limit),
		TotalPosts:  total,
	}, nil
}

// Search matches users by username or bio and posts by content, ignoring case
func (s *FeedService) Search(ctx context.Context, query string) (result *models.SearchResult, err error) {
	ctx, span := startSpan(ctx, "FeedService.Search")
	defer func() { endSpan(span, err) }()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Search query is required")
	}

	users, err := s.users.SearchUsers(ctx, query, searchUserLimit)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	posts, err := s.posts.SearchPosts(ctx, query, searchPostLimit)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	if err := populateAuthors(ctx, s.users, posts); err != nil {
		return nil, apperror.Unexpected(err)
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].ToPublicView())
	}
	return &models.SearchResult{Users: views, Posts: posts}, nil
}
