package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/feed"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_MostLikedBreaksTiesByNewest(t *testing.T) {
	env := newTestEnv(t)
	env.stepClock()
	ctx := context.Background()
	author := env.signup(t, "author")

	likers := make([]models.UserView, 5)
	for i := range likers {
		likers[i] = env.signup(t, fmt.Sprintf("liker%d", i))
	}

	var posts []*models.Post
	for i, likes := range []int{5, 5, 2} {
		p, err := env.post.Create(ctx, author.ID.Hex(), fmt.Sprintf("post%d", i+1), "")
		require.NoError(t, err)
		for _, l := range likers[:likes] {
			_, err := env.post.Like(ctx, l.ID.Hex(), p.ID.Hex())
			require.NoError(t, err)
		}
		posts = append(posts, p)
	}

	page, err := env.feed.Feed(ctx, feed.MostLiked, feed.ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)
	assert.Equal(t, posts[1].ID, page.Posts[0].ID)
	assert.Equal(t, posts[0].ID, page.Posts[1].ID)
	assert.Equal(t, posts[2].ID, page.Posts[2].ID)
	require.NotNil(t, page.Posts[0].Author)
	assert.Equal(t, "author", page.Posts[0].Author.Username)
}

func TestFeedService_Pagination(t *testing.T) {
	env := newTestEnv(t)
	env.stepClock()
	ctx := context.Background()
	author := env.signup(t, "author")
	for i := 0; i < 25; i++ {
		_, err := env.post.Create(ctx, author.ID.Hex(), fmt.Sprintf("post %d", i), "")
		require.NoError(t, err)
	}

	first, err := env.feed.Feed(ctx, feed.Chronological, feed.ParsePage("1", "20"))
	require.NoError(t, err)
	assert.Len(t, first.Posts, 20)
	assert.Equal(t, 1, first.CurrentPage)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, int64(25), first.TotalPosts)
	assert.Equal(t, "post 24", first.Posts[0].Content)

	second, err := env.feed.Feed(ctx, feed.Chronological, feed.ParsePage("2", "20"))
	require.NoError(t, err)
	assert.Len(t, second.Posts, 5)
	assert.Equal(t, 2, second.CurrentPage)
	assert.Equal(t, "post 0", second.Posts[4].Content)

	beyond, err := env.feed.Feed(ctx, feed.MostShared, feed.ParsePage("9", "20"))
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.Equal(t, int64(25), beyond.TotalPosts)
}

func TestFeedService_UnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.feed.Feed(context.Background(), feed.Order("hot"), feed.ParsePage("", ""))
	assertKind(t, err, apperror.KindValidation)
}

func TestFeedService_Search(t *testing.T) {
	env := newTestEnv(t)
	env.stepClock()
	ctx := context.Background()
	alice := env.signup(t, "alice")
	env.signup(t, "bob")
	_, err := env.graph.UpdateProfile(ctx, alice.ID.Hex(), models.UpdateProfileRequest{Bio: "Gopher at heart"}, "")
	require.NoError(t, err)

	older, err := env.post.Create(ctx, alice.ID.Hex(), "learning GO today", "")
	require.NoError(t, err)
	newer, err := env.post.Create(ctx, alice.ID.Hex(), "more go (gopher) tips", "")
	require.NoError(t, err)
	_, err = env.post.Create(ctx, alice.ID.Hex(), "unrelated", "")
	require.NoError(t, err)

	result, err := env.feed.Search(ctx, "go")
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	assert.Equal(t, "alice", result.Users[0].Username)
	assert.Empty(t, result.Users[0].Email)
	require.Len(t, result.Posts, 2)
	assert.Equal(t, newer.ID, result.Posts[0].ID)
	assert.Equal(t, older.ID, result.Posts[1].ID)

	result, err = env.feed.Search(ctx, "(gopher)")
	require.NoError(t, err)
	assert.Len(t, result.Posts, 1)

	result, err = env.feed.Search(ctx, "zebra")
	require.NoError(t, err)
	assert.NotNil(t, result.Users)
	assert.NotNil(t, result.Posts)
	assert.Empty(t, result.Users)
	assert.Empty(t, result.Posts)

	_, err = env.feed.Search(ctx, "   ")
	assertKind(t, err, apperror.KindValidation)
	_, err = env.feed.Search(ctx, "")
	assertKind(t, err, apperror.KindValidation)
}
