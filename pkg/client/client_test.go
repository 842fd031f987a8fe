package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories/memory"
	"github.com/anonto42/pulse-social/backend/internal/router"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/anonto42/pulse-social/backend/internal/storage"
	"github.com/anonto42/pulse-social/backend/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Storage.Driver = "local"
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Upload.MaxBytes = 1 << 20
	cfg.Telemetry.ServiceName = "pulse-social-test"

	mem := memory.NewStores()
	svc := services.NewSet(services.Repositories{
		Users:         mem.Users,
		Follows:       mem.Users,
		Posts:         mem.Posts,
		Notifications: mem.Notifications,
		Revocations:   mem.Revocations,
	}, services.NewTokenIssuer("client-test-secret", time.Hour), nil, logger)
	svc.Auth.SetHashCost(bcrypt.MinCost)

	e := router.New(router.Options{
		Config:   cfg,
		Logger:   logger,
		Services: svc,
		Images:   storage.NewLocalStore(cfg.Storage.LocalDir, ""),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func signup(t *testing.T, c *Client, username string, picture *File) *Session {
	t.Helper()
	s, err := c.Signup(context.Background(), models.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}, picture)
	require.NoError(t, err)
	require.True(t, s.Active())
	return s
}

func requireAPIError(t *testing.T, err error, status int) *APIError {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	return apiErr
}

func TestClient_EndToEnd(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	alice := signup(t, c, "alice", &File{Name: "me.png", Body: bytes.NewReader(pngHeader)})
	bob := signup(t, c, "bob", nil)

	require.True(t, strings.HasPrefix(alice.User.ProfilePicture, "/uploads/social-profiles/"))
	resp, err := srv.Client().Get(srv.URL + alice.User.ProfilePicture)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	post, err := c.CreatePost(ctx, bob, "hello pulse", nil)
	require.NoError(t, err)
	id := post.ID.Hex()
	require.NotNil(t, post.Author)
	assert.Equal(t, "bob", post.Author.Username)

	liked, err := c.Like(ctx, alice, id)
	require.NoError(t, err)
	assert.Len(t, liked.Likes, 1)

	_, err = c.Like(ctx, alice, id)
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "Post already liked", apiErr.Message)

	commented, err := c.Comment(ctx, alice, id, "nice one")
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "alice", commented.Comments[0].Username)

	shared, err := c.Share(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 1, shared.Shares)

	unread, err := c.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	notes, err := c.Notifications(ctx, bob, 1, 10)
	require.NoError(t, err)
	require.Len(t, notes.Notifications, 2)
	require.NoError(t, c.MarkNotificationRead(ctx, bob, notes.Notifications[0].ID))
	unread, err = c.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	require.NoError(t, c.MarkAllNotificationsRead(ctx, bob))

	require.NoError(t, c.Follow(ctx, alice, bob.User.ID.Hex()))
	profile, err := c.Profile(ctx, bob.User.ID.Hex())
	require.NoError(t, err)
	require.Len(t, profile.User.Followers, 1)
	assert.Equal(t, "alice", profile.User.Followers[0].Username)
	assert.Len(t, profile.Posts, 1)

	err = c.DeletePost(ctx, alice, id)
	requireAPIError(t, err, http.StatusForbidden)

	found, err := c.Search(ctx, "HELLO")
	require.NoError(t, err)
	assert.Len(t, found.Posts, 1)

	page, err := c.Feed(ctx, "liked", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalPosts)

	updated, err := c.UpdateProfile(ctx, alice, models.UpdateProfileRequest{Bio: "climber"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "climber", updated.Bio)
	assert.Equal(t, "alice", alice.User.Username)

	require.NoError(t, c.DeletePost(ctx, bob, id))
	_, err = c.GetPost(ctx, id)
	requireAPIError(t, err, http.StatusNotFound)
}

func TestClient_LogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	signup(t, c, "carol", nil)
	s, err := c.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)
	stale := *s

	require.NoError(t, c.Logout(ctx, s))
	assert.False(t, s.Active())

	_, err = c.CreatePost(ctx, s, "after logout", nil)
	assert.Equal(t, ErrNoSession, err)

	_, err = c.CreatePost(ctx, &stale, "after logout", nil)
	apiErr := requireAPIError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Token has been revoked", apiErr.Message)
}

func TestClient_RejectsBadCredentialsAndUploads(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	s := signup(t, c, "dave", nil)

	_, err := c.Login(ctx, "dave@example.com", "wrong-password")
	apiErr := requireAPIError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	_, err = c.CreatePost(ctx, s, "", &File{Name: "notes.txt", Body: strings.NewReader("just text")})
	apiErr = requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "Not an image! Please upload an image file.", apiErr.Message)

	_, err = c.CreatePost(ctx, s, "", nil)
	apiErr = requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "Post must contain either text or image", apiErr.Message)

	_, err = c.Search(ctx, "   ")
	apiErr = requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "Search query is required", apiErr.Message)
}
