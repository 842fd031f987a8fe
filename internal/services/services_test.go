package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	users         *memory.UserRepository
	posts         *memory.PostRepository
	notifications *memory.NotificationRepository
	revocations   *memory.TokenRevocationRepository

	auth   *AuthService
	graph  *GraphService
	post   *PostService
	feed   *FeedService
	notify *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		users:         memory.NewUserRepository(),
		posts:         memory.NewPostRepository(),
		notifications: memory.NewNotificationRepository(),
		revocations:   memory.NewTokenRevocationRepository(),
	}
	set := NewSet(Repositories{
		Users:         env.users,
		Follows:       env.users,
		Posts:         env.posts,
		Notifications: env.notifications,
		Revocations:   env.revocations,
	}, NewTokenIssuer("test-secret", time.Hour), nil, logger)
	set.Auth.SetHashCost(bcrypt.MinCost)

	env.auth, env.graph, env.post, env.feed, env.notify = set.Auth, set.Graph, set.Posts, set.Feeds, set.Notifications
	return env
}

func (e *testEnv) signup(t *testing.T, username string) models.UserView {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), models.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}, "")
	require.NoError(t, err)
	return resp.User
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

// stepClock makes consecutive posts one minute apart
func (e *testEnv) stepClock() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	e.posts.Now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
}
