package services

import (
	"context"
	"testing"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGraphService_FollowIsReciprocal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	require.NoError(t, env.graph.Follow(ctx, alice.ID.Hex(), bob.ID.Hex()))

	bobProfile, err := env.graph.GetProfile(ctx, bob.ID.Hex())
	require.NoError(t, err)
	require.Len(t, bobProfile.User.Followers, 1)
	assert.Equal(t, alice.ID, bobProfile.User.Followers[0].ID)
	assert.Equal(t, "alice", bobProfile.User.Followers[0].Username)
	assert.Equal(t, 1, bobProfile.User.FollowersCount)

	aliceProfile, err := env.graph.GetProfile(ctx, alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, aliceProfile.User.Following, 1)
	assert.Equal(t, bob.ID, aliceProfile.User.Following[0].ID)
	assert.Equal(t, 1, aliceProfile.User.FollowingCount)

	err = env.graph.Follow(ctx, alice.ID.Hex(), bob.ID.Hex())
	assertKind(t, err, apperror.KindAlreadyExists)

	require.NoError(t, env.graph.Unfollow(ctx, alice.ID.Hex(), bob.ID.Hex()))

	bobProfile, err = env.graph.GetProfile(ctx, bob.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, bobProfile.User.Followers)
	aliceProfile, err = env.graph.GetProfile(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, aliceProfile.User.Following)

	err = env.graph.Unfollow(ctx, alice.ID.Hex(), bob.ID.Hex())
	assertKind(t, err, apperror.KindInvalidOperation)
}

func TestGraphService_SelfFollowNeverMutates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice")

	err := env.graph.Follow(ctx, alice.ID.Hex(), alice.ID.Hex())
	assertKind(t, err, apperror.KindInvalidOperation)

	stored, err := env.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Followers)
	assert.Empty(t, stored.Following)
}

func TestGraphService_UnknownTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice")

	assertKind(t, env.graph.Follow(ctx, alice.ID.Hex(), primitive.NewObjectID().Hex()), apperror.KindNotFound)
	assertKind(t, env.graph.Follow(ctx, alice.ID.Hex(), "not-an-id"), apperror.KindNotFound)
	assertKind(t, env.graph.Unfollow(ctx, alice.ID.Hex(), primitive.NewObjectID().Hex()), apperror.KindNotFound)

	_, err := env.graph.GetProfile(ctx, "zzz")
	assertKind(t, err, apperror.KindNotFound)
	_, err = env.graph.GetProfile(ctx, primitive.NewObjectID().Hex())
	assertKind(t, err, apperror.KindNotFound)
}

func TestGraphService_FollowNotifiesTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	require.NoError(t, env.graph.Follow(ctx, alice.ID.Hex(), bob.ID.Hex()))

	items, total, err := env.notifications.GetByRecipientID(ctx, bob.ID.Hex(), 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, models.NotificationFollow, items[0].Type)
	assert.Equal(t, "alice started following you", items[0].Message)
}

func TestGraphService_ProfileListsPostsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.stepClock()
	ctx := context.Background()
	alice := env.signup(t, "alice")

	first, err := env.post.Create(ctx, alice.ID.Hex(), "first", "")
	require.NoError(t, err)
	second, err := env.post.Create(ctx, alice.ID.Hex(), "second", "")
	require.NoError(t, err)

	profile, err := env.graph.GetProfile(ctx, alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, second.ID, profile.Posts[0].ID)
	assert.Equal(t, first.ID, profile.Posts[1].ID)
	require.NotNil(t, profile.Posts[0].Author)
	assert.Equal(t, "alice", profile.Posts[0].Author.Username)
}

func TestGraphService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice")
	env.signup(t, "bob")

	view, err := env.graph.UpdateProfile(ctx, alice.ID.Hex(), models.UpdateProfileRequest{Bio: "hello there"}, "https://cdn.example.com/p.png")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, "hello there", view.Bio)
	assert.Equal(t, "https://cdn.example.com/p.png", view.ProfilePicture)

	_, err = env.graph.UpdateProfile(ctx, alice.ID.Hex(), models.UpdateProfileRequest{Username: "bob"}, "")
	assertKind(t, err, apperror.KindAlreadyExists)

	_, err = env.graph.UpdateProfile(ctx, alice.ID.Hex(), models.UpdateProfileRequest{Password: "newpassword"}, "")
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "newpassword"})
	assert.NoError(t, err)

	view, err = env.graph.UpdateProfile(ctx, alice.ID.Hex(), models.UpdateProfileRequest{Username: "alicia"}, "")
	require.NoError(t, err)
	assert.Equal(t, "alicia", view.Username)
	assert.Equal(t, "hello there", view.Bio)
}
