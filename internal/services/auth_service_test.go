package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Signup(ctx, models.SignupRequest{
		Username: " alice ",
		Email:    "Alice@Example.com",
		Password: "password123",
	}, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "https://cdn.example.com/a.png", resp.User.ProfilePicture)

	stored, err := env.users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password)

	login, err := env.auth.Login(ctx, models.LoginRequest{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = env.auth.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assertKind(t, err, apperror.KindAuth)

	_, err = env.auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assertKind(t, err, apperror.KindAuth)
}

func TestAuthService_SignupDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, models.SignupRequest{Username: "other", Email: "alice@example.com", Password: "password123"}, "")
	assertKind(t, err, apperror.KindAlreadyExists)

	_, err = env.auth.Signup(ctx, models.SignupRequest{Username: "alice", Email: "new@example.com", Password: "password123"}, "")
	assertKind(t, err, apperror.KindAlreadyExists)
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp, err := env.auth.Signup(ctx, models.SignupRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}, "")
	require.NoError(t, err)

	claims, err := env.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.Hex(), claims.UserID)
	assert.NotEmpty(t, claims.ID)

	require.NoError(t, env.auth.Logout(ctx, claims))

	_, err = env.auth.Authenticate(ctx, resp.Token)
	assertKind(t, err, apperror.KindAuth)

	_, err = env.auth.Authenticate(ctx, "not-a-token")
	assertKind(t, err, apperror.KindAuth)
}

func TestTokenIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	user := &models.User{Username: "alice"}

	other := NewTokenIssuer("other-secret", time.Hour)
	foreign, err := other.Issue(user)
	require.NoError(t, err)

	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err = issuer.Parse(foreign)
	assertKind(t, err, apperror.KindAuth)

	expired := NewTokenIssuer("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	require.Error(t, err)
	assert.Equal(t, "Token expired", err.Error())
}

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid id token")
}

func TestAuthService_FirebaseLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"new":    {UID: "uid-new", Claims: map[string]interface{}{"email": "Carol@example.com", "name": "Carol Q"}},
		"linked": {UID: "uid-alice", Claims: map[string]interface{}{"email": "alice@example.com"}},
		"nomail": {UID: "uid-x", Claims: map[string]interface{}{}},
	}}
	svc := NewAuthService(env.users, NewTokenIssuer("test-secret", time.Hour), env.revocations, verifier, logger)
	svc.SetHashCost(bcrypt.MinCost)

	alice := env.signup(t, "alice")

	linked, err := svc.FirebaseLogin(ctx, "linked")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, linked.User.ID)
	byUID, err := env.users.GetUserByFirebaseUID(ctx, "uid-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byUID.ID)

	created, err := svc.FirebaseLogin(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "carolq", created.User.Username)
	assert.Equal(t, "carol@example.com", created.User.Email)

	again, err := svc.FirebaseLogin(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, again.User.ID)

	_, err = svc.FirebaseLogin(ctx, "nomail")
	assertKind(t, err, apperror.KindAuth)

	_, err = svc.FirebaseLogin(ctx, "bogus")
	assertKind(t, err, apperror.KindAuth)

	_, err = env.auth.FirebaseLogin(ctx, "new")
	assertKind(t, err, apperror.KindInvalidOperation)
}
