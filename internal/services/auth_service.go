package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService registers users and manages their bearer tokens
type AuthService struct {
	users       repositories.UserRepository
	tokens      *TokenIssuer
	revocations repositories.TokenRevocationRepository
	firebase    IDTokenVerifier
	logger      *logrus.Logger
	hashCost    int
}

// NewAuthService creates an AuthService. firebase may be nil, which disables
// Firebase login.
func NewAuthService(users repositories.UserRepository, tokens *TokenIssuer, revocations repositories.TokenRevocationRepository, firebase IDTokenVerifier, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		firebase:    firebase,
		logger:      logger,
		hashCost:    bcrypt.DefaultCost,
	}
}

// SetHashCost overrides the bcrypt cost. Tests lower it.
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a local user. profilePicture is the URL of an already
// stored image or empty.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest, profilePicture string) (resp *models.AuthResponse, err error) {
	ctx, span := startSpan(ctx, "AuthService.Signup")
	defer func() { endSpan(span, err) }()

	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, apperror.Validation("Username, email and password are required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.AlreadyExists("User already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.Unexpected(err)
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.AlreadyExists("Username is already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.Unexpected(err)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		Password:       hash,
		ProfilePicture: profilePicture,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperror.AlreadyExists("User already exists")
		}
		return nil, apperror.Unexpected(err)
	}
	s.logger.WithField("user_id", user.ID.Hex()).Info("user signed up")

	return s.respond(user)
}

// Login checks email and password
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (resp *models.AuthResponse, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.Auth("Invalid credentials")
		}
		return nil, apperror.Unexpected(err)
	}
	if user.Password == "" {
		return nil, apperror.Auth("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Auth("Invalid credentials")
	}
	return s.respond(user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token. Users are
// matched by Firebase UID, then by email (linking the UID), and created
// otherwise.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (resp *models.AuthResponse, err error) {
	ctx, span := startSpan(ctx, "AuthService.FirebaseLogin")
	defer func() { endSpan(span, err) }()

	if s.firebase == nil {
		return nil, apperror.InvalidOperation("Firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperror.Auth("Invalid Firebase ID token")
	}
	span.SetAttributes(attribute.String("firebase.uid", token.UID))

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return s.respond(user)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.Unexpected(err)
	}

	email, _ := token.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.Auth("Firebase account has no email address")
	}

	user, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = token.UID
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, apperror.Unexpected(err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		name, _ := token.Claims["name"].(string)
		picture, _ := token.Claims["picture"].(string)
		username, err := s.freeUsername(ctx, name, email)
		if err != nil {
			return nil, apperror.Unexpected(err)
		}
		user = &models.User{
			Username:       username,
			Email:          email,
			ProfilePicture: picture,
			FirebaseUID:    token.UID,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, apperror.AlreadyExists("User already exists")
			}
			return nil, apperror.Unexpected(err)
		}
		s.logger.WithField("user_id", user.ID.Hex()).Info("user signed up with firebase")
	default:
		return nil, apperror.Unexpected(err)
	}
	return s.respond(user)
}

var usernameChars = regexp.MustCompile(`[^a-z0-9_]+`)

// freeUsername derives an unused username from a display name or email
func (s *AuthService) freeUsername(ctx context.Context, name, email string) (string, error) {
	base := usernameChars.ReplaceAllString(strings.ToLower(name), "")
	if len(base) < 3 {
		base = usernameChars.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	}
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 1; i <= 50; i++ {
		_, err := s.users.GetUserByUsername(ctx, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("no free username for %q", base)
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Unexpected(fmt.Errorf("issue token: %w", err))
	}
	return &models.AuthResponse{Token: token, User: user.ToView()}, nil
}

// Authenticate verifies a bearer token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.JwtCustomClaims, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperror.Unexpected(fmt.Errorf("check revocation: %w", err))
		}
		if revoked {
			return nil, apperror.Auth("Token has been revoked")
		}
	}
	return claims, nil
}

// Logout revokes the token described by claims until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *models.JwtCustomClaims) (err error) {
	ctx, span := startSpan(ctx, "AuthService.Logout")
	defer func() { endSpan(span, err) }()

	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return apperror.Auth("Invalid token")
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperror.Unexpected(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}
