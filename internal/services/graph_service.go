package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
)

// GraphService manages profiles and the follow graph
type GraphService struct {
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	posts         repositories.PostRepository
	notifications *NotificationService
	auth          *AuthService
}

func NewGraphService(users repositories.UserRepository, follows repositories.FollowRepository, posts repositories.PostRepository, notifications *NotificationService, auth *AuthService) *GraphService {
	return &GraphService{
		users:         users,
		follows:       follows,
		posts:         posts,
		notifications: notifications,
		auth:          auth,
	}
}

// Follow makes actor follow target. Self-follow is rejected before any lookup.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID string) (err error) {
	ctx, span := startSpan(ctx, "GraphService.Follow", attribute.String("target.id", targetID))
	defer func() { endSpan(span, err) }()

	if actorID == targetID {
		return apperror.InvalidOperation("You cannot follow yourself")
	}
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}
	target, err := s.lookup(ctx, targetID)
	if err != nil {
		return err
	}
	if actor.ID == target.ID {
		return apperror.InvalidOperation("You cannot follow yourself")
	}

	if err := s.follows.Follow(ctx, actor.ID, target.ID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return apperror.AlreadyExists("Already following this user")
		case errors.Is(err, repositories.ErrNotFound):
			return apperror.NotFound(msgUserNotFound)
		default:
			return apperror.Unexpected(err)
		}
	}

	s.notifications.Notify(ctx, models.Notification{
		Type:          models.NotificationFollow,
		ActorID:       actor.ID.Hex(),
		ActorUsername: actor.Username,
		RecipientID:   target.ID.Hex(),
		Message:       actor.Username + " started following you",
	})
	return nil
}

// Unfollow removes actor from target's followers and target from actor's following
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID string) (err error) {
	ctx, span := startSpan(ctx, "GraphService.Unfollow", attribute.String("target.id", targetID))
	defer func() { endSpan(span, err) }()

	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}
	target, err := s.lookup(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.follows.Unfollow(ctx, actor.ID, target.ID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return apperror.InvalidOperation("You are not following this user")
		case errors.Is(err, repositories.ErrNotFound):
			return apperror.NotFound(msgUserNotFound)
		default:
			return apperror.Unexpected(err)
		}
	}
	return nil
}

func (s *GraphService) lookup(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, msgUserNotFound)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}
	return user, nil
}

// GetProfile returns the user with both relationship sets populated and
// the user's posts newest first.
func (s *GraphService) GetProfile(ctx context.Context, userID string) (profile *models.Profile, err error) {
	ctx, span := startSpan(ctx, "GraphService.GetProfile", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	related, err := s.users.GetCompactUsers(ctx, append(append([]primitive.ObjectID{}, user.Followers...), user.Following...))
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	pick := func(ids []primitive.ObjectID) []models.UserCompact {
		out := make([]models.UserCompact, 0, len(ids))
		for _, id := range ids {
			if u, ok := related[id]; ok {
				out = append(out, u)
			}
		}
		return out
	}

	posts, err := s.posts.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	if err := populateAuthors(ctx, s.users, posts); err != nil {
		return nil, apperror.Unexpected(err)
	}

	return &models.Profile{
		User: models.ProfileUser{
			UserView:  user.ToView(),
			Followers: pick(user.Followers),
			Following: pick(user.Following),
		},
		Posts: posts,
	}, nil
}

// UpdateProfile applies the non-empty fields of req. profilePicture is the
// URL of a newly stored image or empty.
func (s *GraphService) UpdateProfile(ctx context.Context, actorID string, req models.UpdateProfileRequest, profilePicture string) (view *models.UserView, err error) {
	ctx, span := startSpan(ctx, "GraphService.UpdateProfile")
	defer func() { endSpan(span, err) }()

	user, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		if err := s.ensureFree(ctx, s.users.GetUserByUsername, username, user.ID, "Username is already taken"); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if email := normalizeEmail(req.Email); email != "" && email != user.Email {
		if err := s.ensureFree(ctx, s.users.GetUserByEmail, email, user.ID, "Email is already in use"); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if bio := strings.TrimSpace(req.Bio); bio != "" {
		user.Bio = bio
	}
	if profilePicture != "" {
		user.ProfilePicture = profilePicture
	}
	if req.Password != "" {
		hash, err := s.auth.hashPassword(req.Password)
		if err != nil {
			return nil, apperror.Unexpected(err)
		}
		user.Password = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, apperror.AlreadyExists("Username or email is already in use")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperror.NotFound(msgUserNotFound)
		default:
			return nil, apperror.Unexpected(err)
		}
	}

	v := user.ToView()
	return &v, nil
}

func (s *GraphService) ensureFree(ctx context.Context, find func(context.Context, string) (*models.User, error), value string, self primitive.ObjectID, msg string) error {
	other, err := find(ctx, value)
	if err == nil && other.ID != self {
		return apperror.AlreadyExists(msg)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return apperror.Unexpected(err)
	}
	return nil
}
