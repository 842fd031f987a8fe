package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MaxPostLength    = 2000
	MaxCommentLength = 500
)

// PostService implements the post lifecycle and the reactions on posts
type PostService struct {
	posts         repositories.PostRepository
	users         repositories.UserRepository
	notifications *NotificationService
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, notifications *NotificationService) *PostService {
	return &PostService{posts: posts, users: users, notifications: notifications}
}

// Create stores a post with content, image or both. image is the URL of an
// already stored image or empty.
func (s *PostService) Create(ctx context.Context, actorID, content, image string) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Create")
	defer func() { endSpan(span, err) }()

	content = strings.TrimSpace(content)
	image = strings.TrimSpace(image)
	if content == "" && image == "" {
		return nil, apperror.Validation("Post must contain either text or image")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return nil, apperror.Validation("Post content is too long")
	}

	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}

	post = &models.Post{UserID: actor.ID, Content: content, Image: image}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperror.Unexpected(err)
	}
	author := actor.ToCompact()
	post.Author = &author
	return post, nil
}

// Get returns one post with its author
func (s *PostService) Get(ctx context.Context, postID string) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Get", attribute.String("post.id", postID))
	defer func() { endSpan(span, err) }()

	oid, err := parseID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	post, err = s.posts.GetPostByID(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound)
	}
	return s.populated(ctx, post)
}

// Delete removes a post owned by actor
func (s *PostService) Delete(ctx context.Context, actorID, postID string) (err error) {
	ctx, span := startSpan(ctx, "PostService.Delete", attribute.String("post.id", postID))
	defer func() { endSpan(span, err) }()

	oid, err := parseID(postID, msgPostNotFound)
	if err != nil {
		return err
	}
	post, err := s.posts.GetPostByID(ctx, oid)
	if err != nil {
		return notFoundOr(err, msgPostNotFound)
	}
	if post.UserID.Hex() != actorID {
		return apperror.Forbidden("Not authorized to delete this post")
	}
	if err := s.posts.DeletePost(ctx, oid); err != nil {
		return notFoundOr(err, msgPostNotFound)
	}
	return nil
}

// Like adds actor's like. Liking twice fails with AlreadyExists.
func (s *PostService) Like(ctx context.Context, actorID, postID string) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Like", attribute.String("post.id", postID))
	defer func() { endSpan(span, err) }()

	actor, oid, err := s.prepare(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	post, err = s.posts.AddLike(ctx, oid, models.Like{UserID: actor.ID, Username: actor.Username})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, apperror.AlreadyExists("Post already liked")
		}
		return nil, notFoundOr(err, msgPostNotFound)
	}

	s.notifications.Notify(ctx, models.Notification{
		Type:          models.NotificationLike,
		ActorID:       actor.ID.Hex(),
		ActorUsername: actor.Username,
		RecipientID:   post.UserID.Hex(),
		PostID:        post.ID.Hex(),
		Message:       actor.Username + " liked your post",
	})
	return s.populated(ctx, post)
}

// Unlike removes actor's like. Unliking a post not liked fails with InvalidOperation.
func (s *PostService) Unlike(ctx context.Context, actorID, postID string) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Unlike", attribute.String("post.id", postID))
	defer func() { endSpan(span, err) }()

	actor, oid, err := s.prepare(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	post, err = s.posts.RemoveLike(ctx, oid, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, apperror.InvalidOperation("Post not liked yet")
		}
		return nil, notFoundOr(err, msgPostNotFound)
	}
	return s.populated(ctx, post)
}

// Comment appends a comment by actor to the end of the thread
func (s *PostService) Comment(ctx context.Context, actorID, postID, text string) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Comment", attribute.String("post.id", postID))
	defer func() { endSpan(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("Comment text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, apperror.Validation("Comment is too long")
	}

	actor, oid, err := s.prepare(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	post, err = s.posts.AddComment(ctx, oid, models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actor.ID,
		Username:  actor.Username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound)
	}

	s.notifications.Notify(ctx, models.Notification{
		Type:          models.NotificationComment,
		ActorID:       actor.ID.Hex(),
		ActorUsername: actor.Username,
		RecipientID:   post.UserID.Hex(),
		PostID:        post.ID.Hex(),
		Message:       actor.Username + " commented on your post",
	})
	return s.populated(ctx, post)
}

// Share counts one more share. Every call counts.
func (s *PostService) Share(ctx context.Context, actorID, postID string) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Share", attribute.String("post.id", postID))
	defer func() { endSpan(span, err) }()

	if _, err := parseActor(actorID); err != nil {
		return nil, err
	}
	oid, err := parseID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	post, err = s.posts.IncrementShares(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound)
	}
	return s.populated(ctx, post)
}

func (s *PostService) prepare(ctx context.Context, actorID, postID string) (*models.User, primitive.ObjectID, error) {
	oid, err := parseID(postID, msgPostNotFound)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	return actor, oid, nil
}

func (s *PostService) populated(ctx context.Context, post *models.Post) (*models.Post, error) {
	posts := []models.Post{*post}
	if err := populateAuthors(ctx, s.users, posts); err != nil {
		return nil, apperror.Unexpected(err)
	}
	return &posts[0], nil
}
