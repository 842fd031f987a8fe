// Package services holds the application operations behind the REST
// handlers. Services speak in apperror kinds; repositories speak in
// sentinel errors.
package services

import (
	"context"
	"errors"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgUserNotFound = "User not found"
	msgPostNotFound = "Post not found"
)

var tracer = otel.Tracer("github.com/anonto42/pulse-social/backend/internal/services")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span before ending it. Client errors are not span errors.
func endSpan(span trace.Span, err error) {
	if err != nil {
		kind := apperror.KindOf(err)
		span.SetAttributes(attribute.String("error.kind", kind.String()))
		if kind == apperror.KindUnexpected {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

// parseID turns a path id into an ObjectID. Malformed ids cannot name an
// existing document, so they fail with notFoundMsg.
func parseID(id, notFoundMsg string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(notFoundMsg)
	}
	return oid, nil
}

// parseActor turns the user id of a verified token into an ObjectID
func parseActor(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.Auth("Invalid token")
	}
	return oid, nil
}

// notFoundOr maps repositories.ErrNotFound to a NotFound error with msg and
// anything else to Unexpected.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound(msg)
	}
	return apperror.Unexpected(err)
}

// loadActor fetches the authenticated user. A valid token for a user that no
// longer resolves is an auth failure.
func loadActor(ctx context.Context, users repositories.UserRepository, actorID string) (*models.User, error) {
	oid, err := parseActor(actorID)
	if err != nil {
		return nil, err
	}
	user, err := users.GetUserByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.Auth(msgUserNotFound)
		}
		return nil, apperror.Unexpected(err)
	}
	return user, nil
}

// populateAuthors joins the author projection into every post
func populateAuthors(ctx context.Context, users repositories.UserRepository, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	seen := make(map[primitive.ObjectID]struct{}, len(posts))
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			ids = append(ids, p.UserID)
		}
	}
	authors, err := users.GetCompactUsers(ctx, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		if a, ok := authors[posts[i].UserID]; ok {
			author := a
			posts[i].Author = &author
		} else {
			posts[i].Author = &models.UserCompact{ID: posts[i].UserID}
		}
	}
	return nil
}
