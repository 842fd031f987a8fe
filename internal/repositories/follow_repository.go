package repositories

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FollowRepository maintains the follower/following sets of two users.
// Follow and Unfollow either apply both sides or leave both unchanged.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, followingID primitive.ObjectID) error
}

// MongoFollowRepository implements FollowRepository on the users collection
type MongoFollowRepository struct {
	client       *mongo.Client
	collection   *mongo.Collection
	transactions bool
	logger       *logrus.Logger
}

// NewMongoFollowRepository creates a new MongoFollowRepository. With
// transactions enabled (replica set or sharded cluster required) both writes
// run in one multi-document transaction; otherwise a failed second write is
// compensated by reverting the first.
func NewMongoFollowRepository(client *mongo.Client, db *mongo.Database, transactions bool, logger *logrus.Logger) *MongoFollowRepository {
	return &MongoFollowRepository{
		client:       client,
		collection:   db.Collection("users"),
		transactions: transactions,
		logger:       logger,
	}
}

// Follow adds followingID to follower's following set and followerID to the
// target's followers set. ErrConflict means the follower already follows.
func (r *MongoFollowRepository) Follow(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	forward := func(ctx context.Context) error {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": followerID, "following": bson.M{"$ne": followingID}},
			bson.M{"$addToSet": bson.M{"following": followingID}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrConflict
		}
		return nil
	}
	reverse := func(ctx context.Context) error {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": followingID},
			bson.M{"$addToSet": bson.M{"followers": followerID}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	}
	undo := func(ctx context.Context) error {
		_, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": followerID},
			bson.M{"$pull": bson.M{"following": followingID}},
		)
		return err
	}
	return r.apply(ctx, "follow", forward, reverse, undo)
}

// Unfollow removes both reciprocal entries. ErrConflict means the follower
// was not following.
func (r *MongoFollowRepository) Unfollow(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	forward := func(ctx context.Context) error {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": followerID, "following": followingID},
			bson.M{"$pull": bson.M{"following": followingID}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrConflict
		}
		return nil
	}
	reverse := func(ctx context.Context) error {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": followingID},
			bson.M{"$pull": bson.M{"followers": followerID}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	}
	undo := func(ctx context.Context) error {
		_, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": followerID},
			bson.M{"$addToSet": bson.M{"following": followingID}},
		)
		return err
	}
	return r.apply(ctx, "unfollow", forward, reverse, undo)
}

func (r *MongoFollowRepository) apply(ctx context.Context, op string, forward, reverse, undo func(context.Context) error) error {
	if r.transactions {
		session, err := r.client.StartSession()
		if err != nil {
			return fmt.Errorf("%s: start session: %w", op, err)
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			if err := forward(sc); err != nil {
				return nil, err
			}
			return nil, reverse(sc)
		})
		return err
	}

	if err := forward(ctx); err != nil {
		return err
	}
	if err := reverse(ctx); err != nil {
		if undoErr := undo(ctx); undoErr != nil {
			r.logger.WithFields(logrus.Fields{"op": op, "error": undoErr}).Error("follow graph left asymmetric")
		}
		return err
	}
	return nil
}
