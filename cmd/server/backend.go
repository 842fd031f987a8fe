package main

import (
	"context"
	"fmt"

	"github.com/anonto42/pulse-social/backend/internal/handlers"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"github.com/anonto42/pulse-social/backend/internal/repositories/memory"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/anonto42/pulse-social/backend/internal/storage"
	"github.com/anonto42/pulse-social/backend/pkg/config"
	"github.com/anonto42/pulse-social/backend/pkg/firebase"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// backend is the set of open stores for one process
type backend struct {
	db     *config.DB
	repos  services.Repositories
	checks map[string]handlers.Check
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*backend, error) {
	db, err := config.InitDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	b := &backend{db: db, checks: map[string]handlers.Check{}}
	mem := memory.NewStores()

	if db.Database != nil {
		b.repos.Users = repositories.NewMongoUserRepository(db.Database)
		b.repos.Follows = repositories.NewMongoFollowRepository(db.Mongo, db.Database, cfg.Mongo.Transactions, logger)
		b.repos.Posts = repositories.NewMongoPostRepository(db.Database)
		b.checks["mongo"] = func(ctx context.Context) error {
			return db.Mongo.Ping(ctx, readpref.Primary())
		}
	} else {
		logger.Warn("using the in-memory store, data is lost on exit")
		b.repos.Users, b.repos.Follows, b.repos.Posts = mem.Users, mem.Users, mem.Posts
	}

	if db.Postgres != nil {
		b.repos.Notifications = repositories.NewPostgresNotificationRepository(db.Postgres)
		b.checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	} else {
		b.repos.Notifications = mem.Notifications
	}

	if db.Redis != nil {
		b.repos.Revocations = repositories.NewRedisTokenRevocationRepository(db.Redis)
		b.checks["redis"] = func(ctx context.Context) error {
			return db.Redis.Ping(ctx).Err()
		}
	} else {
		b.repos.Revocations = mem.Revocations
	}

	return b, nil
}

// migrate creates the Mongo indexes and the notifications table
func (b *backend) migrate(ctx context.Context, logger *logrus.Logger) error {
	if b.db.Database != nil {
		if err := repositories.EnsureIndexes(ctx, b.db.Database); err != nil {
			return fmt.Errorf("failed to create MongoDB indexes: %w", err)
		}
		logger.Info("MongoDB indexes ensured")
	}
	if b.db.Postgres != nil {
		if err := b.db.Postgres.WithContext(ctx).AutoMigrate(&models.Notification{}); err != nil {
			return fmt.Errorf("failed to auto migrate models: %w", err)
		}
		logger.Info("PostgreSQL auto-migrations completed")
	}
	return nil
}

func (b *backend) buildServices(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*services.Set, error) {
	var verifier services.IDTokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		verifier = app.AuthClient
	}

	tokens := services.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	return services.NewSet(b.repos, tokens, verifier, logger), nil
}

func (b *backend) close() {
	b.db.CloseDB()
}

func buildImageStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.ImageStore, error) {
	if cfg.Storage.Driver != "s3" {
		logger.WithField("dir", cfg.Storage.LocalDir).Info("storing uploads on local disk")
		return storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL), nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.Storage.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.Storage.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Store(client, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL), nil
}
