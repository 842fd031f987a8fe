package services

import (
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Repositories groups the stores the services are built on
type Repositories struct {
	Users         repositories.UserRepository
	Follows       repositories.FollowRepository
	Posts         repositories.PostRepository
	Notifications repositories.NotificationRepository
	Revocations   repositories.TokenRevocationRepository
}

// Set is the full service layer wired over one set of repositories
type Set struct {
	Auth          *AuthService
	Graph         *GraphService
	Posts         *PostService
	Feeds         *FeedService
	Notifications *NotificationService
}

// NewSet wires every service. firebase may be nil.
func NewSet(repos Repositories, tokens *TokenIssuer, firebase IDTokenVerifier, logger *logrus.Logger) *Set {
	notifications := NewNotificationService(repos.Notifications, logger)
	auth := NewAuthService(repos.Users, tokens, repos.Revocations, firebase, logger)
	return &Set{
		Auth:          auth,
		Graph:         NewGraphService(repos.Users, repos.Follows, repos.Posts, notifications, auth),
		Posts:         NewPostService(repos.Posts, repos.Users, notifications),
		Feeds:         NewFeedService(repos.Posts, repos.Users),
		Notifications: notifications,
	}
}
