package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/feed"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// NotificationService records and lists activity notifications. Recording
// is best effort: a failure is logged and never fails the triggering request.
type NotificationService struct {
	notifications repositories.NotificationRepository
	logger        *logrus.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, logger *logrus.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// Notify stores n unless the actor is also the recipient
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) {
	if s == nil || n.ActorID == n.RecipientID {
		return
	}
	if err := s.notifications.CreateNotification(ctx, &n); err != nil {
		s.logger.WithFields(logrus.Fields{
			"type":      n.Type,
			"recipient": n.RecipientID,
			"error":     err,
		}).Warn("failed to record notification")
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, page feed.Page) (result *models.NotificationPage, err error) {
	ctx, span := startSpan(ctx, "NotificationService.List")
	defer func() { endSpan(span, err) }()

	items, total, err := s.notifications.GetByRecipientID(ctx, userID, int(page.Skip()), page.Limit)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	unread, err := s.notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return &models.NotificationPage{
		Notifications: items,
		CurrentPage:   page.Number,
		TotalPages:    feed.TotalPages(total, page.Limit),
		TotalItems:    total,
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, apperror.Unexpected(err)
	}
	return count, nil
}

// MarkAsRead marks one of the user's notifications read
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	id, err := strconv.ParseUint(notificationID, 10, 64)
	if err != nil {
		return apperror.NotFound("Notification not found")
	}
	if err := s.notifications.MarkAsRead(ctx, userID, uint(id)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("Notification not found")
		}
		return apperror.Unexpected(err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllAsRead(ctx, userID); err != nil {
		return apperror.Unexpected(err)
	}
	return nil
}
