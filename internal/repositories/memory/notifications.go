package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
)

type NotificationRepository struct {
	mu     sync.Mutex
	nextID uint
	items  []models.Notification
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{nextID: 1}
}

func (r *NotificationRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *NotificationRepository) GetByRecipientID(_ context.Context, recipientID string, offset, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mine := []models.Notification{}
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			mine = append(mine, n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		if mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].ID > mine[j].ID
		}
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	total := int64(len(mine))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(mine) || limit <= 0 {
		return []models.Notification{}, total, nil
	}
	end := len(mine)
	if limit < end-offset {
		end = offset + limit
	}
	return mine[offset:end], total, nil
}

func (r *NotificationRepository) GetUnreadCount(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, recipientID string, notificationID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == notificationID && r.items[i].RecipientID == recipientID {
			r.items[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].RecipientID == recipientID {
			r.items[i].IsRead = true
		}
	}
	return nil
}
