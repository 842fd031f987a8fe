package models

import "time"

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Type          string    `json:"type" gorm:"size:30;index"`
	ActorID       string    `json:"actorId" gorm:"size:24;index"`
	ActorUsername string    `json:"actorUsername" gorm:"size:64"`
	RecipientID   string    `json:"recipientId" gorm:"size:24;index"`
	PostID        string    `json:"postId,omitempty" gorm:"size:24"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`
}

// NotificationPage is one page of a user's notifications
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	CurrentPage   int            `json:"currentPage"`
	TotalPages    int            `json:"totalPages"`
	TotalItems    int64          `json:"totalItems"`
	UnreadCount   int64          `json:"unreadCount"`
}
