package memory

// Stores is a complete in-memory backend. Users doubles as the follow store.
type Stores struct {
	Users         *UserRepository
	Posts         *PostRepository
	Notifications *NotificationRepository
	Revocations   *TokenRevocationRepository
}

func NewStores() *Stores {
	return &Stores{
		Users:         NewUserRepository(),
		Posts:         NewPostRepository(),
		Notifications: NewNotificationRepository(),
		Revocations:   NewTokenRevocationRepository(),
	}
}
