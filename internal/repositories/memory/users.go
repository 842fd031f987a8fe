// Package memory provides in-process implementations of the repository
// interfaces. They back the "memory" store driver and the test suites.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository keeps users in a map. It implements both
// repositories.UserRepository and repositories.FollowRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

var (
	_ repositories.UserRepository   = (*UserRepository)(nil)
	_ repositories.FollowRepository = (*UserRepository)(nil)
)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = append([]primitive.ObjectID{}, u.Followers...)
	c.Following = append([]primitive.ObjectID{}, u.Following...)
	return &c
}

func (r *UserRepository) uniqueTaken(user *models.User) bool {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return true
		}
		if user.FirebaseUID != "" && u.FirebaseUID == user.FirebaseUID {
			return true
		}
	}
	return false
}

func (r *UserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.uniqueTaken(user) {
		return repositories.ErrDuplicateKey
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	r.users[user.ID] = cloneUser(user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *UserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *UserRepository) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	if firebaseUID == "" {
		return nil, repositories.ErrNotFound
	}
	return r.find(func(u *models.User) bool { return u.FirebaseUID == firebaseUID })
}

func (r *UserRepository) GetCompactUsers(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[primitive.ObjectID]models.UserCompact, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result[id] = u.ToCompact()
		}
	}
	return result, nil
}

func (r *UserRepository) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.uniqueTaken(user) {
		return repositories.ErrDuplicateKey
	}
	user.UpdatedAt = time.Now().UTC()
	stored.Username = user.Username
	stored.Email = user.Email
	stored.Password = user.Password
	stored.Bio = user.Bio
	stored.ProfilePicture = user.ProfilePicture
	stored.UpdatedAt = user.UpdatedAt
	if user.FirebaseUID != "" {
		stored.FirebaseUID = user.FirebaseUID
	}
	return nil
}

func (r *UserRepository) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	users := []models.User{}
	for _, id := range r.order {
		if int64(len(users)) >= limit {
			break
		}
		u := r.users[id]
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Bio), q) {
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

func (r *UserRepository) Follow(_ context.Context, followerID, followingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	follower, ok := r.users[followerID]
	if !ok {
		return repositories.ErrNotFound
	}
	target, ok := r.users[followingID]
	if !ok {
		return repositories.ErrNotFound
	}
	if follower.IsFollowing(followingID) {
		return repositories.ErrConflict
	}
	follower.Following = append(follower.Following, followingID)
	if !target.HasFollower(followerID) {
		target.Followers = append(target.Followers, followerID)
	}
	return nil
}

func (r *UserRepository) Unfollow(_ context.Context, followerID, followingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	follower, ok := r.users[followerID]
	if !ok {
		return repositories.ErrNotFound
	}
	target, ok := r.users[followingID]
	if !ok {
		return repositories.ErrNotFound
	}
	if !follower.IsFollowing(followingID) {
		return repositories.ErrConflict
	}
	follower.Following = removeID(follower.Following, followingID)
	target.Followers = removeID(target.Followers, followerID)
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
