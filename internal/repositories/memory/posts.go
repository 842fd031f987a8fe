package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/feed"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository keeps posts in a map and ranks them with the feed comparator
type PostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]*models.Post

	// Now stamps new posts; tests replace it to control createdAt
	Now func() time.Time
}

var _ repositories.PostRepository = (*PostRepository)(nil)

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts: make(map[primitive.ObjectID]*models.Post),
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func clonePost(p *models.Post) models.Post {
	c := *p
	c.Author = nil
	c.Likes = append([]models.Like{}, p.Likes...)
	c.Comments = append([]models.Comment{}, p.Comments...)
	return c
}

func (r *PostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.Now()
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}
	post.Shares = 0
	stored := clonePost(post)
	r.posts[post.ID] = &stored
	return nil
}

func (r *PostRepository) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := clonePost(p)
	return &c, nil
}

func (r *PostRepository) snapshot(match func(*models.Post) bool) []models.Post {
	posts := []models.Post{}
	for _, p := range r.posts {
		if match == nil || match(p) {
			posts = append(posts, clonePost(p))
		}
	}
	return posts
}

func (r *PostRepository) GetPostsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := r.snapshot(func(p *models.Post) bool { return p.UserID == userID })
	feed.Sort(posts, feed.Chronological)
	return posts, nil
}

func (r *PostRepository) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// mutate runs fn on the stored post under the write lock. fn returns false
// when its guard fails.
func (r *PostRepository) mutate(id primitive.ObjectID, fn func(*models.Post) bool) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if !fn(p) {
		return nil, repositories.ErrConflict
	}
	c := clonePost(p)
	return &c, nil
}

func (r *PostRepository) AddLike(_ context.Context, postID primitive.ObjectID, like models.Like) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		if p.LikedBy(like.UserID) {
			return false
		}
		p.Likes = append(p.Likes, like)
		return true
	})
}

func (r *PostRepository) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		for i, l := range p.Likes {
			if l.UserID == userID {
				p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (r *PostRepository) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		p.Comments = append(p.Comments, comment)
		return true
	})
}

func (r *PostRepository) IncrementShares(_ context.Context, postID primitive.ObjectID) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		p.Shares++
		return true
	})
}

func (r *PostRepository) RankedPosts(_ context.Context, order feed.Order, skip, limit int64) ([]models.Post, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("unknown feed order %q", order)
	}
	r.mu.RLock()
	posts := r.snapshot(nil)
	r.mu.RUnlock()

	feed.Sort(posts, order)
	return feed.Paginate(posts, skip, limit), nil
}

func (r *PostRepository) CountPosts(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.posts)), nil
}

func (r *PostRepository) SearchPosts(_ context.Context, query string, limit int64) ([]models.Post, error) {
	q := strings.ToLower(query)
	r.mu.RLock()
	posts := r.snapshot(func(p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Content), q)
	})
	r.mu.RUnlock()

	feed.Sort(posts, feed.Chronological)
	return feed.Paginate(posts, 0, limit), nil
}
