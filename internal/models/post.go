package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"-" bson:"user"`
	Author    *UserCompact       `json:"user" bson:"-"` // populated after every read
	Content   string             `json:"content" bson:"content"`
	Image     string             `json:"image" bson:"image"`
	Likes     []Like             `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	Shares    int                `json:"shares" bson:"shares"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Like records who liked a post. Username is copied at like time and may
// drift if the user renames later.
type Like struct {
	UserID   primitive.ObjectID `json:"user" bson:"user"`
	Username string             `json:"username" bson:"username"`
}

// Comment is an entry in a post's append-only comment thread
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	Username  string             `json:"username" bson:"username"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// LikedBy reports whether userID appears in the post's likes
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the multipart form for creating a post.
// The image arrives as a file and is validated by the upload middleware.
type CreatePostRequest struct {
	Content string `form:"content" json:"content" validate:"max=2000"`
}

// CommentRequest defines the request body for commenting on a post
type CommentRequest struct {
	Text string `form:"text" json:"text"`
}

// FeedPage is one page of a ranked feed
type FeedPage struct {
	Posts       []Post `json:"posts"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalPosts  int64  `json:"totalPosts"`
}

// Profile is the response of the profile endpoint
type Profile struct {
	User  ProfileUser `json:"user"`
	Posts []Post      `json:"posts"`
}

// SearchResult holds matching users and posts
type SearchResult struct {
	Users []UserView `json:"users"`
	Posts []Post     `json:"posts"`
}
