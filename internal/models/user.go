package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a member of the network stored in MongoDB
type User struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Bio            string               `json:"bio" bson:"bio"`
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	FirebaseUID    string               `json:"-" bson:"firebaseUid,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserCompact is the public author projection joined into posts and follow lists
type UserCompact struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Username       string             `json:"username" bson:"username"`
	ProfilePicture string             `json:"profilePicture" bson:"profilePicture"`
}

// UserView is a user without its credential secret
type UserView struct {
	ID             primitive.ObjectID `json:"_id"`
	Username       string             `json:"username"`
	Email          string             `json:"email,omitempty"`
	Bio            string             `json:"bio"`
	ProfilePicture string             `json:"profilePicture"`
	FollowersCount int                `json:"followersCount"`
	FollowingCount int                `json:"followingCount"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// ProfileUser is a UserView with both relationship sets populated
type ProfileUser struct {
	UserView
	Followers []UserCompact `json:"followers"`
	Following []UserCompact `json:"following"`
}

// ToCompact returns the public author projection of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

// ToView returns the user without its password hash
func (u *User) ToView() UserView {
	return UserView{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		CreatedAt:      u.CreatedAt,
	}
}

// ToPublicView is ToView without the email address, used for search results
func (u *User) ToPublicView() UserView {
	v := u.ToView()
	v.Email = ""
	return v
}

// IsFollowing reports whether target is in the user's following set
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	return containsID(u.Following, target)
}

// HasFollower reports whether follower is in the user's followers set
func (u *User) HasFollower(follower primitive.ObjectID) bool {
	return containsID(u.Followers, follower)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SignupRequest defines the multipart form for local registration
type SignupRequest struct {
	Username string `form:"username" json:"username" validate:"required,min=3,max=30"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the request body for email/password login
type LoginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest defines the multipart form for profile edits.
// Empty fields keep their current value.
type UpdateProfileRequest struct {
	Username string `form:"username" json:"username" validate:"omitempty,min=3,max=30"`
	Email    string `form:"email" json:"email" validate:"omitempty,email"`
	Bio      string `form:"bio" json:"bio" validate:"omitempty,max=300"`
	Password string `form:"password" json:"password" validate:"omitempty,min=6,max=72"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
