package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:255;uniqueIndex:idx_users_username"`
	Email       string    `json:"email" gorm:"size:255;uniqueIndex:idx_users_email"`
	Password    string    `json:"-"` // bcrypt hash
	Role        Role      `json:"role" gorm:"size:10;default:USER"`
	IsActive    bool      `json:"isActive" gorm:"default:true;index"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID
	Profile     *Profile  `json:"profile,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Profile is the public face of a user, created together with the account.
type Profile struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	UserID    uint    `json:"userId" gorm:"uniqueIndex"`
	Name      string  `json:"name" gorm:"size:50"`
	Bio       string  `json:"bio" gorm:"size:160"`
	AvatarURL *string `json:"avatarUrl"`
}

// UserCompact is the author/actor shape embedded in other resources.
type UserCompact struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

func (u *User) ToCompact() UserCompact {
	c := UserCompact{ID: u.ID, Username: u.Username, Name: u.Username}
	if u.Profile != nil {
		c.Name = u.Profile.Name
		c.AvatarURL = u.Profile.AvatarURL
	}
	return c
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RegisterRequest struct {
	Username             string `json:"username" validate:"required,min=3,max=255,unique_username"`
	Email                string `json:"email" validate:"required,email,unique_email"`
	Password             string `json:"password" validate:"required,min=6,max=255"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,max=160"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (r *UpdateProfileRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Bio)
	trimPtr(r.AvatarURL)
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
