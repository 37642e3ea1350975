package models

import (
	"strings"
	"time"
)

// ReactionType is an admin managed catalog entry (name + image).
type ReactionType struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:50;uniqueIndex"`
	ImageURL string `json:"imageUrl"`
}

// PostReaction is unique per (post, user).
type PostReaction struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	PostID         uint          `json:"postId" gorm:"uniqueIndex:idx_reaction_post_user"`
	Post           *Post         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID         uint          `json:"userId" gorm:"uniqueIndex:idx_reaction_post_user;index"`
	User           *User         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ReactionTypeID uint          `json:"reactionTypeId" gorm:"index"`
	ReactionType   *ReactionType `json:"reactionType,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// PostView is unique per (post, user); recording it twice is a no-op.
type PostView struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"uniqueIndex:idx_view_post_user"`
	Post      *Post     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint      `json:"userId" gorm:"uniqueIndex:idx_view_post_user;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReactRequest struct {
	ReactionTypeID uint `json:"reactionTypeId" validate:"required,reaction_exists"`
}

type ReactionTypeRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=50"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

func (r *ReactionTypeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}
