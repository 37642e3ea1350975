package models

import (
	"strings"
	"time"
)

// ReadingList is a user-owned named collection of saved posts.
type ReadingList struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"index;uniqueIndex:idx_reading_list_user_name"`
	User        *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex:idx_reading_list_user_name"`
	Description string    `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SavedPost represents a post saved into a reading list; unique per (list, post).
type SavedPost struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	ReadingListID uint         `json:"readingListId" gorm:"index;uniqueIndex:idx_saved_list_post"`
	ReadingList   *ReadingList `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PostID        uint         `json:"postId" gorm:"index;uniqueIndex:idx_saved_list_post"`
	Post          *Post        `json:"post,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type ReadingListRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (r *ReadingListRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

type SavePostRequest struct {
	PostID uint `json:"postId" validate:"required"`
}
