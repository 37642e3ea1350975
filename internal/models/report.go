package models

import (
	"strings"
	"time"
)

// ReportedPost is unique per (post, reporter); admins clear it by deleting.
type ReportedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"uniqueIndex:idx_report_post_user"`
	Post      *Post     `json:"post,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint      `json:"userId" gorm:"uniqueIndex:idx_report_post_user;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Reason    string    `json:"reason" gorm:"size:500"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReportPostRequest struct {
	PostID uint   `json:"postId" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

func (r *ReportPostRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

// ClearReportRequest identifies the report an admin removes.
type ClearReportRequest struct {
	PostID uint `json:"postId" validate:"required"`
	UserID uint `json:"userId" validate:"required"`
}

// ReportQuery adds the admin moderation filters to a page query.
type ReportQuery struct {
	PageQuery
	TitleSearch string `query:"titleSearch" validate:"max=255"`
	UserSearch  string `query:"userSearch" validate:"max=255"`
}

func (q *ReportQuery) Normalize() {
	q.TitleSearch = strings.TrimSpace(q.TitleSearch)
	q.UserSearch = strings.TrimSpace(q.UserSearch)
}
