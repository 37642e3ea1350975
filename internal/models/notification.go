package models

import (
	"fmt"
	"time"
)

// NotificationType selects the message template.
type NotificationType string

const (
	NotificationPostReaction      NotificationType = "POST_REACTION"
	NotificationNewComment        NotificationType = "NEW_COMMENT"
	NotificationNewPost           NotificationType = "NEW_POST"
	NotificationPublicationInvite NotificationType = "PUBLICATION_INVITE"
	NotificationNewFollow         NotificationType = "NEW_FOLLOW"
)

// Target kinds a notification can point at.
const (
	TargetPost        = "post"
	TargetPublication = "publication"
	TargetUser        = "user"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	ActorID     uint             `json:"actorId" gorm:"index"`
	RecipientID uint             `json:"recipientId" gorm:"index"`
	TargetType  string           `json:"targetType" gorm:"size:20"`
	TargetID    uint             `json:"targetId"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"isRead" gorm:"default:false;index"`
	DedupeKey   string           `json:"-" gorm:"size:191;uniqueIndex"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"index"`
}

// NotificationKey identifies a notification for idempotent creation.
func NotificationKey(t NotificationType, recipientID, actorID uint, targetType string, targetID uint) string {
	return fmt.Sprintf("%s:%d:%d:%s:%d", t, recipientID, actorID, targetType, targetID)
}
