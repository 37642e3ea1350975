// Package notifier implements the notification outbox: requests enqueue jobs
// on a Redis list and a Dispatcher turns them into stored notifications.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Job describes one notification event. A FanOut job is delivered to every
// active follower of the actor; otherwise it goes to RecipientID.
type Job struct {
	ID          string                  `json:"id"`
	Type        models.NotificationType `json:"type"`
	ActorID     uint                    `json:"actorId"`
	ActorName   string                  `json:"actorName"`
	RecipientID uint                    `json:"recipientId,omitempty"`
	FanOut      bool                    `json:"fanOut,omitempty"`
	TargetType  string                  `json:"targetType"`
	TargetID    uint                    `json:"targetId"`
	Subject     string                  `json:"subject,omitempty"`
	// EventID distinguishes repeated events on the same target, e.g. two comments.
	EventID     uint                    `json:"eventId,omitempty"`
	EnqueuedAt  time.Time               `json:"enqueuedAt"`
}

// Notification builds the stored row for one recipient.
func (j Job) Notification(recipientID uint) *models.Notification {
	key := models.NotificationKey(j.Type, recipientID, j.ActorID, j.TargetType, j.TargetID)
	if j.EventID != 0 {
		key = fmt.Sprintf("%s:%d", key, j.EventID)
	}
	return &models.Notification{
		Type:        j.Type,
		ActorID:     j.ActorID,
		RecipientID: recipientID,
		TargetType:  j.TargetType,
		TargetID:    j.TargetID,
		Message:     Render(j),
		DedupeKey:   key,
	}
}

// Render produces the message text for a job.
func Render(j Job) string {
	switch j.Type {
	case models.NotificationPostReaction:
		return fmt.Sprintf("%s reacted to your post %q", j.ActorName, j.Subject)
	case models.NotificationNewComment:
		return fmt.Sprintf("%s commented on your post %q", j.ActorName, j.Subject)
	case models.NotificationNewPost:
		return fmt.Sprintf("%s published a new post %q", j.ActorName, j.Subject)
	case models.NotificationPublicationInvite:
		return fmt.Sprintf("%s invited you to join %q", j.ActorName, j.Subject)
	case models.NotificationNewFollow:
		return fmt.Sprintf("%s started following you", j.ActorName)
	default:
		return fmt.Sprintf("%s sent you a notification", j.ActorName)
	}
}

// Notifier is the producer side used by request handling code.
type Notifier struct {
	queue Queue
	now   func() time.Time
}

func New(queue Queue) *Notifier {
	return &Notifier{queue: queue, now: time.Now}
}

// Enqueue stamps the job with an id and pushes it onto the queue.
func (n *Notifier) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.EnqueuedAt = n.now()
	return errors.Wrap(n.queue.Push(ctx, job), "enqueue notification")
}
