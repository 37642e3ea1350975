package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FollowerSource lists the active followers a NEW_POST job fans out to.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
}

// NotificationStore inserts a notification unless its dedupe key exists.
type NotificationStore interface {
	CreateIfAbsent(ctx context.Context, notification *models.Notification) (bool, error)
}

// Dispatcher drains the queue and writes notifications. Delivery is
// at-least-once; the dedupe key makes redelivery harmless.
type Dispatcher struct {
	queue         Queue
	followers     FollowerSource
	notifications NotificationStore
	log           logrus.FieldLogger
	interval      time.Duration
}

func NewDispatcher(queue Queue, followers FollowerSource, notifications NotificationStore, log logrus.FieldLogger, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{
		queue:         queue,
		followers:     followers,
		notifications: notifications,
		log:           log.WithField("component", "notifier"),
		interval:      interval,
	}
}

// Run requeues jobs left over from a previous run, then drains the queue on
// every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	moved, err := d.queue.Requeue(ctx)
	if err != nil {
		return err
	}
	if moved > 0 {
		d.log.WithField("jobs", moved).Info("requeued unacknowledged notification jobs")
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.Drain(ctx); err != nil && ctx.Err() == nil {
				d.log.WithError(err).Error("drain notification queue")
			}
		}
	}
}

// Drain processes jobs until the queue is empty and returns how many were acked.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	done := 0
	for {
		raw, err := d.queue.Claim(ctx)
		if err != nil {
			return done, err
		}
		if raw == "" {
			return done, nil
		}
		if err := d.handle(ctx, raw); err != nil {
			// left on the processing list; Run requeues it on the next start
			d.log.WithError(err).WithField("job", raw).Error("notification job failed")
			continue
		}
		if err := d.queue.Ack(ctx, raw); err != nil {
			return done, err
		}
		done++
	}
}

func (d *Dispatcher) handle(ctx context.Context, raw string) error {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		d.log.WithError(err).WithField("job", raw).Warn("dropping malformed notification job")
		return nil
	}

	recipients := []uint{job.RecipientID}
	if job.FanOut {
		ids, err := d.followers.FollowerIDs(ctx, job.ActorID)
		if err != nil {
			return errors.Wrap(err, "load followers")
		}
		recipients = ids
	}

	created := 0
	for _, id := range recipients {
		if id == 0 {
			continue
		}
		ok, err := d.notifications.CreateIfAbsent(ctx, job.Notification(id))
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"job":       job.ID,
				"recipient": id,
			}).Error("create notification")
			continue
		}
		if ok {
			created++
		}
	}
	d.log.WithFields(logrus.Fields{
		"job":        job.ID,
		"type":       job.Type,
		"recipients": len(recipients),
		"created":    created,
	}).Debug("notification job processed")
	return nil
}
