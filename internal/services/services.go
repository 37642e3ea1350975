// Package services holds the business rules that sit between the HTTP
// handlers and the repositories.
package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/sirupsen/logrus"
)

// Enqueuer accepts notification jobs; *notifier.Notifier implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job notifier.Job) error
}

// enqueue hands a job to the outbox. A failure is logged and never fails the
// request that triggered it.
func enqueue(ctx context.Context, q Enqueuer, log logrus.FieldLogger, job notifier.Job) {
	if q == nil {
		return
	}
	if err := q.Enqueue(ctx, job); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"type":   job.Type,
			"target": job.TargetID,
		}).Warn("failed to enqueue notification")
	}
}

// found returns ok=false for a NotFound error and passes any other error through.
func found(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errs.Is(err, errs.KindNotFound) {
		return false, nil
	}
	return false, err
}
