package notifier

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	QueueKey      = "notify:queue"
	ProcessingKey = "notify:processing"
)

// Queue is a reliable list: claimed jobs stay on a processing list until acked.
type Queue interface {
	Push(ctx context.Context, job Job) error
	// Claim returns the raw payload of the oldest job, or "" when empty.
	Claim(ctx context.Context) (string, error)
	Ack(ctx context.Context, raw string) error
	// Requeue moves every unacked job back onto the queue.
	Requeue(ctx context.Context) (int, error)
}

type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Push(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "marshal job")
	}
	return errors.Wrap(q.client.LPush(ctx, QueueKey, payload).Err(), "push job")
}

func (q *RedisQueue) Claim(ctx context.Context) (string, error) {
	raw, err := q.client.RPopLPush(ctx, QueueKey, ProcessingKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "claim job")
	}
	return raw, nil
}

func (q *RedisQueue) Ack(ctx context.Context, raw string) error {
	return errors.Wrap(q.client.LRem(ctx, ProcessingKey, 1, raw).Err(), "ack job")
}

func (q *RedisQueue) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, ProcessingKey, QueueKey).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, errors.Wrap(err, "requeue job")
		}
		moved++
	}
}
