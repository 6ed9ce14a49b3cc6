package webhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventLedger remembers which Stripe event ids were already handled so a
// redelivery can be acknowledged without touching the database.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func ledgerKey(eventID string) string {
	return fmt.Sprintf("stripe:event:%s", eventID)
}

func (l *RedisLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisLedger) MarkProcessed(ctx context.Context, eventID string) error {
	return l.client.Set(ctx, ledgerKey(eventID), "1", l.ttl).Err()
}
