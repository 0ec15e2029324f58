package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Ledger remembers which notifications were already sent for a transaction.
type Ledger interface {
	// Claim returns true the first time key is seen within the TTL.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a later delivery can try again.
	Release(ctx context.Context, key string) error
}

type RedisLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, prefix: "webhook_notified:", ttl: ttl}
}

func (l *RedisLedger) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %v", key, err)
	}
	return ok, nil
}

func (l *RedisLedger) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %v", key, err)
	}
	return nil
}
