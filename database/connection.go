package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Connection wraps the Redis client shared by the rate limiter and the
// webhook idempotency ledger. This service owns no other store.
type Connection struct {
	client *redis.Client
	log    *zap.Logger
}

func NewConnection(redisURL string, log *zap.Logger) (*Connection, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %v", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second

	conn := &Connection{client: redis.NewClient(opt), log: log.Named("redis")}

	if err := conn.ensureConnection(); err != nil {
		conn.client.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Connection) ensureConnection() error {
	var err error
	for retries := 0; retries < 3; retries++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = c.client.Ping(ctx).Err()
		cancel()

		if err == nil {
			return nil
		}

		c.log.Warn("redis ping failed", zap.Int("attempt", retries+1), zap.Error(err))
		time.Sleep(time.Second * time.Duration(retries+1))
	}
	return fmt.Errorf("failed to establish Redis connection after 3 attempts: %v", err)
}

// Ping checks the connection once, for health reporting.
func (c *Connection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Connection) Client() *redis.Client {
	return c.client
}

func (c *Connection) Close() error {
	return c.client.Close()
}
