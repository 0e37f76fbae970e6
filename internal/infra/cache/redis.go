// Package cache implements the status cache on Redis. The status
// endpoint is polled by the thank-you page while integrations finish,
// so reads go to Redis first and fall back to the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/chimehq/roi-capture/internal/domain/leads"
)

const defaultTTL = 24 * time.Hour

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{client: client, ttl: defaultTTL}, nil
}

func statusKey(id domain.SubmissionID) string {
	return "roi:status:" + string(id)
}

func (c *RedisCache) GetStatus(ctx context.Context, id domain.SubmissionID) (*domain.SyncStatus, bool, error) {
	data, err := c.client.Get(ctx, statusKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var status domain.SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		// Stale or corrupt entry, treat as a miss.
		return nil, false, nil
	}
	return &status, true, nil
}

func (c *RedisCache) SetStatus(ctx context.Context, status *domain.SyncStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, statusKey(status.SubmissionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports connectivity for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
