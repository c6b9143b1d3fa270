package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisKV implements KeyValue on Redis strings under a key prefix
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV connects to redisURL and verifies the connection
func NewRedisKV(ctx context.Context, redisURL, prefix string) (*RedisKV, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the redis backend")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisKV{client: client, prefix: prefix}, nil
}

// key generates a Redis key for the given item key
func (r *RedisKV) key(key string) string {
	return r.prefix + key
}

// GetItem returns the value stored under key
func (r *RedisKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key without expiry
func (r *RedisKV) SetItem(ctx context.Context, key, value string) error {
	err := r.client.Set(ctx, r.key(key), value, 0).Err()
	if err != nil {
		if isOOM(err) {
			return fmt.Errorf("failed to set %s: %w", key, ErrQuotaExceeded)
		}
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key
func (r *RedisKV) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisKV) Close() error {
	return r.client.Close()
}

// isOOM reports a write refused because Redis reached maxmemory
func isOOM(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM ")
}
