// internal/services/store/redis_store.go - Redis-backed durable store
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"passbi-cache/config"
	"passbi-cache/internal/utils"
)

// RedisStore durable store backed by Redis
type RedisStore struct {
	client    *redis.Client
	logger    *utils.Logger
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a Redis-backed durable store.
// Returns an error when Redis is unreachable so the caller can decide to
// degrade to a memory store instead of failing the whole process.
func NewRedisStore(cfg *config.Config, logger *utils.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Addr,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		PoolSize:        cfg.Redis.PoolSize,
		ConnMaxIdleTime: time.Duration(cfg.Redis.IdleTimeout) * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
	}

	logger.Infof("redis durable store ready - addr: %s, db: %d, prefix: %s",
		cfg.Redis.Addr, cfg.Redis.DB, cfg.KeyPrefix)

	return &RedisStore{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.SnapshotTTL,
	}, nil
}

// Get fetches the value for key; returns ErrMiss when absent
func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := rs.client.Get(ctx, rs.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value at key with the configured snapshot TTL
func (rs *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := rs.client.Set(ctx, rs.keyPrefix+key, value, rs.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing an absent key is not an error
func (rs *RedisStore) Remove(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping verifies the Redis connection
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
