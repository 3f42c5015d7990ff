package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schedly/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisMirrorStore keeps mirror entries in Redis. Entries expire after ttl
// when ttl is positive.
type RedisMirrorStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisMirrorStore(client *redis.Client, ttl time.Duration) *RedisMirrorStore {
	return &RedisMirrorStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisMirrorStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get mirror entry from redis: %w", err)
	}
	return val, true, nil
}

func (r *RedisMirrorStore) Store(ctx context.Context, key string, value []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set mirror entry in redis: %w", err)
	}
	return nil
}

func (r *RedisMirrorStore) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete mirror entry from redis: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes a client that may be nil.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
