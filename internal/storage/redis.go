package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:localstorage:"

// RedisBackend keeps one hash per namespace; fields are storage keys.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend expires an idle namespace after ttl; zero keeps it forever.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (r *RedisBackend) hashKey(namespace string) string {
	return redisKeyPrefix + namespace
}

func (r *RedisBackend) Get(ctx context.Context, namespace, key string) (string, error) {
	if err := checkNames(namespace, key); err != nil {
		return "", err
	}

	value, err := r.client.HGet(ctx, r.hashKey(namespace), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis HGET failed: %w", err)
	}
	return value, nil
}

func (r *RedisBackend) Set(ctx context.Context, namespace, key, value string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}

	hashKey := r.hashKey(namespace)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, hashKey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to write local storage entry to redis", err, map[string]interface{}{
			"namespace": namespace,
			"key":       key,
		})
		return fmt.Errorf("redis HSET failed: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, namespace, key string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}

	n, err := r.client.HDel(ctx, r.hashKey(namespace), key).Result()
	if err != nil {
		return fmt.Errorf("redis HDEL failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close leaves the shared client open; pkg/redis owns its lifecycle.
func (r *RedisBackend) Close() error {
	return nil
}
