// Package cache provides a Redis-backed response cache for the read
// API. The cache is strictly optional: when Redis is unreachable every
// operation degrades to a miss and the API serves from Postgres.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL applied to cached API responses. Kept short so a completed scan
// becomes visible quickly even without explicit invalidation.
const ResponseTTL = 60 * time.Second

// RedisClient wraps redis.Client.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client. Returns nil when the
// server cannot be reached; callers treat a nil client as cache-off.
func NewRedisClient(host, port, password string) *RedisClient {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Failed to connect to Redis at %s: %v", addr, err)
		return nil
	}

	log.Printf("✅ Connected to Redis at %s", addr)
	return &RedisClient{client: client}
}

// Set stores a JSON-encoded value with expiration.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, jsonBytes, expiration).Err()
}

// Get retrieves a JSON-encoded value into dest.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete removes keys.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	if r != nil && r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Cache keys for the read API. Only the un-cursored first pages are
// cached; deep pages are rare and always hit Postgres. First pages are
// keyed per limit, so invalidation matches on the shared prefix.
const (
	StatusKey          = "legend:status"
	patternsPagePrefix = "legend:patterns:first:"
)

// PatternsPageKey builds the cache key for a first-page listing.
func PatternsPageKey(limit int) string {
	return fmt.Sprintf("%s%d", patternsPagePrefix, limit)
}

// InvalidateScanViews drops every cached API view after a scan writes
// new rows: the status key plus all per-limit first pages, found by
// scanning the key prefix. Best-effort: a failure is logged, never
// surfaced.
func (r *RedisClient) InvalidateScanViews(ctx context.Context) {
	if r == nil || r.client == nil {
		return
	}
	keys := []string{StatusKey}
	iter := r.client.Scan(ctx, 0, patternsPagePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("⚠️  Failed to scan cached pattern pages: %v", err)
	}
	if err := r.Delete(ctx, keys...); err != nil {
		log.Printf("⚠️  Failed to invalidate cached views: %v", err)
	}
}
