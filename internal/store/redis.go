package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadCacheTTL = 15 * time.Second

// RedisStore handles Redis operations: rate-limit counters (used by the
// middleware through Client) and a short-lived unread-count cache that
// absorbs inbox polling.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the raw client for the rate-limit middleware.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// unreadKey returns the cache key for a user's unread count.
func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("unread:%s", userID)
}

// GetCachedUnread returns a cached unread count for the user.
// The second return value is false on a cache miss.
func (s *RedisStore) GetCachedUnread(ctx context.Context, userID uuid.UUID) (int64, bool) {
	val, err := s.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetCachedUnread caches a user's unread count.
func (s *RedisStore) SetCachedUnread(ctx context.Context, userID uuid.UUID, count int64) {
	s.client.Set(ctx, unreadKey(userID), count, unreadCacheTTL)
}

// InvalidateUnread drops the cached unread count after a send or a read
// transition. Best-effort: a miss just means the next poll recounts.
func (s *RedisStore) InvalidateUnread(ctx context.Context, userID uuid.UUID) {
	s.client.Del(ctx, unreadKey(userID))
}
