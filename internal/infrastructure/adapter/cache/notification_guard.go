package cache

import (
	"context"
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/redis/go-redis/v9"
)

// RedisDeduplicationStore marks sent notifications with SET NX and a TTL
type RedisDeduplicationStore struct {
	client *redis.Client
}

// NewRedisDeduplicationStore creates a deduplication store over client
func NewRedisDeduplicationStore(client *redis.Client) *RedisDeduplicationStore {
	return &RedisDeduplicationStore{client: client}
}

func (s *RedisDeduplicationStore) MarkIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, Key(KeyNotificationDedup, key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: mark %s: %s", errs.ErrStorage, key, err.Error())
	}
	return ok, nil
}

func (s *RedisDeduplicationStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, Key(KeyNotificationDedup, key)).Err(); err != nil {
		return fmt.Errorf("%w: forget %s: %s", errs.ErrStorage, key, err.Error())
	}
	return nil
}

// RedisRateLimiter counts events in fixed windows. The counter key carries the window
// number, so a new window starts from zero without any reset.
type RedisRateLimiter struct {
	client       *redis.Client
	timeProvider coreport.TimeProvider
	limit        int
	window       time.Duration
}

// NewRedisRateLimiter allows limit events per key per window
func NewRedisRateLimiter(client *redis.Client, timeProvider coreport.TimeProvider, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:       client,
		timeProvider: timeProvider,
		limit:        limit,
		window:       window,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowNumber := l.timeProvider.Now().UnixNano() / int64(l.window)
	counterKey := Key(KeyNotificationRate, key, windowNumber)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("%w: rate limit %s: %s", errs.ErrStorage, key, err.Error())
	}

	return incr.Val() <= int64(l.limit), nil
}
