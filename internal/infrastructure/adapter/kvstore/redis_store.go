package kvstore

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/cache"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a KeyValueStore shared by every instance pointing at the same Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, cache.Key(cache.KeyDocument, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %s", errs.ErrStorage, key, err.Error())
	}
	return value, nil
}

// Set writes without expiry; documents are durable until removed
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, cache.Key(cache.KeyDocument, key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %s", errs.ErrStorage, key, err.Error())
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, cache.Key(cache.KeyDocument, key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: remove %s: %s", errs.ErrStorage, key, err.Error())
	}
	return n > 0, nil
}
