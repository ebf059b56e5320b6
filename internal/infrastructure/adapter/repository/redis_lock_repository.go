package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/cache"
	"github.com/redis/go-redis/v9"
)

// claimScript grants the lock when the key is free, owned by the caller, or expired by the
// caller's clock. The previous holder's index entry is dropped on takeover. The holder set
// lives as long as the holder's newest lock.
// KEYS[1] lock key, KEYS[2] caller's holder set
// ARGV[1] lock JSON, ARGV[2] holder, ARGV[3] now ms, ARGV[4] ttl ms, ARGV[5] product, ARGV[6] holder set prefix
var claimScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local lock = cjson.decode(cur)
  if lock.holderId ~= ARGV[2] then
    if tonumber(ARGV[3]) - tonumber(lock.acquiredAtMs) < tonumber(ARGV[4]) then
      return {0, cur}
    end
    redis.call('SREM', ARGV[6] .. lock.holderId, ARGV[5])
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[4])
redis.call('SADD', KEYS[2], ARGV[5])
redis.call('PEXPIRE', KEYS[2], ARGV[4])
return {1, ARGV[1]}
`)

// releaseScript deletes the lock only for its holder
// KEYS[1] lock key, KEYS[2] holder set; ARGV[1] holder, ARGV[2] product
var releaseScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
  redis.call('SREM', KEYS[2], ARGV[2])
  return 0
end
local lock = cjson.decode(cur)
if lock.holderId ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[2], ARGV[2])
return 1
`)

// redisLock is the stored form; times travel as unix milliseconds so Lua can compare them
type redisLock struct {
	ProductID         string `json:"productId"`
	HolderID          string `json:"holderId"`
	AcquiredAtMs      int64  `json:"acquiredAtMs"`
	RequestedQuantity int    `json:"requestedQuantity"`
}

func toRedisLock(l *entity.PurchaseLock) redisLock {
	return redisLock{
		ProductID:         l.ProductID,
		HolderID:          l.HolderID,
		AcquiredAtMs:      l.AcquiredAt.UnixMilli(),
		RequestedQuantity: l.RequestedQuantity,
	}
}

func (l redisLock) toEntity() *entity.PurchaseLock {
	return &entity.PurchaseLock{
		ProductID:         l.ProductID,
		HolderID:          l.HolderID,
		AcquiredAt:        time.UnixMilli(l.AcquiredAtMs).UTC(),
		RequestedQuantity: l.RequestedQuantity,
	}
}

func decodeRedisLock(raw string) (*entity.PurchaseLock, error) {
	var l redisLock
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return nil, fmt.Errorf("%w: decode purchase lock: %s", errs.ErrStorage, err.Error())
	}
	return l.toEntity(), nil
}

// RedisPurchaseLockRepository shares purchase locks between every instance using the same Redis.
// Keys carry a PX expiry equal to the lock TTL, so abandoned locks disappear on their own.
type RedisPurchaseLockRepository struct {
	client *redis.Client
}

// NewRedisPurchaseLockRepository creates a lock repository on a connected client
func NewRedisPurchaseLockRepository(client *redis.Client) *RedisPurchaseLockRepository {
	return &RedisPurchaseLockRepository{client: client}
}

func holderSetPrefix() string {
	return cache.Key(cache.KeyHolderLocks, "")
}

func (r *RedisPurchaseLockRepository) Claim(ctx context.Context, lock *entity.PurchaseLock, ttl time.Duration) (*entity.PurchaseLock, bool, error) {
	payload, err := json.Marshal(toRedisLock(lock))
	if err != nil {
		return nil, false, fmt.Errorf("%w: encode purchase lock: %s", errs.ErrStorage, err.Error())
	}

	keys := []string{
		cache.Key(cache.KeyPurchaseLock, lock.ProductID),
		cache.Key(cache.KeyHolderLocks, lock.HolderID),
	}
	res, err := claimScript.Run(ctx, r.client, keys,
		string(payload), lock.HolderID, lock.AcquiredAt.UnixMilli(), ttl.Milliseconds(), lock.ProductID, holderSetPrefix(),
	).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("%w: claim purchase lock: %s", errs.ErrStorage, err.Error())
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("%w: unexpected claim reply %v", errs.ErrStorage, res)
	}

	granted, _ := res[0].(int64)
	raw, _ := res[1].(string)
	current, err := decodeRedisLock(raw)
	if err != nil {
		return nil, false, err
	}
	return current, granted == 1, nil
}

func (r *RedisPurchaseLockRepository) Release(ctx context.Context, productID, holderID string) (bool, error) {
	keys := []string{
		cache.Key(cache.KeyPurchaseLock, productID),
		cache.Key(cache.KeyHolderLocks, holderID),
	}
	n, err := releaseScript.Run(ctx, r.client, keys, holderID, productID).Int()
	if err != nil {
		return false, fmt.Errorf("%w: release purchase lock: %s", errs.ErrStorage, err.Error())
	}
	return n == 1, nil
}

func (r *RedisPurchaseLockRepository) Get(ctx context.Context, productID string) (*entity.PurchaseLock, error) {
	raw, err := r.client.Get(ctx, cache.Key(cache.KeyPurchaseLock, productID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get purchase lock: %s", errs.ErrStorage, err.Error())
	}
	return decodeRedisLock(raw)
}

func (r *RedisPurchaseLockRepository) ListByHolder(ctx context.Context, holderID string) ([]*entity.PurchaseLock, error) {
	products, err := r.client.SMembers(ctx, cache.Key(cache.KeyHolderLocks, holderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list purchase locks: %s", errs.ErrStorage, err.Error())
	}
	sort.Strings(products)

	held := make([]*entity.PurchaseLock, 0, len(products))
	for _, productID := range products {
		l, err := r.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		if l != nil && l.HolderID == holderID {
			held = append(held, l)
		}
	}
	return held, nil
}

// DeleteExpired has nothing to do: Redis expires lock keys itself
func (r *RedisPurchaseLockRepository) DeleteExpired(context.Context, time.Time, time.Duration) (int, error) {
	return 0, nil
}
