package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

const purchaseLocksKey = "purchase_locks"

// KVPurchaseLockRepository keeps every lock in one document guarded by an in-process mutex.
// Mutual exclusion holds only within this process; use the Redis or PostgreSQL repository
// when several instances share a store.
type KVPurchaseLockRepository struct {
	store persistence.KeyValueStore
	mu    sync.Mutex
}

// NewKVPurchaseLockRepository creates a lock repository over store
func NewKVPurchaseLockRepository(store persistence.KeyValueStore) *KVPurchaseLockRepository {
	return &KVPurchaseLockRepository{store: store}
}

func (r *KVPurchaseLockRepository) load(ctx context.Context) (map[string]*entity.PurchaseLock, error) {
	locks := make(map[string]*entity.PurchaseLock)
	if _, err := loadDocument(ctx, r.store, purchaseLocksKey, &locks); err != nil {
		return nil, err
	}
	return locks, nil
}

func (r *KVPurchaseLockRepository) Claim(ctx context.Context, lock *entity.PurchaseLock, ttl time.Duration) (*entity.PurchaseLock, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locks, err := r.load(ctx)
	if err != nil {
		return nil, false, err
	}

	if current, ok := locks[lock.ProductID]; ok && !current.CanBeClaimedBy(lock.HolderID, lock.AcquiredAt, ttl) {
		return current, false, nil
	}

	granted := *lock
	locks[lock.ProductID] = &granted
	if err := saveDocument(ctx, r.store, purchaseLocksKey, locks); err != nil {
		return nil, false, err
	}
	return &granted, true, nil
}

func (r *KVPurchaseLockRepository) Release(ctx context.Context, productID, holderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locks, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	current, ok := locks[productID]
	if !ok || current.HolderID != holderID {
		return false, nil
	}

	delete(locks, productID)
	if err := saveDocument(ctx, r.store, purchaseLocksKey, locks); err != nil {
		return false, err
	}
	return true, nil
}

func (r *KVPurchaseLockRepository) Get(ctx context.Context, productID string) (*entity.PurchaseLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return locks[productID], nil
}

func (r *KVPurchaseLockRepository) ListByHolder(ctx context.Context, holderID string) ([]*entity.PurchaseLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	held := make([]*entity.PurchaseLock, 0)
	for _, l := range locks {
		if l.HolderID == holderID {
			held = append(held, l)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ProductID < held[j].ProductID })
	return held, nil
}

func (r *KVPurchaseLockRepository) DeleteExpired(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locks, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for productID, l := range locks {
		if l.IsExpired(now, ttl) {
			delete(locks, productID)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := saveDocument(ctx, r.store, purchaseLocksKey, locks); err != nil {
		return 0, err
	}
	return removed, nil
}
