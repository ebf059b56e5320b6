package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// LockUseCase hands out advisory per-product purchase locks
type LockUseCase interface {
	// Acquire grants or denies the lock; contention is a result, not an error
	Acquire(ctx context.Context, productID, holderID string, quantity int) (*entity.LockResult, error)

	// Release removes the lock only when holderID owns it
	Release(ctx context.Context, productID, holderID string) (bool, error)

	// Get returns the lock in force, or nil
	Get(ctx context.Context, productID string) (*entity.PurchaseLock, error)

	// ReleaseAll drops every lock of holderID
	ReleaseAll(ctx context.Context, holderID string) (int, error)

	// TTL is the lock validity period
	TTL() time.Duration
}
