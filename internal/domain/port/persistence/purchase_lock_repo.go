package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// PurchaseLockRepository stores at most one purchase lock per product.
// Implementations must make Claim atomic with respect to other Claims on the same product.
type PurchaseLockRepository interface {
	// Claim stores lock when the product is free, already held by lock.HolderID,
	// or held by a lock that is expired at lock.AcquiredAt for ttl.
	// It returns the lock in force after the call and whether lock was granted.
	//
	// Possible errors:
	// - ErrStorage: If the backend cannot be reached
	Claim(ctx context.Context, lock *entity.PurchaseLock, ttl time.Duration) (*entity.PurchaseLock, bool, error)

	// Release deletes the lock only when holderID owns it
	Release(ctx context.Context, productID, holderID string) (bool, error)

	// Get returns the stored lock without interpreting expiry, or nil when there is none
	Get(ctx context.Context, productID string) (*entity.PurchaseLock, error)

	// ListByHolder returns every lock stored for holderID
	ListByHolder(ctx context.Context, holderID string) ([]*entity.PurchaseLock, error)

	// DeleteExpired removes locks expired at now and returns how many were removed
	DeleteExpired(ctx context.Context, now time.Time, ttl time.Duration) (int, error)
}
