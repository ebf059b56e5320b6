package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

// Manager hands out advisory per-product purchase locks.
// Expiry is evaluated lazily on every call; no timers are involved.
type Manager struct {
	repo         persistence.PurchaseLockRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	ttl          time.Duration
}

// NewManager creates a lock manager. A non-positive ttl falls back to entity.DefaultLockTTL.
func NewManager(
	repo persistence.PurchaseLockRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	ttl time.Duration,
) *Manager {
	if ttl <= 0 {
		ttl = entity.DefaultLockTTL
	}
	return &Manager{
		repo:         repo,
		timeProvider: timeProvider,
		logger:       logger,
		ttl:          ttl,
	}
}

// TTL returns the lock validity period
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Acquire grants the lock when the product is free, already held by holderID, or held by an
// expired lock. Contention is reported through the result.
func (m *Manager) Acquire(ctx context.Context, productID, holderID string, quantity int) (*entity.LockResult, error) {
	if err := validateKeys(productID, holderID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, errs.ErrInvalidQuantity
	}

	now := m.timeProvider.Now()
	candidate := &entity.PurchaseLock{
		ProductID:         productID,
		HolderID:          holderID,
		AcquiredAt:        now,
		RequestedQuantity: quantity,
	}

	current, granted, err := m.repo.Claim(ctx, candidate, m.ttl)
	if err != nil {
		m.logger.Error("Failed to claim purchase lock", map[string]any{
			"productId": productID,
			"holderId":  holderID,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("failed to claim purchase lock: %w", err)
	}

	if !granted {
		retryAfter := entity.RetryAfterSeconds(current.Remaining(now, m.ttl))
		m.logger.Debug("Purchase lock held by another shopper", map[string]any{
			"productId":         productID,
			"holderId":          holderID,
			"retryAfterSeconds": retryAfter,
		})
		return &entity.LockResult{Granted: false, RetryAfterSeconds: retryAfter}, nil
	}

	m.logger.Debug("Purchase lock granted", map[string]any{
		"productId": productID,
		"holderId":  holderID,
		"quantity":  quantity,
	})
	return &entity.LockResult{Granted: true, Lock: current}, nil
}

// Release removes the lock only if holderID owns it. Releasing twice returns false the second time.
func (m *Manager) Release(ctx context.Context, productID, holderID string) (bool, error) {
	if err := validateKeys(productID, holderID); err != nil {
		return false, err
	}

	released, err := m.repo.Release(ctx, productID, holderID)
	if err != nil {
		return false, fmt.Errorf("failed to release purchase lock: %w", err)
	}
	if released {
		m.logger.Debug("Purchase lock released", map[string]any{
			"productId": productID,
			"holderId":  holderID,
		})
	}
	return released, nil
}

// Get returns the lock in force, or nil. An expired lock is reported absent and left in
// place; Claim takes it over atomically and Sweep removes it.
func (m *Manager) Get(ctx context.Context, productID string) (*entity.PurchaseLock, error) {
	current, err := m.repo.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase lock: %w", err)
	}
	if current == nil || current.IsExpired(m.timeProvider.Now(), m.ttl) {
		return nil, nil
	}
	return current, nil
}

// ReleaseAll drops every lock held by holderID and returns how many were released
func (m *Manager) ReleaseAll(ctx context.Context, holderID string) (int, error) {
	if strings.TrimSpace(holderID) == "" {
		return 0, errs.ErrInvalidHolderID
	}

	locks, err := m.repo.ListByHolder(ctx, holderID)
	if err != nil {
		return 0, fmt.Errorf("failed to list purchase locks: %w", err)
	}

	released := 0
	for _, l := range locks {
		ok, err := m.repo.Release(ctx, l.ProductID, holderID)
		if err != nil {
			return released, fmt.Errorf("failed to release purchase lock on %s: %w", l.ProductID, err)
		}
		if ok {
			released++
		}
	}
	return released, nil
}

// Sweep deletes every expired lock
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	removed, err := m.repo.DeleteExpired(ctx, m.timeProvider.Now(), m.ttl)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep purchase locks: %w", err)
	}
	return removed, nil
}

func validateKeys(productID, holderID string) error {
	if strings.TrimSpace(productID) == "" {
		return errs.ErrInvalidProductID
	}
	if strings.TrimSpace(holderID) == "" {
		return errs.ErrInvalidHolderID
	}
	return nil
}
