package entity

import (
	"time"
)

// DefaultLockTTL is how long an unreleased purchase lock stays valid
const DefaultLockTTL = 10 * time.Minute

// PurchaseLock is an advisory, per-product reservation of the right to buy
type PurchaseLock struct {
	ProductID         string    `json:"productId"`
	HolderID          string    `json:"holderId"`
	AcquiredAt        time.Time `json:"acquiredAt"`
	RequestedQuantity int       `json:"requestedQuantity"`
}

// ExpiresAt is the instant the lock stops being valid
func (l *PurchaseLock) ExpiresAt(ttl time.Duration) time.Time {
	return l.AcquiredAt.Add(ttl)
}

// IsExpired reports whether now - AcquiredAt >= ttl
func (l *PurchaseLock) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.AcquiredAt) >= ttl
}

// Remaining is the validity left at now, never negative
func (l *PurchaseLock) Remaining(now time.Time, ttl time.Duration) time.Duration {
	remaining := ttl - now.Sub(l.AcquiredAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanBeClaimedBy reports whether holderID may take the lock at now
func (l *PurchaseLock) CanBeClaimedBy(holderID string, now time.Time, ttl time.Duration) bool {
	return l.HolderID == holderID || l.IsExpired(now, ttl)
}

// RetryAfterSeconds rounds a remaining duration up to whole seconds
func RetryAfterSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// LockResult is the structured outcome of an acquire attempt. Contention is not an error.
type LockResult struct {
	Granted           bool          `json:"granted"`
	RetryAfterSeconds int           `json:"retryAfterSeconds,omitempty"`
	Lock              *PurchaseLock `json:"lock,omitempty"`
}
