package persistence

import (
	"context"
	"time"
)

// DeduplicationStore remembers keys for a limited time
type DeduplicationStore interface {
	// MarkIfAbsent records key for ttl and reports true when it was not already recorded
	MarkIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Forget removes key so the next MarkIfAbsent succeeds again
	Forget(ctx context.Context, key string) error
}

// RateLimiter counts events per key in fixed windows
type RateLimiter interface {
	// Allow counts one event for key and reports whether the window still permits it
	Allow(ctx context.Context, key string) (bool, error)
}
