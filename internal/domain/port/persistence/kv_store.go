package persistence

import (
	"context"
)

// KeyValueStore is the durable key-value contract every stateful component persists through.
// Values are opaque bytes; callers serialize their own records as JSON.
type KeyValueStore interface {
	// Get returns the stored value, or nil with no error when the key is absent
	//
	// Possible errors:
	// - ErrStorage: If the backend cannot be reached
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	//
	// Possible errors:
	// - ErrStorage: If the write is not durable
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key and reports whether it existed
	//
	// Possible errors:
	// - ErrStorage: If the backend cannot be reached
	Remove(ctx context.Context, key string) (bool, error)
}
