package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	TransientError    ErrorType = "transient"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
)

// ErrorClassifier provides methods to classify database errors
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	switch {
	case err == nil:
		return ""
	case c.IsDuplicateKeyError(err):
		return DuplicateKeyError
	case c.IsLockError(err):
		return LockError
	case c.IsTransientError(err):
		return TransientError
	case c.IsConnectionError(err):
		return ConnectionError
	default:
		return ""
	}
}

// IsDuplicateKeyError checks if the error is a duplicate key error
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	return containsAny(err, "duplicate key", "unique constraint")
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	return containsAny(err, "connection reset", "connection refused", "timeout", "eof", "server closed", "broken pipe")
}

// IsLockError checks if the error is due to row locking
func (c *ErrorClassifier) IsLockError(err error) bool {
	return containsAny(err, "deadlock", "lock wait timeout", "could not serialize access", "serialization failure")
}

// IsConnectionError checks if the error is related to connectivity
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	return containsAny(err, "connection", "dial", "network") || c.IsTransientError(err)
}

// IsContextError checks if an error is a context timeout or cancellation
func (c *ErrorClassifier) IsContextError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func containsAny(err error, fragments ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

// storageError wraps a backend failure as ErrStorage unless it already carries a domain error
func storageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errs.ErrorCode(err) != errs.CodeInternalServer {
		return err
	}
	return fmt.Errorf("%w: %s: %s", errs.ErrStorage, operation, err.Error())
}

// loadDocument decodes the JSON document at key into out and reports whether it existed
func loadDocument(ctx context.Context, store persistence.KeyValueStore, key string, out any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return false, storageError("load "+key, err)
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %s", errs.ErrStorage, key, err.Error())
	}
	return true, nil
}

// saveDocument encodes value as JSON under key
func saveDocument(ctx context.Context, store persistence.KeyValueStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %s", errs.ErrStorage, key, err.Error())
	}
	return storageError("save "+key, store.Set(ctx, key, raw))
}
