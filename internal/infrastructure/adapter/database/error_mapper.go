package database

import (
	"errors"
	"fmt"
	"strings"

	domainErr "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"gorm.io/gorm"
)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error. Domain errors pass through unchanged.
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if domainErr.ErrorCode(err) != domainErr.CodeInternalServer {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr.ErrNotFound
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	// Stock can never go negative; the check constraint is the last line of defence
	case strings.Contains(errMsg, "chk_inventory_stock_non_negative"):
		return fmt.Errorf("%w: %s", domainErr.ErrInsufficientStock, operation)

	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "serialization") ||
		strings.Contains(errMsg, "lock timeout"):
		return fmt.Errorf("%w: %s: lock conflict: %s", domainErr.ErrStorage, operation, err.Error())

	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", domainErr.ErrStorage, operation)

	default:
		return fmt.Errorf("%w: %s: %s", domainErr.ErrStorage, operation, err.Error())
	}
}
