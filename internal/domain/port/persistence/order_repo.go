package persistence

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// OrderRepository persists orders and their transaction audit trails
type OrderRepository interface {
	// SaveOrder creates or replaces an order
	SaveOrder(ctx context.Context, order *entity.Order) error

	// GetOrder returns an order by ID
	//
	// Possible errors:
	// - ErrOrderNotFound: If no order has this ID
	GetOrder(ctx context.Context, orderID string) (*entity.Order, error)

	// SaveTransaction creates or replaces the transaction of an order
	SaveTransaction(ctx context.Context, txn *entity.OrderTransaction) error

	// GetTransaction returns the transaction recorded for orderID
	//
	// Possible errors:
	// - ErrOrderNotFound: If no transaction exists for the order
	GetTransaction(ctx context.Context, orderID string) (*entity.OrderTransaction, error)
}
