package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
)

// OrderRequest is a verified order ready to be placed
type OrderRequest struct {
	OrderID     string
	OwnerID     string
	Items       []entity.LineItem
	Calculation *entity.ServerCalculation
	Customer    entity.Customer
}

// ProcessResult is the outcome of placing an order
type ProcessResult struct {
	Success         bool                     `json:"success"`
	Transaction     *entity.OrderTransaction `json:"transaction,omitempty"`
	Order           *entity.Order            `json:"order,omitempty"`
	Payment         *gateway.PaymentResult   `json:"payment,omitempty"`
	Error           string                   `json:"error,omitempty"`
	RolledBack      bool                     `json:"rolledBack,omitempty"`
	CriticalFailure bool                     `json:"criticalFailure,omitempty"`

	// Replayed is set when the outcome was recorded by an earlier request with the same order ID
	Replayed bool `json:"replayed,omitempty"`

	// Err is the failure behind Error, for errors.Is checks
	Err error `json:"-"`
}

// OrderUseCase coordinates reservation, payment and order creation with compensation
type OrderUseCase interface {
	// Process runs the order saga. Business failures are reported through the result.
	//
	// Possible errors:
	// - ErrInvalidRequest, ErrEmptyCart: If the request is malformed; nothing was started
	// - ErrOrderIDConflict: If the order ID was used by another shopper or for another cart
	Process(ctx context.Context, req OrderRequest, method entity.PaymentMethod) (*ProcessResult, error)

	// Settle confirms a voucher order once the shopper paid at the store
	Settle(ctx context.Context, orderID string) (*entity.Order, error)

	// Refund voids the payment, returns the stock and marks the order refunded
	Refund(ctx context.Context, orderID, reason string) (*entity.Order, error)

	// Order returns the order record
	Order(ctx context.Context, orderID string) (*entity.Order, error)

	// Transaction returns the persisted transaction of an order
	Transaction(ctx context.Context, orderID string) (*entity.OrderTransaction, error)
}
