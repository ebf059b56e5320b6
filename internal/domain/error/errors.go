package error

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidQuantity         = 4001
	CodeInvalidRequest          = 4002
	CodeInvalidProductID        = 4003
	CodeInvalidHolderID         = 4004
	CodeQuantityBelowMinimum    = 4005
	CodeQuantityAboveMaximum    = 4006
	CodeAmountTampering         = 4007
	CodeCannotShip              = 4008
	CodeUnsupportedPayment      = 4009
	CodeEmptyCart               = 4010
	CodeInvalidEmail            = 4011
	CodePaymentDeclined         = 4020
	CodeProductNotFound         = 4040
	CodeOrderNotFound           = 4041
	CodeSessionNotFound         = 4042
	CodeInvalidOrderState       = 4090
	CodeDuplicateNotification   = 4091
	CodeOrderIDConflict         = 4092
	CodeSessionExpired          = 4100
	CodeInsufficientStock       = 4220
	CodeOutOfStock              = 4221
	CodeProductLocked           = 4230
	CodeNotificationRateLimited = 4290

	// 5xxx - Server errors
	CodeInternalServer = 5000
	CodeStorage        = 5001
	CodeRollbackFailed = 5002
	CodeGatewayFailure = 5020
)

// Base error types
var (
	// ErrInvalidQuantity is returned when a requested quantity is not a positive integer
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidProductID is returned when the product ID is empty
	ErrInvalidProductID = errors.New("product ID cannot be empty")

	// ErrInvalidHolderID is returned when the lock holder / session owner ID is empty
	ErrInvalidHolderID = errors.New("holder ID cannot be empty")

	// ErrQuantityBelowMinimum is returned when the quantity is under the product's minimum order
	ErrQuantityBelowMinimum = errors.New("quantity is below the minimum order quantity")

	// ErrQuantityAboveMaximum is returned when the quantity exceeds the product's maximum order
	ErrQuantityAboveMaximum = errors.New("quantity exceeds the maximum order quantity")

	// ErrEmptyCart is returned when a totals calculation or order is attempted on an empty cart
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductNotFound is returned when the catalog has no entry for a product
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock is returned when fewer units are available than requested
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOutOfStock is returned when a product has no stock at all
	ErrOutOfStock = errors.New("out of stock")

	// ErrProductLocked is returned when another shopper holds the purchase lock
	ErrProductLocked = errors.New("product is locked by another shopper")

	// ErrAmountTampering is returned when the client-submitted total disagrees with the server total
	ErrAmountTampering = errors.New("order amount does not match server calculation")

	// ErrCannotShip is returned when the cart is below the minimum order or the area is excluded
	ErrCannotShip = errors.New("order cannot be shipped")

	// ErrSessionNotFound is returned when there is no checkout session for the owner
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrSessionExpired is returned when the checkout session timed out
	ErrSessionExpired = errors.New("checkout session expired")

	// ErrOrderNotFound is returned when the requested order doesn't exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderState is returned when an order transition is not allowed from its current status
	ErrInvalidOrderState = errors.New("invalid order state for this operation")

	// ErrUnsupportedPaymentMethod is returned when no gateway is registered for the payment method
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

	// ErrPaymentDeclined is returned when the gateway declines the payment
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrGatewayFailure is returned when a payment or notification gateway fails unexpectedly
	ErrGatewayFailure = errors.New("gateway failure")

	// ErrRollbackFailed is returned when a compensating action could not be applied
	ErrRollbackFailed = errors.New("rollback failed")

	// ErrInvalidEmail is returned when an e-mail address, subject or body is not valid
	ErrInvalidEmail = errors.New("invalid email message")

	// ErrOrderIDConflict is returned when an order ID is reused by another shopper or for another cart
	ErrOrderIDConflict = errors.New("order ID already used for a different order")

	// ErrDuplicateNotification is returned when the same notification was already sent
	ErrDuplicateNotification = errors.New("notification already sent")

	// ErrNotificationRateLimited is returned when a recipient exceeded the send rate
	ErrNotificationRateLimited = errors.New("notification rate limit exceeded")

	// ErrStorage is returned when the backing store fails
	ErrStorage = errors.New("storage error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return CodeInvalidQuantity
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrInvalidProductID):
		return CodeInvalidProductID
	case errors.Is(err, ErrInvalidHolderID):
		return CodeInvalidHolderID
	case errors.Is(err, ErrQuantityBelowMinimum):
		return CodeQuantityBelowMinimum
	case errors.Is(err, ErrQuantityAboveMaximum):
		return CodeQuantityAboveMaximum
	case errors.Is(err, ErrAmountTampering):
		return CodeAmountTampering
	case errors.Is(err, ErrCannotShip):
		return CodeCannotShip
	case errors.Is(err, ErrUnsupportedPaymentMethod):
		return CodeUnsupportedPayment
	case errors.Is(err, ErrEmptyCart):
		return CodeEmptyCart
	case errors.Is(err, ErrInvalidEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrPaymentDeclined):
		return CodePaymentDeclined
	case errors.Is(err, ErrProductNotFound):
		return CodeProductNotFound
	case errors.Is(err, ErrOrderNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrInvalidOrderState):
		return CodeInvalidOrderState
	case errors.Is(err, ErrDuplicateNotification):
		return CodeDuplicateNotification
	case errors.Is(err, ErrOrderIDConflict):
		return CodeOrderIDConflict
	case errors.Is(err, ErrSessionExpired):
		return CodeSessionExpired
	case errors.Is(err, ErrOutOfStock):
		return CodeOutOfStock
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrProductLocked):
		return CodeProductLocked
	case errors.Is(err, ErrNotificationRateLimited):
		return CodeNotificationRateLimited
	case errors.Is(err, ErrRollbackFailed):
		return CodeRollbackFailed
	case errors.Is(err, ErrGatewayFailure):
		return CodeGatewayFailure
	case errors.Is(err, ErrStorage):
		return CodeStorage
	default:
		return CodeInternalServer
	}
}

// ProductLockedError carries the retry hint for a contended purchase lock
type ProductLockedError struct {
	ProductID         string
	RetryAfterSeconds int
}

// Error implements the error interface
func (e *ProductLockedError) Error() string {
	return fmt.Sprintf("product %s is locked by another shopper, retry after %ds",
		e.ProductID, e.RetryAfterSeconds)
}

// Is checks if the target error is an ErrProductLocked
func (e *ProductLockedError) Is(target error) bool {
	return target == ErrProductLocked
}

// LogFields returns a map of fields for structured logging
func (e *ProductLockedError) LogFields() map[string]any {
	return map[string]any{
		"error_type":          "product_locked",
		"product_id":          e.ProductID,
		"retry_after_seconds": e.RetryAfterSeconds,
		"error_code":          CodeProductLocked,
	}
}

// NewProductLockedError creates a new product locked error
func NewProductLockedError(productID string, retryAfterSeconds int) error {
	return &ProductLockedError{
		ProductID:         productID,
		RetryAfterSeconds: retryAfterSeconds,
	}
}

// InsufficientStockError provides detailed error information for a stock shortage
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	if e.Available == 0 {
		return fmt.Sprintf("product %s is out of stock (requested %d)", e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Is matches ErrInsufficientStock always and ErrOutOfStock when nothing is left
func (e *InsufficientStockError) Is(target error) bool {
	if target == ErrInsufficientStock {
		return true
	}
	return target == ErrOutOfStock && e.Available == 0
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientStockError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_stock",
		"product_id": e.ProductID,
		"requested":  e.Requested,
		"available":  e.Available,
		"error_code": ErrorCode(e),
	}
}

// NewInsufficientStockError creates a new detailed insufficient stock error
func NewInsufficientStockError(productID string, requested, available int) error {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// QuantityBoundsError reports a quantity outside a product's order limits
type QuantityBoundsError struct {
	ProductID string
	Quantity  int
	Limit     int
	Err       error
}

// Error implements the error interface
func (e *QuantityBoundsError) Error() string {
	return fmt.Sprintf("quantity %d for product %s violates limit %d: %v",
		e.Quantity, e.ProductID, e.Limit, e.Err)
}

// Unwrap returns the underlying error
func (e *QuantityBoundsError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *QuantityBoundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "quantity_bounds",
		"product_id": e.ProductID,
		"quantity":   e.Quantity,
		"limit":      e.Limit,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewQuantityBoundsError wraps ErrQuantityBelowMinimum or ErrQuantityAboveMaximum with details
func NewQuantityBoundsError(productID string, quantity, limit int, err error) error {
	return &QuantityBoundsError{
		ProductID: productID,
		Quantity:  quantity,
		Limit:     limit,
		Err:       err,
	}
}

// TamperingError records the two totals that disagreed
type TamperingError struct {
	ClientTotal int64
	ServerTotal int64
}

// Error implements the error interface. The message is safe to show to shoppers.
func (e *TamperingError) Error() string {
	return ErrAmountTampering.Error()
}

// Is checks if the target error is an ErrAmountTampering
func (e *TamperingError) Is(target error) bool {
	return target == ErrAmountTampering
}

// LogFields returns a map of fields for structured logging
func (e *TamperingError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "amount_tampering",
		"client_total": e.ClientTotal,
		"server_total": e.ServerTotal,
		"difference":   e.ClientTotal - e.ServerTotal,
		"error_code":   CodeAmountTampering,
	}
}

// NewTamperingError creates a new tampering error
func NewTamperingError(clientTotal, serverTotal int64) error {
	return &TamperingError{ClientTotal: clientTotal, ServerTotal: serverTotal}
}

// RollbackError is the critical failure raised when compensations could not all be applied
type RollbackError struct {
	OrderID  string
	Reason   string
	Failures []error
}

// Error implements the error interface
func (e *RollbackError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("rollback failed for order %s (reason: %s): %s",
		e.OrderID, e.Reason, strings.Join(msgs, "; "))
}

// Is checks if the target error is an ErrRollbackFailed
func (e *RollbackError) Is(target error) bool {
	return target == ErrRollbackFailed
}

// Unwrap exposes every compensation failure to errors.Is / errors.As
func (e *RollbackError) Unwrap() []error {
	return e.Failures
}

// LogFields returns a map of fields for structured logging
func (e *RollbackError) LogFields() map[string]any {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return map[string]any{
		"error_type": "rollback_failed",
		"order_id":   e.OrderID,
		"reason":     e.Reason,
		"failures":   msgs,
		"error_code": CodeRollbackFailed,
	}
}

// NewRollbackError creates a new rollback error
func NewRollbackError(orderID, reason string, failures []error) error {
	return &RollbackError{OrderID: orderID, Reason: reason, Failures: failures}
}

// IsStockError checks if the error is any stock-class rejection
func IsStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrQuantityBelowMinimum) ||
		errors.Is(err, ErrQuantityAboveMaximum)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsClientError checks if the error maps to a 4xxx code
func IsClientError(err error) bool {
	code := ErrorCode(err)
	return code >= 4000 && code < 5000
}
