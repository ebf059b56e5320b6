package gateway

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// PaymentResult is the outcome of confirming a payment intent.
// A decline is a result with Success false, not an error.
type PaymentResult struct {
	Success     bool      `json:"success"`
	PaymentID   string    `json:"paymentId,omitempty"`
	Pending     bool      `json:"pending,omitempty"` // settled out-of-band later
	VoucherCode string    `json:"voucherCode,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// PaymentGateway is one payment provider
type PaymentGateway interface {
	// CreateIntent registers the amount with the provider and returns a token to confirm
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error)

	// Confirm charges the intent with the shopper's method
	//
	// Possible errors:
	// - ErrGatewayFailure: If the provider could not be reached
	Confirm(ctx context.Context, token string, method entity.PaymentMethod) (*PaymentResult, error)

	// Cancel voids or refunds a payment
	Cancel(ctx context.Context, paymentID string) error
}

// PaymentGateways resolves the gateway for a payment method
type PaymentGateways interface {
	// Gateway returns ErrUnsupportedPaymentMethod for unknown types
	Gateway(method entity.PaymentMethodType) (PaymentGateway, error)
}
