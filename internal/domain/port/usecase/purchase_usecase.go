package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// AddToCartRequest asks to put Quantity more units of a product in the shopper's cart
type AddToCartRequest struct {
	HolderID  string
	ProductID string
	Quantity  int
	Cart      []entity.LineItem // client cart before the change
}

// AddToCartResult reports whether the item was added and, if not, why
type AddToCartResult struct {
	Success           bool                 `json:"success"`
	Cart              []entity.LineItem    `json:"cart,omitempty"`
	Lock              *entity.PurchaseLock `json:"lock,omitempty"`
	Locked            bool                 `json:"locked,omitempty"`
	RetryAfterSeconds int                  `json:"retryAfterSeconds,omitempty"`
	Availability      *entity.Availability `json:"availability,omitempty"`
}

// PlaceOrderRequest is the shopper's final confirmation
type PlaceOrderRequest struct {
	OwnerID       string
	OrderID       string // optional; generated when empty
	ClientTotal   int64
	Customer      entity.Customer
	PaymentMethod entity.PaymentMethod
}

// PurchaseUseCase is the storefront purchase flow from cart to order
type PurchaseUseCase interface {
	// AddToCart validates bounds, takes the purchase lock and checks stock
	AddToCart(ctx context.Context, req AddToCartRequest) (*AddToCartResult, error)

	// ReleaseHold gives up the purchase lock on a product
	ReleaseHold(ctx context.Context, productID, holderID string) (bool, error)

	// BeginCheckout opens a checkout session with its server calculation
	BeginCheckout(ctx context.Context, ownerID string, cart []entity.LineItem, prefecture string) (*entity.CheckoutSession, error)

	// PlaceOrder verifies the session total and runs the order saga
	//
	// Possible errors:
	// - ErrSessionNotFound, ErrSessionExpired: If the checkout session is gone
	// - TamperingError: If the client total differs from the server total
	// - ErrCannotShip: If the cart cannot be shipped
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*ProcessResult, error)
}
