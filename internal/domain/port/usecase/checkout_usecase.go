package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// CheckoutUseCase manages server-side checkout sessions and authoritative totals
type CheckoutUseCase interface {
	// Create starts a session for ownerID, replacing any earlier one
	Create(ctx context.Context, ownerID string, cart []entity.LineItem) (*entity.CheckoutSession, error)

	// Get returns the live session or nil. Expired sessions are purged.
	Get(ctx context.Context, ownerID string) (*entity.CheckoutSession, error)

	// Require returns the live session
	//
	// Possible errors:
	// - ErrSessionNotFound: If there is no session
	// - ErrSessionExpired: If the session expired; it is purged
	Require(ctx context.Context, ownerID string) (*entity.CheckoutSession, error)

	// Update merges patch into the live session
	//
	// Possible errors:
	// - ErrSessionNotFound: If there is no live session
	Update(ctx context.Context, ownerID string, patch entity.SessionPatch) (*entity.CheckoutSession, error)

	// Clear deletes the session and reports whether one existed
	Clear(ctx context.Context, ownerID string) (bool, error)

	// Recalculate prices cart from the catalog only
	Recalculate(ctx context.Context, cart []entity.LineItem, prefecture string) (*entity.ServerCalculation, error)

	// Verify recalculates the stored cart and compares the client's total
	//
	// Possible errors:
	// - ErrSessionNotFound: If there is no live session
	Verify(ctx context.Context, ownerID string, clientTotal int64) (*entity.AmountVerification, *entity.ServerCalculation, error)
}
