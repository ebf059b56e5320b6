package persistence

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// InventoryRepository is the authoritative stock store.
// Every mutation is read-modify-write atomic per product and appends to the change log.
type InventoryRepository interface {
	// Get returns the record of productID. Products never stocked read as zero stock.
	Get(ctx context.Context, productID string) (*entity.InventoryRecord, error)

	// List returns every stored record
	List(ctx context.Context) ([]*entity.InventoryRecord, error)

	// Adjust applies a relative change clamped at zero
	//
	// Possible errors:
	// - ErrStorage: If the mutation could not be committed
	Adjust(ctx context.Context, mutation entity.StockMutation) (*entity.InventoryRecord, error)

	// Set replaces the stock count of a product
	Set(ctx context.Context, productID string, stock int, reason, actor string) (*entity.InventoryRecord, error)

	// ReserveAll decrements every line or none of them.
	// A shortage is reported through the result, not as an error.
	ReserveAll(ctx context.Context, items []entity.LineItem, reason, actor string) (*entity.ReservationResult, error)

	// ReleaseAll increments every line; it is the compensation of ReserveAll
	ReleaseAll(ctx context.Context, items []entity.LineItem, reason, actor string) error

	// Changes returns at most limit change-log entries, newest first
	Changes(ctx context.Context, limit int) ([]entity.InventoryChange, error)
}
