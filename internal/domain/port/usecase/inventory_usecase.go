package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// HarvestItem is one absolute stock level of a harvest sync
type HarvestItem struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

// InventoryUseCase is the inventory ledger
type InventoryUseCase interface {
	// Get returns the record of productID; products never stocked read as zero
	Get(ctx context.Context, productID string) (*entity.InventoryRecord, error)

	// List returns every stored record
	List(ctx context.Context) ([]*entity.InventoryRecord, error)

	// Adjust applies a relative change, clamped at zero
	Adjust(ctx context.Context, productID string, delta int, reason, actor string) (*entity.InventoryRecord, error)

	// SetStock replaces the stock count (admin edit, harvest sync)
	SetStock(ctx context.Context, productID string, stock int, reason, actor string) (*entity.InventoryRecord, error)

	// CheckAvailability reports whether requested units are in stock
	CheckAvailability(ctx context.Context, productID string, requested int) (*entity.Availability, error)

	// ValidateQuantity checks quantity against the catalog order bounds
	//
	// Possible errors:
	// - ErrProductNotFound: If the product is not in the catalog
	// - QuantityBoundsError: If quantity is outside the product's bounds
	ValidateQuantity(ctx context.Context, productID string, quantity int) error

	// Reserve decrements every line or none.
	// A shortage is reported through the result, not as an error.
	Reserve(ctx context.Context, items []entity.LineItem) (*entity.ReservationResult, error)

	// Release increments every line; it compensates Reserve
	Release(ctx context.Context, items []entity.LineItem, reason string) error

	// ValidateCart separates sold-out lines from lines with too little stock
	ValidateCart(ctx context.Context, items []entity.LineItem) (*entity.CartValidation, error)

	// LowStock lists products with positive stock at or below threshold (0 uses the default)
	LowStock(ctx context.Context, threshold int) ([]*entity.InventoryRecord, error)

	// Report summarizes stock for every catalog product
	Report(ctx context.Context) (*entity.InventoryReport, error)

	// Changes returns the newest change-log entries
	Changes(ctx context.Context, limit int) ([]entity.InventoryChange, error)

	// SyncHarvest sets absolute stock levels in bulk
	SyncHarvest(ctx context.Context, items []HarvestItem, actor string) ([]*entity.InventoryRecord, error)
}
