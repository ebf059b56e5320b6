package gateway

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// Catalog is read-only product reference data
type Catalog interface {
	// GetProduct returns ErrProductNotFound for unknown IDs
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)

	// ListProducts returns the whole catalog ordered by ID
	ListProducts(ctx context.Context) ([]*entity.Product, error)
}
