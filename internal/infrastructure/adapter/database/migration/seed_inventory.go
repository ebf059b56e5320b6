package migration

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

// SeedInventory creates a record with the configured initial stock for every product
// that has none yet. Existing records are left alone, so restarts never reset stock.
func SeedInventory(ctx context.Context, repo persistence.InventoryRepository, initial map[string]int, logger coreport.Logger) (int, error) {
	if len(initial) == 0 {
		return 0, nil
	}

	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, rec := range existing {
		known[rec.ProductID] = true
	}

	productIDs := make([]string, 0, len(initial))
	for productID := range initial {
		productIDs = append(productIDs, productID)
	}
	sort.Strings(productIDs)

	seeded := 0
	for _, productID := range productIDs {
		if known[productID] {
			continue
		}
		if _, err := repo.Set(ctx, productID, initial[productID], entity.ReasonInitialStock, "system"); err != nil {
			return seeded, err
		}
		seeded++
	}

	if seeded > 0 {
		logger.Info("Seeded initial inventory", map[string]any{
			"products": seeded,
		})
	}
	return seeded, nil
}
