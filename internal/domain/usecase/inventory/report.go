package inventory

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

func (l *Ledger) ValidateCart(ctx context.Context, items []entity.LineItem) (*entity.CartValidation, error) {
	if err := entity.ValidateLineItems(items); err != nil {
		return nil, err
	}

	merged := entity.MergeLineItems(items)
	checks := make([]entity.Availability, 0, len(merged))
	for _, item := range merged {
		availability, err := l.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		checks = append(checks, *availability)
	}
	return entity.NewCartValidation(checks), nil
}

func (l *Ledger) LowStock(ctx context.Context, threshold int) ([]*entity.InventoryRecord, error) {
	if threshold <= 0 {
		threshold = l.lowStockThreshold
	}

	records, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]*entity.InventoryRecord, 0)
	for _, rec := range records {
		if entity.IsLowStock(rec.Stock, threshold) {
			low = append(low, rec)
		}
	}
	return low, nil
}

// Report covers every catalog product, including ones that were never stocked
func (l *Ledger) Report(ctx context.Context) (*entity.InventoryReport, error) {
	products, err := l.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	records, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*entity.InventoryRecord, len(records))
	for _, rec := range records {
		byProduct[rec.ProductID] = rec
	}

	items := make([]entity.InventoryReportItem, 0, len(products))
	for _, p := range products {
		item := entity.InventoryReportItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
		}
		if rec, ok := byProduct[p.ID]; ok {
			item.Stock = rec.Stock
			item.LastUpdated = rec.LastUpdated
		}
		item.StockValue = int64(item.Stock) * p.UnitPrice
		item.LowStock = entity.IsLowStock(item.Stock, l.lowStockThreshold)
		items = append(items, item)
	}
	return entity.NewInventoryReport(items, l.timeProvider.Now()), nil
}

func (l *Ledger) Changes(ctx context.Context, limit int) ([]entity.InventoryChange, error) {
	if limit <= 0 {
		limit = defaultChangesLimit
	}
	if limit > entity.MaxInventoryChanges {
		limit = entity.MaxInventoryChanges
	}
	return l.repo.Changes(ctx, limit)
}

// SyncHarvest validates the whole batch before writing any of it
func (l *Ledger) SyncHarvest(ctx context.Context, items []usecase.HarvestItem, actor string) ([]*entity.InventoryRecord, error) {
	if len(items) == 0 {
		return nil, errs.ErrInvalidRequest
	}
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, errs.ErrInvalidProductID
		}
		if item.Stock < 0 {
			return nil, errs.ErrInvalidQuantity
		}
	}
	actor = defaultString(actor, entity.ReasonHarvestSync)

	updated := make([]*entity.InventoryRecord, 0, len(items))
	for _, item := range items {
		rec, err := l.SetStock(ctx, item.ProductID, item.Stock, entity.ReasonHarvestSync, actor)
		if err != nil {
			return updated, err
		}
		updated = append(updated, rec)
	}

	l.logger.Info("Harvest synced", map[string]any{
		"products": len(updated),
		"actor":    actor,
	})
	return updated, nil
}
