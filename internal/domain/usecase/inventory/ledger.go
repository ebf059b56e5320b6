package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/events"
)

const (
	actorSystem = "system"

	defaultChangesLimit = 100
)

// Ledger is the authoritative stock keeper of the storefront
type Ledger struct {
	repo              persistence.InventoryRepository
	catalog           gateway.Catalog
	events            *events.Emitter
	timeProvider      coreport.TimeProvider
	logger            coreport.Logger
	lowStockThreshold int
}

// NewLedger creates a ledger. A non-positive lowStockThreshold falls back to the default.
func NewLedger(
	repo persistence.InventoryRepository,
	catalog gateway.Catalog,
	emitter *events.Emitter,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	lowStockThreshold int,
) *Ledger {
	if lowStockThreshold <= 0 {
		lowStockThreshold = entity.DefaultLowStockThreshold
	}
	return &Ledger{
		repo:              repo,
		catalog:           catalog,
		events:            emitter,
		timeProvider:      timeProvider,
		logger:            logger,
		lowStockThreshold: lowStockThreshold,
	}
}

// stockAdjusted is the payload of inventory.adjusted
type stockAdjusted struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
	Stock     *int   `json:"stock,omitempty"`
	Reason    string `json:"reason"`
	Actor     string `json:"actor"`
}

func (l *Ledger) emitRecord(ctx context.Context, rec *entity.InventoryRecord, delta int, reason, actor string) {
	stock := rec.Stock
	l.events.Emit(ctx, entity.EventInventoryAdjusted, rec.ProductID, stockAdjusted{
		ProductID: rec.ProductID,
		Delta:     delta,
		Stock:     &stock,
		Reason:    reason,
		Actor:     actor,
	})
}

func (l *Ledger) emitLines(ctx context.Context, items []entity.LineItem, sign int, reason, actor string) {
	for _, item := range items {
		l.events.Emit(ctx, entity.EventInventoryAdjusted, item.ProductID, stockAdjusted{
			ProductID: item.ProductID,
			Delta:     sign * item.Quantity,
			Reason:    reason,
			Actor:     actor,
		})
	}
}

func (l *Ledger) Get(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errs.ErrInvalidProductID
	}
	return l.repo.Get(ctx, productID)
}

func (l *Ledger) List(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return l.repo.List(ctx)
}

// Adjust applies a relative change. The result is clamped at zero, so a large negative
// delta empties the product instead of failing.
func (l *Ledger) Adjust(ctx context.Context, productID string, delta int, reason, actor string) (*entity.InventoryRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errs.ErrInvalidProductID
	}
	reason, actor = defaultString(reason, entity.ReasonAdjustment), defaultString(actor, actorSystem)

	before, err := l.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	rec, err := l.repo.Adjust(ctx, entity.StockMutation{
		ProductID: productID,
		Delta:     delta,
		Reason:    reason,
		Actor:     actor,
	})
	if err != nil {
		l.logger.Error("Failed to adjust stock", map[string]any{
			"productId": productID,
			"delta":     delta,
			"error":     err.Error(),
		})
		return nil, err
	}

	l.logger.Info("Stock adjusted", map[string]any{
		"productId": productID,
		"oldStock":  before.Stock,
		"newStock":  rec.Stock,
		"reason":    reason,
		"actor":     actor,
	})
	l.emitRecord(ctx, rec, rec.Stock-before.Stock, reason, actor)
	return rec, nil
}

// SetStock replaces the stock count
func (l *Ledger) SetStock(ctx context.Context, productID string, stock int, reason, actor string) (*entity.InventoryRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errs.ErrInvalidProductID
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", errs.ErrInvalidQuantity)
	}
	reason, actor = defaultString(reason, entity.ReasonAdjustment), defaultString(actor, actorSystem)

	before, err := l.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	rec, err := l.repo.Set(ctx, productID, stock, reason, actor)
	if err != nil {
		l.logger.Error("Failed to set stock", map[string]any{
			"productId": productID,
			"stock":     stock,
			"error":     err.Error(),
		})
		return nil, err
	}

	l.logger.Info("Stock set", map[string]any{
		"productId": productID,
		"oldStock":  before.Stock,
		"newStock":  rec.Stock,
		"reason":    reason,
		"actor":     actor,
	})
	l.emitRecord(ctx, rec, rec.Stock-before.Stock, reason, actor)
	return rec, nil
}

func (l *Ledger) CheckAvailability(ctx context.Context, productID string, requested int) (*entity.Availability, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errs.ErrInvalidProductID
	}
	if requested < 1 {
		return nil, errs.ErrInvalidQuantity
	}

	rec, err := l.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	availability := entity.NewAvailability(productID, rec.Stock, requested)
	return &availability, nil
}

func (l *Ledger) ValidateQuantity(ctx context.Context, productID string, quantity int) error {
	product, err := l.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return product.ValidateQuantity(quantity)
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
