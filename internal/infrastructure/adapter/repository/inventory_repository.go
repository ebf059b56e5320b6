package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errShortage aborts a reservation transaction without turning the shortage into an error
var errShortage = errors.New("reservation shortage")

// mutateFunc changes the locked records in place and returns the change entries in order
type mutateFunc func(records map[string]*entity.InventoryRecord, now time.Time) ([]entity.InventoryChange, error)

// InventoryRepository implements the inventory ledger store on PostgreSQL.
// Each mutation runs in one transaction holding row locks on every product it touches.
type InventoryRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
	errorMapper     *database.ErrorMapper
	retryConfig     database.RetryConfig
}

// NewInventoryRepository creates a new InventoryRepository instance
func NewInventoryRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *InventoryRepository {
	return &InventoryRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
		errorMapper:     database.NewErrorMapper(),
		retryConfig:     database.DefaultRetryConfig(),
	}
}

func (r *InventoryRepository) Get(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	var row model.InventoryRecord
	result := r.db.WithContext(ctx).Where("product_id = ?", productID).Take(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return &entity.InventoryRecord{ProductID: productID}, nil
	}
	if result.Error != nil {
		return nil, r.errorMapper.MapError(result.Error, "get inventory")
	}
	return row.ToEntity(), nil
}

func (r *InventoryRepository) List(ctx context.Context) ([]*entity.InventoryRecord, error) {
	var rows []model.InventoryRecord
	if err := r.db.WithContext(ctx).Order("product_id").Find(&rows).Error; err != nil {
		return nil, r.errorMapper.MapError(err, "list inventory")
	}

	records := make([]*entity.InventoryRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToEntity())
	}
	return records, nil
}

func (r *InventoryRepository) Adjust(ctx context.Context, mutation entity.StockMutation) (*entity.InventoryRecord, error) {
	records, err := r.mutate(ctx, "adjust inventory", []string{mutation.ProductID}, true,
		func(records map[string]*entity.InventoryRecord, now time.Time) ([]entity.InventoryChange, error) {
			rec := records[mutation.ProductID]
			return []entity.InventoryChange{rec.Apply(mutation.Delta, mutation.Reason, mutation.Actor, now)}, nil
		})
	if err != nil {
		return nil, err
	}
	return records[mutation.ProductID], nil
}

func (r *InventoryRepository) Set(ctx context.Context, productID string, stock int, reason, actor string) (*entity.InventoryRecord, error) {
	records, err := r.mutate(ctx, "set inventory", []string{productID}, true,
		func(records map[string]*entity.InventoryRecord, now time.Time) ([]entity.InventoryChange, error) {
			return []entity.InventoryChange{records[productID].SetStock(stock, reason, actor, now)}, nil
		})
	if err != nil {
		return nil, err
	}
	return records[productID], nil
}

func (r *InventoryRepository) ReserveAll(ctx context.Context, items []entity.LineItem, reason, actor string) (*entity.ReservationResult, error) {
	merged := entity.MergeLineItems(items)
	var shortage *entity.StockShortage

	_, err := r.mutate(ctx, "reserve inventory", productIDsOf(merged), false,
		func(records map[string]*entity.InventoryRecord, now time.Time) ([]entity.InventoryChange, error) {
			stock := make(map[string]int, len(records))
			for id, rec := range records {
				stock[id] = rec.Stock
			}
			if shortage = entity.CheckReservation(merged, stock); shortage != nil {
				return nil, errShortage
			}

			changes := make([]entity.InventoryChange, 0, len(merged))
			for _, item := range merged {
				changes = append(changes, records[item.ProductID].Apply(-item.Quantity, reason, actor, now))
			}
			return changes, nil
		})
	if errors.Is(err, errShortage) {
		return &entity.ReservationResult{Success: false, FailedItem: shortage}, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.ReservationResult{Success: true}, nil
}

func (r *InventoryRepository) ReleaseAll(ctx context.Context, items []entity.LineItem, reason, actor string) error {
	merged := entity.MergeLineItems(items)

	_, err := r.mutate(ctx, "release inventory", productIDsOf(merged), true,
		func(records map[string]*entity.InventoryRecord, now time.Time) ([]entity.InventoryChange, error) {
			changes := make([]entity.InventoryChange, 0, len(merged))
			for _, item := range merged {
				changes = append(changes, records[item.ProductID].Apply(item.Quantity, reason, actor, now))
			}
			return changes, nil
		})
	return err
}

func (r *InventoryRepository) Changes(ctx context.Context, limit int) ([]entity.InventoryChange, error) {
	if limit <= 0 || limit > entity.MaxInventoryChanges {
		limit = entity.MaxInventoryChanges
	}

	var rows []model.InventoryChange
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, r.errorMapper.MapError(err, "list inventory changes")
	}

	changes := make([]entity.InventoryChange, 0, len(rows))
	for i := range rows {
		changes = append(changes, rows[i].ToEntity())
	}
	return changes, nil
}

// mutate locks the rows of productIDs, runs fn and persists what it changed. Rows are
// locked in product ID order so two multi-product reservations cannot deadlock.
// With createMissing, absent products get a zero-stock row first.
func (r *InventoryRepository) mutate(ctx context.Context, operation string, productIDs []string, createMissing bool, fn mutateFunc) (map[string]*entity.InventoryRecord, error) {
	ids := uniqueSorted(productIDs)
	var records map[string]*entity.InventoryRecord

	err := database.RetryOnTransientError(ctx, r.retryConfig, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := r.timeProvider.Now()

			if createMissing {
				placeholders := make([]model.InventoryRecord, 0, len(ids))
				for _, id := range ids {
					placeholders = append(placeholders, model.InventoryRecord{
						ProductID:   id,
						LastUpdated: now,
						UpdatedBy:   "system",
						CreatedAt:   now,
					})
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholders).Error; err != nil {
					return err
				}
			}

			var rows []model.InventoryRecord
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("product_id IN ?", ids).
				Order("product_id").
				Find(&rows).Error; err != nil {
				return err
			}

			records = make(map[string]*entity.InventoryRecord, len(ids))
			for i := range rows {
				records[rows[i].ProductID] = rows[i].ToEntity()
			}
			for _, id := range ids {
				if _, ok := records[id]; !ok {
					records[id] = &entity.InventoryRecord{ProductID: id}
				}
			}

			changes, err := fn(records, now)
			if err != nil {
				return err
			}

			for _, change := range changes {
				rec := records[change.ProductID]
				row := model.InventoryRecord{
					ProductID:   rec.ProductID,
					Stock:       rec.Stock,
					LastUpdated: rec.LastUpdated,
					UpdatedBy:   rec.UpdatedBy,
					CreatedAt:   now,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "product_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"stock", "last_updated", "updated_by"}),
				}).Create(&row).Error; err != nil {
					return err
				}
			}

			if len(changes) == 0 {
				return nil
			}
			logRows := make([]model.InventoryChange, 0, len(changes))
			for _, change := range changes {
				logRows = append(logRows, model.NewInventoryChange(change))
			}
			if err := tx.Create(&logRows).Error; err != nil {
				return err
			}

			return tx.Exec(`
				DELETE FROM inventory_changes
				WHERE id <= (SELECT id FROM inventory_changes ORDER BY id DESC OFFSET ? LIMIT 1)`,
				entity.MaxInventoryChanges,
			).Error
		})
	}, nil, r.logger)

	if errors.Is(err, errShortage) {
		return nil, err
	}
	if err != nil {
		r.logger.Error("Inventory mutation failed", map[string]any{
			"operation":   operation,
			"product_ids": ids,
			"error_type":  string(r.errorClassifier.Classify(err)),
			"error":       err.Error(),
		})
		return nil, r.errorMapper.MapError(err, operation)
	}
	return records, nil
}

func productIDsOf(items []entity.LineItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
