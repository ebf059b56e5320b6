package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// claimAttempts bounds the re-reads when a lock vanishes between the upsert and the read
const claimAttempts = 3

// PurchaseLockRepository implements purchase locks on PostgreSQL. The claim is a single
// upsert, so it is atomic across every instance sharing the database.
type PurchaseLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
	errorMapper     *database.ErrorMapper
	queryTimer      *database.QueryTimer
}

// NewPurchaseLockRepository creates a new PurchaseLockRepository instance
func NewPurchaseLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *PurchaseLockRepository {
	return &PurchaseLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
		errorMapper:     database.NewErrorMapper(),
		queryTimer:      database.NewQueryTimer(logger, timeProvider, 0),
	}
}

// Claim inserts the lock or takes over a row that is held by the same shopper or expired.
// The ON CONFLICT ... WHERE clause leaves a live foreign lock untouched, so RowsAffected
// tells whether the claim won.
func (r *PurchaseLockRepository) Claim(ctx context.Context, lock *entity.PurchaseLock, ttl time.Duration) (*entity.PurchaseLock, bool, error) {
	now := r.timeProvider.Now()
	expiresAt := lock.ExpiresAt(ttl)

	for attempt := 0; attempt < claimAttempts; attempt++ {
		var affected int64
		_, err := r.queryTimer.Run(ctx, "claim_purchase_lock", func() (int64, error) {
			result := r.db.WithContext(ctx).Exec(`
				INSERT INTO purchase_locks (product_id, holder_id, requested_quantity, acquired_at, expires_at, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (product_id) DO UPDATE
				SET holder_id = EXCLUDED.holder_id,
				    requested_quantity = EXCLUDED.requested_quantity,
				    acquired_at = EXCLUDED.acquired_at,
				    expires_at = EXCLUDED.expires_at,
				    updated_at = EXCLUDED.updated_at
				WHERE purchase_locks.holder_id = EXCLUDED.holder_id
				   OR purchase_locks.expires_at <= ?`,
				lock.ProductID, lock.HolderID, lock.RequestedQuantity, lock.AcquiredAt, expiresAt, now, now,
				lock.AcquiredAt,
			)
			affected = result.RowsAffected
			return result.RowsAffected, result.Error
		})
		if err != nil {
			return nil, false, r.handleDatabaseError("claiming lock", err, lock.ProductID)
		}

		if affected == 1 {
			granted := *lock
			r.logger.Debug("Purchase lock claimed", map[string]any{
				"product_id": lock.ProductID,
				"holder_id":  lock.HolderID,
				"expires_at": expiresAt,
			})
			return &granted, true, nil
		}

		current, err := r.Get(ctx, lock.ProductID)
		if err != nil {
			return nil, false, err
		}
		if current != nil {
			return current, false, nil
		}
		// released between the upsert and the read; try again
	}

	r.logger.Warn("Purchase lock kept changing hands during claim", map[string]any{
		"product_id": lock.ProductID,
		"attempts":   claimAttempts,
	})
	return nil, false, r.errorMapper.MapError(errors.New("lock claim did not settle"), "claim purchase lock")
}

func (r *PurchaseLockRepository) Release(ctx context.Context, productID, holderID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND holder_id = ?", productID, holderID).
		Delete(&model.PurchaseLock{})

	if result.Error != nil {
		// an unreleased lock still expires on its own
		if r.errorClassifier.IsContextError(result.Error) {
			r.logger.Warn("Context ended while releasing lock, lock will expire automatically", map[string]any{
				"product_id": productID,
				"error":      result.Error.Error(),
			})
		}
		return false, r.handleDatabaseError("releasing lock", result.Error, productID)
	}

	return result.RowsAffected > 0, nil
}

func (r *PurchaseLockRepository) Get(ctx context.Context, productID string) (*entity.PurchaseLock, error) {
	var row model.PurchaseLock
	result := r.db.WithContext(ctx).Where("product_id = ?", productID).Take(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, r.handleDatabaseError("reading lock", result.Error, productID)
	}
	return row.ToEntity(), nil
}

func (r *PurchaseLockRepository) ListByHolder(ctx context.Context, holderID string) ([]*entity.PurchaseLock, error) {
	var rows []model.PurchaseLock
	result := r.db.WithContext(ctx).Where("holder_id = ?", holderID).Order("product_id").Find(&rows)
	if result.Error != nil {
		return nil, r.handleDatabaseError("listing locks", result.Error, "")
	}

	locks := make([]*entity.PurchaseLock, 0, len(rows))
	for i := range rows {
		locks = append(locks, rows[i].ToEntity())
	}
	return locks, nil
}

func (r *PurchaseLockRepository) DeleteExpired(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	// acquired_at <= now - ttl is the same boundary as PurchaseLock.IsExpired
	result := r.db.WithContext(ctx).Where("acquired_at <= ?", now.Add(-ttl)).Delete(&model.PurchaseLock{})
	if result.Error != nil {
		return 0, r.handleDatabaseError("deleting expired locks", result.Error, "")
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired purchase locks removed", map[string]any{
			"locks_removed": result.RowsAffected,
		})
	}
	return int(result.RowsAffected), nil
}

func (r *PurchaseLockRepository) handleDatabaseError(operation string, err error, productID string) error {
	r.logger.Error("Database error when "+operation, map[string]any{
		"product_id": productID,
		"error_type": string(r.errorClassifier.Classify(err)),
		"error":      err.Error(),
	})
	return r.errorMapper.MapError(err, operation)
}
