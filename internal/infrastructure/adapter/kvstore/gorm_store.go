package kvstore

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps documents in the kv_entries table
type GormStore struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
}

// NewGormStore creates a store on an open connection
func NewGormStore(db *gorm.DB, timeProvider coreport.TimeProvider) *GormStore {
	return &GormStore{db: db, timeProvider: timeProvider}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %s", errs.ErrStorage, key, err.Error())
	}
	return entry.Value, nil
}

// Set upserts the document in one statement
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := model.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: s.timeProvider.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%w: set %s: %s", errs.ErrStorage, key, err.Error())
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) (bool, error) {
	result := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&model.KVEntry{})
	if result.Error != nil {
		return false, fmt.Errorf("%w: remove %s: %s", errs.ErrStorage, key, result.Error.Error())
	}
	return result.RowsAffected > 0, nil
}
