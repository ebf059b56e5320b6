package model

import (
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// InventoryRecord is the row form of a product's stock count
type InventoryRecord struct {
	ProductID   string    `gorm:"primaryKey;size:100"`
	Stock       int       `gorm:"not null;default:0;check:chk_inventory_stock_non_negative,stock >= 0"`
	LastUpdated time.Time `gorm:"not null"`
	UpdatedBy   string    `gorm:"not null;size:100"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for InventoryRecord
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// ToEntity converts the row to a domain record
func (r *InventoryRecord) ToEntity() *entity.InventoryRecord {
	return &entity.InventoryRecord{
		ProductID:   r.ProductID,
		Stock:       r.Stock,
		LastUpdated: r.LastUpdated,
		UpdatedBy:   r.UpdatedBy,
	}
}

// InventoryChange is one change-log row
type InventoryChange struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ProductID string    `gorm:"not null;size:100;index"`
	OldStock  int       `gorm:"not null"`
	NewStock  int       `gorm:"not null"`
	Delta     int       `gorm:"not null"`
	Reason    string    `gorm:"not null;size:50"`
	Actor     string    `gorm:"not null;size:100"`
	Timestamp time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for InventoryChange
func (InventoryChange) TableName() string {
	return "inventory_changes"
}

// NewInventoryChange converts a domain change entry to a row
func NewInventoryChange(c entity.InventoryChange) InventoryChange {
	return InventoryChange{
		ProductID: c.ProductID,
		OldStock:  c.OldStock,
		NewStock:  c.NewStock,
		Delta:     c.Delta,
		Reason:    c.Reason,
		Actor:     c.Actor,
		Timestamp: c.Timestamp,
	}
}

// ToEntity converts the row to a domain change entry
func (c *InventoryChange) ToEntity() entity.InventoryChange {
	return entity.InventoryChange{
		ProductID: c.ProductID,
		OldStock:  c.OldStock,
		NewStock:  c.NewStock,
		Delta:     c.Delta,
		Reason:    c.Reason,
		Actor:     c.Actor,
		Timestamp: c.Timestamp,
	}
}
