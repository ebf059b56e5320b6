package model

import (
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// PurchaseLock is the row form of a purchase lock. ExpiresAt is denormalized so the
// claim upsert and the sweep can compare it directly.
type PurchaseLock struct {
	ProductID         string    `gorm:"primaryKey;size:100"`
	HolderID          string    `gorm:"not null;size:255;index"`
	RequestedQuantity int       `gorm:"not null"`
	AcquiredAt        time.Time `gorm:"not null"`
	ExpiresAt         time.Time `gorm:"not null;index"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName specifies the table name for PurchaseLock
func (PurchaseLock) TableName() string {
	return "purchase_locks"
}

// ToEntity converts the row to a domain lock
func (l *PurchaseLock) ToEntity() *entity.PurchaseLock {
	return &entity.PurchaseLock{
		ProductID:         l.ProductID,
		HolderID:          l.HolderID,
		AcquiredAt:        l.AcquiredAt,
		RequestedQuantity: l.RequestedQuantity,
	}
}
