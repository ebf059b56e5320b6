package model

import "time"

// MigrationVersion is one row of the schema history written by the migration manager.
// The newest AppliedAt is the schema the storefront runs on.
type MigrationVersion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Version   string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	AppliedAt time.Time `gorm:"not null;index"`
	Details   string    `gorm:"type:text"`
}

func (MigrationVersion) TableName() string {
	return "schema_migrations"
}
