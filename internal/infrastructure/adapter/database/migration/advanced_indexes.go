package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific indexes and storage settings
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateAdvancedIndexes creates PostgreSQL indexes that AutoMigrate cannot express
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	indexes := []struct {
		name string
		sql  string
	}{
		{
			// documents are looked up by prefix, e.g. every order:<id>
			name: "idx_kv_entries_key_pattern",
			sql:  `CREATE INDEX IF NOT EXISTS idx_kv_entries_key_pattern ON kv_entries (entry_key text_pattern_ops)`,
		},
		{
			name: "idx_inventory_changes_timestamp_brin",
			sql: `CREATE INDEX IF NOT EXISTS idx_inventory_changes_timestamp_brin
				ON inventory_changes USING BRIN (timestamp)
				WITH (pages_per_range = 32)`,
		},
		{
			name: "idx_inventory_changes_product_timestamp",
			sql:  `CREATE INDEX IF NOT EXISTS idx_inventory_changes_product_timestamp ON inventory_changes (product_id, timestamp DESC)`,
		},
		{
			// the low-stock report only cares about sellable products
			name: "idx_inventory_records_in_stock",
			sql:  `CREATE INDEX IF NOT EXISTS idx_inventory_records_in_stock ON inventory_records (stock) WHERE stock > 0`,
		},
	}

	for _, idx := range indexes {
		if err := m.db.WithContext(ctx).Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", nil)
	return nil
}

// CreatePerformanceTweaks applies storage settings. Failures are logged, never fatal.
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	tweaks := []string{
		// stock rows and locks are rewritten constantly; leave room for HOT updates
		`ALTER TABLE inventory_records SET (fillfactor = 80)`,
		`ALTER TABLE purchase_locks SET (fillfactor = 70)`,
		`ALTER TABLE inventory_changes ALTER COLUMN product_id SET STATISTICS 500`,
	}
	for _, stmt := range tweaks {
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Warn("Failed to apply performance tweak", map[string]any{
				"statement": stmt,
				"error":     err.Error(),
			})
		}
	}
}
