package infra

import (
	"fmt"

	"stockpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express (CHECK constraints, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the GORM schema plus the SQL patches. Exposed
// separately so integration tests can migrate a container database without
// going through NewDatabase's pool configuration.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.Room{},
		&model.Product{},
		&model.InventoryItem{},
		&model.InventoryTransaction{},
		&model.Sale{},
		&model.SaleItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// express. Each statement is guarded by an existence check so re-running on an
// already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Stock can never go negative, regardless of what application code does.
		{"inventory_items quantity >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_inventory_items_quantity_nonneg') THEN
    ALTER TABLE inventory_items
      ADD CONSTRAINT chk_inventory_items_quantity_nonneg CHECK (quantity >= 0);
  END IF;
END $$`},
		{"inventory_items average_cost >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_inventory_items_avg_cost_nonneg') THEN
    ALTER TABLE inventory_items
      ADD CONSTRAINT chk_inventory_items_avg_cost_nonneg CHECK (average_cost >= 0);
  END IF;
END $$`},
		{"stores invoice_counter >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stores_invoice_counter_nonneg') THEN
    ALTER TABLE stores
      ADD CONSTRAINT chk_stores_invoice_counter_nonneg CHECK (invoice_counter >= 0);
  END IF;
END $$`},
		// Ledger rows carry a non-zero signed quantity by definition.
		{"inventory_ledger quantity <> 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_inventory_ledger_quantity_nonzero') THEN
    ALTER TABLE inventory_ledger
      ADD CONSTRAINT chk_inventory_ledger_quantity_nonzero CHECK (quantity <> 0);
  END IF;
END $$`},
		// Partial index for the ledger listing filtered by reference.
		{"idx_inventory_ledger_invoice_ref", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventory_ledger_invoice_ref') THEN
    CREATE INDEX idx_inventory_ledger_invoice_ref
        ON inventory_ledger (invoice_ref)
        WHERE invoice_ref IS NOT NULL;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
