package database

import (
	"fmt"

	"gorm.io/gorm"

	"shop-management-backend/models"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Composite indexes for the FIFO and history queries
// - Foreign keys for lots and voicer lines
// - CHECK constraints that keep stock non-negative
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.ShopOwner{},
			&models.Product{},
			&models.InventoryLot{},
			&models.Customer{},
			&models.Supplier{},
			&models.LoneProvider{},
			&models.DueHistory{},
			&models.CashLedger{},
			&models.CashHistory{},
			&models.InvoiceCounter{},
			&models.Dashboard{},
			&models.Voicer{},
			&models.VoicerLine{},
			&models.RawMaterial{},
			&models.RawMaterialMovement{},
			&models.Note{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_lots_fifo ON inventory_lots (shop_owner_id, product_id, intake_at, id) WHERE quantity_remaining > 0`,
			`CREATE INDEX IF NOT EXISTS idx_voicer_lines_voicer_position ON voicer_lines (voicer_id, position)`,
			`CREATE INDEX IF NOT EXISTS idx_due_histories_owner_date ON due_histories (shop_owner_id, date)`,
			`CREATE INDEX IF NOT EXISTS idx_raw_material_movements_raw_date ON raw_material_movements (raw_material_id, date)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		constraints := []struct{ table, name, def string }{
			{"inventory_lots", "fk_inventory_lots_product", "FOREIGN KEY (product_id) REFERENCES products(id) ON UPDATE RESTRICT ON DELETE RESTRICT"},
			{"voicer_lines", "fk_voicer_lines_product", "FOREIGN KEY (product_id) REFERENCES products(id) ON UPDATE RESTRICT ON DELETE RESTRICT"},
			{"inventory_lots", "chk_inventory_lots_remaining", "CHECK (quantity_remaining >= 0 AND quantity_remaining <= quantity)"},
			{"inventory_lots", "chk_inventory_lots_price_nonneg", "CHECK (unit_buying_price >= 0)"},
			{"raw_materials", "chk_raw_materials_stock_nonneg", "CHECK (stock_amount >= 0)"},
			{"voicers", "chk_voicers_amounts_nonneg", "CHECK (total_bill_amount >= 0 AND paid_amount >= 0 AND discount_amount >= 0 AND labour_cost >= 0)"},
			{"due_histories", "chk_due_histories_amount_pos", "CHECK (amount > 0)"},
			{"cash_histories", "chk_cash_histories_amount_pos", "CHECK (amount > 0)"},
		}
		for _, c := range constraints {
			if err := tx.Exec(addConstraint(c.table, c.name, c.def)).Error; err != nil {
				return fmt.Errorf("constraint %s failed: %w", c.name, err)
			}
		}
		return nil
	})
}

// addConstraint wraps ALTER TABLE ... ADD CONSTRAINT so it can run repeatedly.
func addConstraint(table, name, def string) string {
	return fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%s'::regclass
		  AND conname  = '%s'
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s %s;
	END IF;
END $$;`, table, name, table, name, def)
}
