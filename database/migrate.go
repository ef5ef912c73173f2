package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Harden applies (idempotent) schema hardening on top of AutoMigrate:
// - Money column types (NUMERIC(12,2))
// - Partial unique index: one open conversation per (business, phone)
// - Helpful indexes (messages ordering, sale lookup by session id)
// - Basic CHECK constraints (price > 0, stock >= 0, amount >= 0)
func Harden() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE products ALTER COLUMN price  TYPE numeric(12,2)`,
			`ALTER TABLE sales    ALTER COLUMN amount TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		// The partial unique index turns the concurrent first-contact race into
		// a defined conflict the pipeline resolves by re-reading.
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_open_per_customer ON conversations (business_id, customer_phone) WHERE status = 'active'`,
			`CREATE INDEX IF NOT EXISTS idx_conversations_business_status ON conversations (business_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_sales_session ON sales (stripe_session_id)`,
			`CREATE INDEX IF NOT EXISTS idx_sales_business_status ON sales (business_id, status)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Product price strictly positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'products'::regclass
					  AND conname  = 'chk_products_price_positive'
				) THEN
					ALTER TABLE products
					ADD CONSTRAINT chk_products_price_positive
					CHECK (price > 0);
				END IF;
			END $$;`,
			// Stock never negative, even under racing decrements
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'products'::regclass
					  AND conname  = 'chk_products_stock_nonneg'
				) THEN
					ALTER TABLE products
					ADD CONSTRAINT chk_products_stock_nonneg
					CHECK (stock >= 0);
				END IF;
			END $$;`,
			// Sales.amount >= 0
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'sales'::regclass
					  AND conname  = 'chk_sales_amount_nonneg'
				) THEN
					ALTER TABLE sales
					ADD CONSTRAINT chk_sales_amount_nonneg
					CHECK (amount >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
