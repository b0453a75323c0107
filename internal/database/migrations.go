package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// migrations are idempotent and applied in order inside one transaction.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		product_name VARCHAR(255) NOT NULL,
		base_price NUMERIC(14,2) NOT NULL CHECK (base_price >= 0),
		price NUMERIC(14,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0,
		rating NUMERIC(2,1) NOT NULL DEFAULT 0,
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS product_sales (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		sale_price NUMERIC(14,2) NOT NULL CHECK (sale_price >= 0),
		original_price NUMERIC(14,2) CHECK (original_price >= 0),
		discount_pct SMALLINT CHECK (discount_pct BETWEEN 0 AND 100),
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'scheduled'
			CHECK (status IN ('scheduled', 'active', 'expired')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date > start_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_product_sales_product_status ON product_sales(product_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_product_sales_status_window ON product_sales(status, start_date, end_date)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(64) NOT NULL,
		customer_address TEXT NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'processing', 'completed', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS order_details (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC(14,2) NOT NULL CHECK (price >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_details_order_id ON order_details(order_id)`,

	`CREATE TABLE IF NOT EXISTS payment_methods (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		method_key VARCHAR(50) NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`INSERT INTO payment_methods (name, method_key)
		VALUES ('Cash on delivery', 'cod')
		ON CONFLICT (method_key) DO NOTHING`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		payment_method_id BIGINT NOT NULL REFERENCES payment_methods(id),
		transaction_id VARCHAR(255),
		amount NUMERIC(14,2) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'paid', 'failed', 'cancelled')),
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// At most one settled payment per order.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_order_paid ON payments(order_id) WHERE status = 'paid'`,
}

// Migrate creates the schema if it does not already exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range migrations {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			logger.Error().Err(err).Int("step", i).Msg("migration failed")
			return fmt.Errorf("migration step %d failed: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	logger.Info().Int("steps", len(migrations)).Msg("database schema up to date")
	return nil
}
