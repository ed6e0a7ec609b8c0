// Package migrations applies the storefront schema. Statements are
// idempotent so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL,
		rate        NUMERIC(3,1) NOT NULL DEFAULT 0,
		price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		image_url   TEXT,
		description TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		sales_count BIGINT NOT NULL DEFAULT 0 CHECK (sales_count >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id               BIGSERIAL PRIMARY KEY,
		product_id       BIGINT,
		total_amount     NUMERIC(12,2) NOT NULL,
		payment_method   TEXT NOT NULL,
		shipping_address TEXT NOT NULL,
		email            TEXT NOT NULL,
		item_list        JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id       BIGSERIAL PRIMARY KEY,
		name     TEXT NOT NULL,
		email    TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (LOWER(category))`,
	`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_products_sales_count ON products (sales_count DESC)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Count returns the number of schema statements; used by tests.
func Count() int {
	return len(statements)
}
