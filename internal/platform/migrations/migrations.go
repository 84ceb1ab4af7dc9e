package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        username TEXT NOT NULL UNIQUE,
        email TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('ADMIN', 'CLIENT')),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id BIGSERIAL PRIMARY KEY,
        batch TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL,
        price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
        available_quantity INTEGER NOT NULL CHECK (available_quantity >= 0),
        intake_date TIMESTAMPTZ NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS purchases (
        id BIGSERIAL PRIMARY KEY,
        client_id BIGINT NOT NULL REFERENCES users(id),
        invoice_number TEXT NOT NULL UNIQUE,
        purchased_at TIMESTAMPTZ NOT NULL,
        total NUMERIC(14,2) NOT NULL CHECK (total >= 0)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_client_id ON purchases (client_id)`,
	`CREATE TABLE IF NOT EXISTS purchase_items (
        id BIGSERIAL PRIMARY KEY,
        purchase_id BIGINT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
        product_id BIGINT REFERENCES products(id) ON DELETE SET NULL,
        quantity INTEGER NOT NULL CHECK (quantity > 0),
        unit_price NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase_id ON purchase_items (purchase_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT NOT NULL UNIQUE,
        email TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('ADMIN', 'CLIENT')),
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        batch TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL,
        price NUMERIC NOT NULL CHECK (price >= 0),
        available_quantity INTEGER NOT NULL CHECK (available_quantity >= 0),
        intake_date DATETIME NOT NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE TABLE IF NOT EXISTS purchases (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        client_id INTEGER NOT NULL REFERENCES users(id),
        invoice_number TEXT NOT NULL UNIQUE,
        purchased_at DATETIME NOT NULL,
        total NUMERIC NOT NULL CHECK (total >= 0)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_client_id ON purchases (client_id)`,
	`CREATE TABLE IF NOT EXISTS purchase_items (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        purchase_id INTEGER NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
        product_id INTEGER REFERENCES products(id) ON DELETE SET NULL,
        quantity INTEGER NOT NULL CHECK (quantity > 0),
        unit_price NUMERIC NOT NULL CHECK (unit_price >= 0)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase_id ON purchase_items (purchase_id)`,
}

// Run creates the schema for the connected driver. Every statement is idempotent.
func Run(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if database.IsPostgres(db.DriverName()) {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
