// Package dbtest provides migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/migrations"
)

const DSN = ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

// Open returns a fresh schema-initialised database closed at test cleanup.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, "sqlite", DSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
