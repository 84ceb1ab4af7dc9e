package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers "postgres"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

// Connect opens and pings a pool for the given driver. SQLite pools are pinned to a
// single connection so writers are serialized.
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if !IsPostgres(driver) {
		dsn = SQLiteDSN(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if IsPostgres(driver) {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)
	} else {
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database", zap.String("driver", driver))
	return db, nil
}

var sqlitePragmas = []struct{ key, param string }{
	{"foreign_keys", "_pragma=foreign_keys(1)"},
	{"_time_format", "_time_format=sqlite"},
}

// SQLiteDSN adds the connection parameters the schema relies on unless the DSN
// already sets them. The driver applies them to every new connection.
func SQLiteDSN(dsn string) string {
	for _, p := range sqlitePragmas {
		if strings.Contains(dsn, p.key) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.param
	}
	return dsn
}

func IsPostgres(driver string) bool {
	return driver == "pgx" || driver == "postgres"
}

// ForUpdate returns the row-locking suffix for SELECTs inside a checkout
// transaction. SQLite has no row locks; its single writer already serializes.
func ForUpdate(driver string) string {
	if IsPostgres(driver) {
		return " FOR UPDATE"
	}
	return ""
}

// TxOptions pins Postgres transactions to READ COMMITTED explicitly instead of
// relying on the server default.
func TxOptions(driver string) *sql.TxOptions {
	if IsPostgres(driver) {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return nil
}
