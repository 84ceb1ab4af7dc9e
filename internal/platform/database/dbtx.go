package database

import (
	"context"
	"database/sql"
)

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so repository methods can run
// inside or outside a transaction.
type Queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
	DriverName() string
}

// DBTX is an open transaction.
type DBTX interface {
	Queryer
	Commit() error
	Rollback() error
}
