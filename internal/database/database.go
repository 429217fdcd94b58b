// Package database provides connection providers for the backing stores.
//
// Two providers exist: an embedded SQLite file and a networked MySQL
// server. Both hand out one connection per query execution; connections are
// scoped to the call that opened them and never pooled across calls.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rzpsarthak13/indexserve/internal/core"
)

// Config holds the connection parameters for either store kind.
type Config struct {
	// Type is the store kind: "sqlite" or "mysql".
	Type string

	// Path is the SQLite database file path.
	Path string

	// TableName is the constituent record table. Used by the SQLite
	// provider for the one-shot lookup-index bootstrap.
	TableName string

	// Networked store parameters.
	Host     string
	Port     int
	DBName   string
	User     string
	Password string

	// ConnectTimeout bounds connection establishment for the networked
	// store.
	ConnectTimeout time.Duration
}

// sqlDatabase adapts *sql.DB to core.Database.
type sqlDatabase struct {
	db *sql.DB
}

func (d *sqlDatabase) Query(ctx context.Context, query string, args ...interface{}) (core.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &sqlRows{rows: rows}, nil
}

func (d *sqlDatabase) Exec(ctx context.Context, query string, args ...interface{}) error {
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

func (d *sqlDatabase) Close() error {
	return d.db.Close()
}

// sqlRows adapts *sql.Rows to core.Rows.
type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }

func (r *sqlRows) Next() bool { return r.rows.Next() }

func (r *sqlRows) Scan(dest ...interface{}) error { return r.rows.Scan(dest...) }

func (r *sqlRows) Close() error { return r.rows.Close() }

func (r *sqlRows) Err() error { return r.rows.Err() }
