package core

import (
	"context"
)

// Database is a live handle to the backing store. A handle is owned by the
// call that opened it and must be closed when that call finishes.
type Database interface {
	// Query executes a parameterized SELECT and returns the resulting rows.
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)

	// Exec executes a non-query statement (index bootstrap only; this
	// subsystem has no write path for record data).
	Exec(ctx context.Context, query string, args ...interface{}) error

	// Close releases the handle. Safe to call more than once.
	Close() error
}

// Rows abstracts a forward-only result cursor so the executor does not
// depend on a concrete driver.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Provider opens connections to the configured backing store.
// Implementations exist for an embedded SQLite file and a networked MySQL
// server. Open is called once per query execution; the connection is never
// pooled across calls.
type Provider interface {
	// Open returns a fresh connection, or a StoreUnavailableError when the
	// store cannot be reached (missing file, refused connection).
	Open(ctx context.Context) (Database, error)

	// Kind returns the store type identifier ("sqlite", "mysql").
	Kind() string
}
