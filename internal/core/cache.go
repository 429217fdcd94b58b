package core

import (
	"context"
)

// ResultCache memoizes (SQL text, parameter tuple) -> materialized result
// table. Implementations must be safe for concurrent use.
//
// The cache is strictly an optimization: Put and Clear errors are logged by
// the caller and never fail a query.
type ResultCache interface {
	// Get returns the cached table for key, or (nil, false) on a miss.
	Get(ctx context.Context, key string) (*ResultTable, bool)

	// Put stores a complete table under key, evicting older entries as the
	// implementation's capacity policy dictates.
	Put(ctx context.Context, key string, table *ResultTable) error

	// Clear evicts every entry unconditionally. Idempotent.
	Clear(ctx context.Context) error

	// Close releases any backing resources.
	Close() error
}
