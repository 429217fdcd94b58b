package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// keySep separates the SQL text and each stringified parameter in a cache
// key. A unit separator cannot appear in well-formed SQL or dates.
const keySep = "\x1f"

// ExecutorConfig wires an Executor.
type ExecutorConfig struct {
	Provider  core.Provider
	Cache     core.ResultCache
	TableName string
	Log       *logging.Logger

	// QueriesPerSecond throttles backing-store round trips on cache miss.
	// Zero or negative disables throttling.
	QueriesPerSecond float64

	// SlowQueryThreshold triggers a warning line for store round trips
	// slower than this. Zero uses the 50ms default.
	SlowQueryThreshold time.Duration
}

// Executor builds parameterized SQL for the four query shapes and executes
// through the result cache. Connections are acquired per round trip and
// released unconditionally.
type Executor struct {
	provider core.Provider
	cache    core.ResultCache
	table    string
	log      *logging.Logger
	limiter  *rate.Limiter
	slow     time.Duration
	inflight inflightGroup
}

// NewExecutor creates an executor. TableName must already be validated as a
// bare SQL identifier by the config loader; it is the only non-parameterized
// value in any statement.
func NewExecutor(cfg ExecutorConfig) *Executor {
	lg := cfg.Log
	if lg == nil {
		lg = logging.Discard()
	}
	var limiter *rate.Limiter
	if cfg.QueriesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), 1)
	}
	slow := cfg.SlowQueryThreshold
	if slow <= 0 {
		slow = 50 * time.Millisecond
	}
	return &Executor{
		provider: cfg.Provider,
		cache:    cfg.Cache,
		table:    cfg.TableName,
		log:      lg,
		limiter:  limiter,
		slow:     slow,
	}
}

// MonthlyData returns the constituents of one index on a specific date,
// matching the exact date-time or any time on that calendar day, heaviest
// weight first.
func (e *Executor) MonthlyData(ctx context.Context, indexName, date string) (*core.ResultTable, error) {
	stmt := fmt.Sprintf(
		"SELECT company_name, sector, mcap_category, weights FROM %s WHERE index_name = ? AND (date = ? OR date LIKE ?) ORDER BY weights DESC",
		e.table)
	return e.run(ctx, stmt, indexName, date, dayPrefix(date))
}

// Series returns constituents of one index over an inclusive date range,
// date ascending, ties broken heaviest weight first.
func (e *Executor) Series(ctx context.Context, indexName, startDate, endDate string) (*core.ResultTable, error) {
	stmt := fmt.Sprintf(
		"SELECT index_name, accord_code, company_name, sector, mcap_category, date, weights FROM %s WHERE index_name = ? AND date BETWEEN ? AND ? ORDER BY date ASC, weights DESC",
		e.table)
	return e.run(ctx, stmt, indexName, startDate, endDate)
}

// Matrix returns the wide column set for one index on a specific date,
// same exact-or-prefix matching as MonthlyData.
func (e *Executor) Matrix(ctx context.Context, indexName, date string) (*core.ResultTable, error) {
	stmt := fmt.Sprintf(
		"SELECT accord_code, company_name, sector, mcap_category, date, weights FROM %s WHERE index_name = ? AND (date = ? OR date LIKE ?) ORDER BY weights DESC",
		e.table)
	return e.run(ctx, stmt, indexName, date, dayPrefix(date))
}

// AllData returns the full history of one index, date ascending, ties
// broken heaviest weight first.
func (e *Executor) AllData(ctx context.Context, indexName string) (*core.ResultTable, error) {
	stmt := fmt.Sprintf(
		"SELECT accord_code, company_name, sector, mcap_category, date, weights FROM %s WHERE index_name = ? ORDER BY date ASC, weights DESC",
		e.table)
	return e.run(ctx, stmt, indexName)
}

// ClearCache evicts every cached result. Idempotent.
func (e *Executor) ClearCache(ctx context.Context) error {
	return e.cache.Clear(ctx)
}

// run executes a statement through the cache. Concurrent misses for the
// same key collapse into a single store round trip.
func (e *Executor) run(ctx context.Context, stmt string, params ...interface{}) (*core.ResultTable, error) {
	key := cacheKey(stmt, params)

	if table, ok := e.cache.Get(ctx, key); ok {
		e.log.Infof("QUERY", "cache hit | params=%v", params)
		return table, nil
	}

	return e.inflight.do(ctx, key, func() (*core.ResultTable, error) {
		// Re-check: another call may have populated the key while this
		// one waited for the in-flight slot.
		if table, ok := e.cache.Get(ctx, key); ok {
			return table, nil
		}
		return e.fetch(ctx, stmt, key, params)
	})
}

// fetch performs one backing-store round trip and populates the cache.
func (e *Executor) fetch(ctx context.Context, stmt, key string, params []interface{}) (*core.ResultTable, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, &core.QueryFailureError{Err: err}
		}
	}

	start := time.Now()

	db, err := e.provider.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(ctx, stmt, params...)
	if err != nil {
		return nil, &core.QueryFailureError{Err: err}
	}
	defer rows.Close()

	table, err := materialize(rows)
	if err != nil {
		return nil, &core.QueryFailureError{Err: err}
	}

	elapsed := time.Since(start)
	e.log.Infof("QUERY", "time: %.3f ms | params=%v", float64(elapsed.Microseconds())/1000, params)
	if elapsed > e.slow {
		e.log.Warnf("QUERY", "slow query detected (%.3f ms): params=%v", float64(elapsed.Microseconds())/1000, params)
	}

	if err := e.cache.Put(ctx, key, table); err != nil {
		e.log.Warnf("QUERY", "cache store failed: %v", err)
	}
	return table, nil
}

// materialize drains a cursor into a complete result table. Driver byte
// slices are converted to strings so cached rows stay valid after the
// connection closes.
func materialize(rows core.Rows) (*core.ResultTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	table := &core.ResultTable{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return table, nil
}

// cacheKey joins the SQL text with the stringified parameter tuple.
func cacheKey(stmt string, params []interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, stmt)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%v", p))
	}
	return strings.Join(parts, keySep)
}

// inflightGroup collapses concurrent fetches of the same cache key into one
// store round trip; late arrivals wait for the first caller's result.
type inflightGroup struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

type inflightCall struct {
	done  chan struct{}
	table *core.ResultTable
	err   error
}

func (g *inflightGroup) do(ctx context.Context, key string, fn func() (*core.ResultTable, error)) (*core.ResultTable, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*inflightCall)
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.table, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &inflightCall{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.table, c.err = fn()
	close(c.done)

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.table, c.err
}
