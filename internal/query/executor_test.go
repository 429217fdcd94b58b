package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/indexserve/internal/cache"
	"github.com/rzpsarthak13/indexserve/internal/core"
)

// fakeProvider serves canned rows and counts store round trips.
type fakeProvider struct {
	opens   int64
	queries int64
	rows    [][]interface{}
	openErr error
	qryErr  error

	mu       sync.Mutex
	lastSQL  string
	lastArgs []interface{}
}

func (p *fakeProvider) Open(_ context.Context) (core.Database, error) {
	atomic.AddInt64(&p.opens, 1)
	if p.openErr != nil {
		return nil, p.openErr
	}
	return &fakeDatabase{provider: p}, nil
}

func (p *fakeProvider) Kind() string { return "fake" }

type fakeDatabase struct {
	provider *fakeProvider
}

func (d *fakeDatabase) Query(_ context.Context, query string, args ...interface{}) (core.Rows, error) {
	atomic.AddInt64(&d.provider.queries, 1)
	if d.provider.qryErr != nil {
		return nil, d.provider.qryErr
	}
	d.provider.mu.Lock()
	d.provider.lastSQL = query
	d.provider.lastArgs = args
	d.provider.mu.Unlock()
	return &fakeRows{data: d.provider.rows}, nil
}

func (d *fakeDatabase) Exec(_ context.Context, _ string, _ ...interface{}) error { return nil }
func (d *fakeDatabase) Close() error                                             { return nil }

type fakeRows struct {
	data [][]interface{}
	idx  int
}

func (r *fakeRows) Columns() ([]string, error) {
	return []string{"company_name", "sector", "mcap_category", "weights"}, nil
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.idx-1]
	for i := range dest {
		*(dest[i].(*interface{})) = row[i]
	}
	return nil
}

func (r *fakeRows) Close() error { return nil }
func (r *fakeRows) Err() error   { return nil }

func newTestExecutor(p *fakeProvider) *Executor {
	return NewExecutor(ExecutorConfig{
		Provider:  p,
		Cache:     cache.NewLRU(8),
		TableName: "equity_index_constituents",
	})
}

func TestMonthlyDataCachesResult(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{rows: [][]interface{}{
		{"Acme Ltd", "Tech", "Large", 5.0},
	}}
	e := newTestExecutor(p)

	first, err := e.MonthlyData(ctx, "nifty_50", "2024-03-31 00:00:00")
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	assert.Equal(t, "Acme Ltd", first.Rows[0][0])
	assert.Equal(t, int64(1), atomic.LoadInt64(&p.opens))

	// Identical arguments hit the cache; no second round trip.
	second, err := e.MonthlyData(ctx, "nifty_50", "2024-03-31 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&p.opens))

	// A different date is a different key.
	_, err = e.MonthlyData(ctx, "nifty_50", "2024-04-30 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&p.opens))
}

func TestMonthlyDataParameters(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{}
	e := newTestExecutor(p)

	_, err := e.MonthlyData(ctx, "nifty_50", "2024-03-31 00:00:00")
	require.NoError(t, err)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Contains(t, p.lastSQL, "FROM equity_index_constituents")
	assert.Contains(t, p.lastSQL, "date = ? OR date LIKE ?")
	assert.Equal(t, []interface{}{"nifty_50", "2024-03-31 00:00:00", "2024-03-31%"}, p.lastArgs)
}

func TestClearCacheForcesFreshTrip(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{}
	e := newTestExecutor(p)

	_, err := e.AllData(ctx, "nifty_50")
	require.NoError(t, err)
	_, err = e.AllData(ctx, "nifty_50")
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&p.opens))

	require.NoError(t, e.ClearCache(ctx))

	_, err = e.AllData(ctx, "nifty_50")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&p.opens))
}

func TestQueryErrorWrapped(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{qryErr: errors.New("syntax error near SELECT")}
	e := newTestExecutor(p)

	_, err := e.Series(ctx, "nifty_50", "2024-01-31 00:00:00", "2024-03-31 00:00:00")
	require.Error(t, err)
	var qf *core.QueryFailureError
	assert.True(t, errors.As(err, &qf))
}

func TestOpenErrorPassedThrough(t *testing.T) {
	ctx := context.Background()
	storeErr := &core.StoreUnavailableError{Kind: "sqlite", Err: errors.New("no such file")}
	p := &fakeProvider{openErr: storeErr}
	e := newTestExecutor(p)

	_, err := e.Matrix(ctx, "nifty_50", "2024-03-31 00:00:00")
	require.Error(t, err)
	var su *core.StoreUnavailableError
	assert.True(t, errors.As(err, &su))
}

func TestConcurrentMissesCollapse(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{}
	e := newTestExecutor(p)

	const callers = 16
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := e.AllData(ctx, "nifty_50")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every caller used the same key, so duplicate misses collapse into
	// at most a small number of round trips (racing before the in-flight
	// registration), far fewer than one per caller.
	assert.Less(t, atomic.LoadInt64(&p.opens), int64(callers))
}

func TestCacheKeyDistinguishesParams(t *testing.T) {
	a := cacheKey("SELECT 1", []interface{}{"x", "y"})
	b := cacheKey("SELECT 1", []interface{}{"xy"})
	c := cacheKey("SELECT 1", []interface{}{"x", "y"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
}
