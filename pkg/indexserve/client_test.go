package indexserve

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index_data.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE equity_index_constituents (
		index_name TEXT,
		accord_code TEXT,
		company_name TEXT,
		sector TEXT,
		mcap_category TEXT,
		date TEXT,
		weights REAL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO equity_index_constituents VALUES
		('nifty_50', 'A1', 'Acme Ltd', 'Tech', 'Large', '2024-03-31 00:00:00', 5.0)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := DefaultConfig()
	cfg.Database.Path = dbPath
	cfg.Logging.File = filepath.Join(dir, "query_log.txt")

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	grid := client.GetMonthlyData(ctx, "nifty_50", "2024-03-31")
	require.Len(t, grid, 2)
	assert.Equal(t, []interface{}{"company_name", "sector", "mcap_category", "weights"}, grid[0])
	assert.Equal(t, "Acme Ltd", grid[1][0])

	grid = client.GetAllData(ctx, "nifty_50")
	require.Len(t, grid, 2)

	grid = client.GetMatrix(ctx, "2024-03-31", "nifty_50")
	require.Len(t, grid, 2)

	grid = client.GetSeries(ctx, "nifty_50", "2024-01-01", "2024-12-31")
	require.Len(t, grid, 2)

	assert.Equal(t, "cache cleared successfully", client.ClearCache(ctx))
}

func TestClientNeverReturnsError(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	// Missing arguments and unknown indexes both come back as one-row
	// diagnostics, never as a panic or error.
	grid := client.GetMonthlyData(ctx, "", "")
	require.Len(t, grid, 1)
	require.Len(t, grid[0], 1)

	grid = client.GetAllData(ctx, "no_such_index")
	require.Len(t, grid, 1)
	assert.Equal(t, "no data found for index='no_such_index'", grid[0][0])
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Type = "oracle"
	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_type")
}
