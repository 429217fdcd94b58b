package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/indexserve/internal/core"
)

// seedStore creates a throwaway database file with the constituent table and
// a handful of rows.
func seedStore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index_data.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

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
		('nifty_50', 'A1', 'Acme Ltd', 'Tech', 'Large', '2024-03-31 00:00:00', 5.0),
		('nifty_50', 'B2', 'Beta Corp', 'Pharma', 'Mid', '2024-03-31 00:00:00', 3.5),
		('nifty_50', 'A1', 'Acme Ltd', 'Tech', 'Large', '2024-04-30 00:00:00', 5.2)`)
	require.NoError(t, err)

	return path
}

func TestSQLiteOpenMissingFile(t *testing.T) {
	p := NewSQLiteProvider(filepath.Join(t.TempDir(), "absent.db"), "equity_index_constituents", nil)

	_, err := p.Open(context.Background())
	require.Error(t, err)
	var su *core.StoreUnavailableError
	require.True(t, errors.As(err, &su))
	assert.Equal(t, "sqlite", su.Kind)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteOpenAndQuery(t *testing.T) {
	ctx := context.Background()
	path := seedStore(t)
	p := NewSQLiteProvider(path, "equity_index_constituents", nil)
	assert.Equal(t, "sqlite", p.Kind())

	db, err := p.Open(ctx)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(ctx,
		"SELECT company_name, weights FROM equity_index_constituents WHERE index_name = ? AND date = ? ORDER BY weights DESC",
		"nifty_50", "2024-03-31 00:00:00")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"company_name", "weights"}, cols)

	var names []string
	for rows.Next() {
		var name string
		var weight float64
		require.NoError(t, rows.Scan(&name, &weight))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Acme Ltd", "Beta Corp"}, names)
}

func TestSQLiteBootstrapIndexOnce(t *testing.T) {
	ctx := context.Background()
	path := seedStore(t)
	p := NewSQLiteProvider(path, "equity_index_constituents", nil)

	for i := 0; i < 2; i++ {
		db, err := p.Open(ctx)
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}

	// The lookup index exists after the first open.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_equity_index_constituents_lookup'").
		Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewProviderUnknownType(t *testing.T) {
	_, err := NewProvider(Config{Type: "mongodb"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongodb")
}

func TestSQLiteFactoryValidate(t *testing.T) {
	f := &sqliteFactory{}
	assert.Error(t, f.Validate(Config{Type: "sqlite"}))
	assert.Error(t, f.Validate(Config{Type: "sqlite", Path: "x.db"}))
	assert.NoError(t, f.Validate(Config{Type: "sqlite", Path: "x.db", TableName: "t"}))
}
