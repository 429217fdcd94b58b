package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// SQLiteProvider opens the embedded database file. The first successful
// open also issues a best-effort "create index if absent" on the record
// table; the attempt is made at most once per provider regardless of
// outcome.
type SQLiteProvider struct {
	path      string
	tableName string
	log       *logging.Logger

	// bootstrap guards the one-shot lookup-index creation.
	bootstrap sync.Once
}

// NewSQLiteProvider creates a provider for the embedded store.
func NewSQLiteProvider(path, tableName string, lg *logging.Logger) *SQLiteProvider {
	if lg == nil {
		lg = logging.Discard()
	}
	return &SQLiteProvider{
		path:      path,
		tableName: tableName,
		log:       lg,
	}
}

// Kind returns "sqlite".
func (p *SQLiteProvider) Kind() string { return "sqlite" }

// Open opens a connection to the database file. The file must already
// exist; this subsystem never creates the store.
func (p *SQLiteProvider) Open(ctx context.Context) (core.Database, error) {
	if _, err := os.Stat(p.path); err != nil {
		return nil, &core.StoreUnavailableError{
			Kind: "sqlite",
			Err:  fmt.Errorf("database file not found at %s", p.path),
		}
	}

	db, err := sql.Open("sqlite3", p.path)
	if err != nil {
		return nil, &core.StoreUnavailableError{Kind: "sqlite", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &core.StoreUnavailableError{Kind: "sqlite", Err: err}
	}

	p.bootstrap.Do(func() {
		p.ensureLookupIndex(ctx, db)
	})

	return &sqlDatabase{db: db}, nil
}

// ensureLookupIndex creates the (index_name, accord_code, date) lookup
// index if it is absent. Failure is logged at warning level and otherwise
// ignored; the open proceeds either way.
func (p *SQLiteProvider) ensureLookupIndex(ctx context.Context, db *sql.DB) {
	stmt := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_lookup ON %s (index_name, accord_code, date)",
		p.tableName, p.tableName)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		p.log.Warnf("SQLITE", "lookup index check skipped: %v", err)
		return
	}
	p.log.Infof("SQLITE", "verified lookup index idx_%s_lookup exists", p.tableName)
}

// sqliteFactory implements ProviderFactory for the embedded store.
type sqliteFactory struct{}

func (f *sqliteFactory) Kind() string { return "sqlite" }

func (f *sqliteFactory) Validate(cfg Config) error {
	if cfg.Type != "sqlite" {
		return fmt.Errorf("invalid type for sqlite factory: %s", cfg.Type)
	}
	if cfg.Path == "" {
		return fmt.Errorf("db_path is required for sqlite")
	}
	if cfg.TableName == "" {
		return fmt.Errorf("table_name is required")
	}
	return nil
}

func (f *sqliteFactory) New(cfg Config, lg *logging.Logger) (core.Provider, error) {
	return NewSQLiteProvider(cfg.Path, cfg.TableName, lg), nil
}

func init() {
	RegisterFactory(&sqliteFactory{})
}
