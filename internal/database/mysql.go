package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// MySQLProvider opens connections to the networked relational store.
// Each Open dials fresh; the single-call lifetime of a connection makes a
// shared pool pointless here.
type MySQLProvider struct {
	dsn     string
	timeout time.Duration
	log     *logging.Logger
}

// NewMySQLProvider creates a provider for the networked store.
func NewMySQLProvider(host string, port int, dbName, user, password string, connectTimeout time.Duration, lg *logging.Logger) *MySQLProvider {
	if lg == nil {
		lg = logging.Discard()
	}
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=false&timeout=%s",
		user, password, host, port, dbName, connectTimeout)
	return &MySQLProvider{
		dsn:     dsn,
		timeout: connectTimeout,
		log:     lg,
	}
}

// Kind returns "mysql".
func (p *MySQLProvider) Kind() string { return "mysql" }

// Open dials the server and verifies the connection with a ping.
func (p *MySQLProvider) Open(ctx context.Context) (core.Database, error) {
	db, err := sql.Open("mysql", p.dsn)
	if err != nil {
		return nil, &core.StoreUnavailableError{Kind: "mysql", Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		p.log.Errorf("MYSQL", "connection failed: %v", err)
		return nil, &core.StoreUnavailableError{Kind: "mysql", Err: err}
	}

	return &sqlDatabase{db: db}, nil
}

// mysqlFactory implements ProviderFactory for the networked store.
type mysqlFactory struct{}

func (f *mysqlFactory) Kind() string { return "mysql" }

func (f *mysqlFactory) Validate(cfg Config) error {
	if cfg.Type != "mysql" {
		return fmt.Errorf("invalid type for mysql factory: %s", cfg.Type)
	}
	if cfg.Host == "" {
		return fmt.Errorf("host is required for mysql")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", cfg.Port)
	}
	if cfg.DBName == "" {
		return fmt.Errorf("dbname is required for mysql")
	}
	if cfg.User == "" {
		return fmt.Errorf("user is required for mysql")
	}
	if cfg.TableName == "" {
		return fmt.Errorf("table_name is required")
	}
	return nil
}

func (f *mysqlFactory) New(cfg Config, lg *logging.Logger) (core.Provider, error) {
	return NewMySQLProvider(cfg.Host, cfg.Port, cfg.DBName, cfg.User, cfg.Password, cfg.ConnectTimeout, lg), nil
}

func init() {
	RegisterFactory(&mysqlFactory{})
}
