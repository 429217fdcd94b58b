// Package indexserve exposes the spreadsheet-callable index-constituent
// lookups as a small client around the internal query, cache and store
// layers.
//
// Typical usage:
//
//	cfg, _ := indexserve.LoadConfig("config.yaml")
//	client, _ := indexserve.NewClient(cfg)
//	defer client.Close()
//
//	grid := client.GetMonthlyData(ctx, "nifty_500", "2024-03-31")
package indexserve

import (
	"context"
	"fmt"

	"github.com/rzpsarthak13/indexserve/internal/cache"
	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/database"
	"github.com/rzpsarthak13/indexserve/internal/logging"
	"github.com/rzpsarthak13/indexserve/internal/query"
	"github.com/rzpsarthak13/indexserve/internal/udf"
)

// Grid is the two-dimensional return shape: header row + data rows, or a
// one-row diagnostic message.
type Grid = [][]interface{}

// Client wires the configured store provider, result cache and entry-point
// surface. Entry points never return errors; any failure is rendered as a
// one-row diagnostic grid.
type Client struct {
	cfg     *Config
	log     *logging.Logger
	cache   core.ResultCache
	audit   udf.AuditSink
	service *udf.Service
}

// NewClient builds a client from the configuration. A nil config uses the
// documented defaults.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg := logging.New(logging.Config{
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})

	provider, err := database.NewProvider(database.Config{
		Type:           cfg.Database.Type,
		Path:           cfg.Database.Path,
		TableName:      cfg.Database.TableName,
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		DBName:         cfg.Database.DBName,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, lg)
	if err != nil {
		lg.Close()
		return nil, err
	}

	resultCache, err := cache.New(cache.Config{
		Type:      cfg.Cache.Type,
		Capacity:  cfg.Cache.Capacity,
		Endpoint:  cfg.Cache.Endpoint,
		Password:  cfg.Cache.Password,
		DB:        cfg.Cache.DB,
		KeyPrefix: cfg.Cache.KeyPrefix,
		TTL:       cfg.Cache.TTL,
	}, lg)
	if err != nil {
		lg.Close()
		return nil, err
	}

	// The audit publisher is optional infrastructure: if Kafka is down at
	// startup the client still serves queries.
	var audit udf.AuditSink
	if cfg.Audit.Enabled {
		auditor, err := udf.NewKafkaAuditor(cfg.Audit.Brokers, cfg.Audit.Topic, lg)
		if err != nil {
			lg.Warnf("CLIENT", "audit disabled: %v", err)
		} else {
			audit = auditor
		}
	}

	exec := query.NewExecutor(query.ExecutorConfig{
		Provider:           provider,
		Cache:              resultCache,
		TableName:          cfg.Database.TableName,
		Log:                lg,
		QueriesPerSecond:   cfg.Limits.QueriesPerSecond,
		SlowQueryThreshold: cfg.Limits.SlowQueryThreshold,
	})

	service := udf.NewService(udf.ServiceConfig{
		Executor:   exec,
		Normalizer: query.NewNormalizer(cfg.DateLayout()),
		Log:        lg,
		Audit:      audit,
	})

	return &Client{
		cfg:     cfg,
		log:     lg,
		cache:   resultCache,
		audit:   audit,
		service: service,
	}, nil
}

// GetMonthlyData fetches constituents for a given index as on a specific
// date.
func (c *Client) GetMonthlyData(ctx context.Context, indexName, dateValue string) Grid {
	return Grid(c.service.GetMonthlyData(ctx, indexName, dateValue))
}

// GetSeries fetches constituents and weights between start and end dates.
func (c *Client) GetSeries(ctx context.Context, indexName, startDate, endDate string) Grid {
	return Grid(c.service.GetSeries(ctx, indexName, startDate, endDate))
}

// GetMatrix fetches all constituents of a given index as on a specific
// date. Date comes first, as in the spreadsheet formula.
func (c *Client) GetMatrix(ctx context.Context, dateValue, indexName string) Grid {
	return Grid(c.service.GetMatrix(ctx, dateValue, indexName))
}

// GetAllData fetches all available records for a given index.
func (c *Client) GetAllData(ctx context.Context, indexName string) Grid {
	return Grid(c.service.GetAllData(ctx, indexName))
}

// ClearCache evicts every cached query result and returns a confirmation
// message.
func (c *Client) ClearCache(ctx context.Context) string {
	return c.service.ClearCache(ctx)
}

// Close releases the cache, audit publisher and log sink.
func (c *Client) Close() error {
	var firstErr error
	if c.audit != nil {
		if err := c.audit.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.log.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
