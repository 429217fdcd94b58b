package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// Redis is a result cache backed by a shared Redis instance, for
// deployments where several host processes serve the same workbook
// population. Tables are stored JSON-encoded under a configurable key
// prefix; Redis applies its own memory policy, so the capacity bound is
// delegated to the server and entries optionally carry a TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logging.Logger
}

// NewRedis connects to a Redis endpoint and verifies it with a ping.
func NewRedis(endpoint, password string, db int, prefix string, ttl time.Duration, lg *logging.Logger) (*Redis, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("a redis endpoint is required")
	}
	if lg == nil {
		lg = logging.Discard()
	}
	if prefix == "" {
		prefix = "indexserve:query"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     endpoint,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, prefix: prefix, ttl: ttl, log: lg}, nil
}

// redisTable is the wire form of a cached result table.
type redisTable struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Get returns the cached table for key. Backend errors are logged and
// reported as a miss so the query falls through to the store.
func (c *Redis) Get(ctx context.Context, key string) (*core.ResultTable, bool) {
	val, err := c.client.Get(ctx, c.prefix+":"+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warnf("REDIS", "get failed, treating as miss: %v", err)
		return nil, false
	}

	var wire redisTable
	if err := json.Unmarshal(val, &wire); err != nil {
		c.log.Warnf("REDIS", "corrupt cache entry, treating as miss: %v", err)
		return nil, false
	}
	return &core.ResultTable{Columns: wire.Columns, Rows: wire.Rows}, true
}

// Put stores a table under key, with the configured TTL when set.
func (c *Redis) Put(ctx context.Context, key string, table *core.ResultTable) error {
	data, err := json.Marshal(redisTable{Columns: table.Columns, Rows: table.Rows})
	if err != nil {
		return fmt.Errorf("failed to encode result table: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+":"+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result table: %w", err)
	}
	return nil
}

// Clear removes every key under the configured prefix.
func (c *Redis) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// Close closes the client connection.
func (c *Redis) Close() error {
	return c.client.Close()
}
