package indexserve

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rzpsarthak13/indexserve/internal/query"
)

// Config is the root configuration for the index lookup service. It is
// loaded once at process start and treated as immutable afterwards.
type Config struct {
	// Database contains connection parameters for the backing store.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Format contains formatting conventions shared with the store.
	Format FormatConfig `yaml:"format" json:"format"`

	// Cache configures the query-result cache.
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Logging configures the rotating query log.
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Audit configures optional publishing of call records to Kafka.
	Audit AuditConfig `yaml:"audit" json:"audit"`

	// Limits configures throttling of backing-store round trips.
	Limits LimitsConfig `yaml:"limits" json:"limits"`
}

// DatabaseConfig contains connection parameters for either store kind.
type DatabaseConfig struct {
	// Type is the store kind: "sqlite" (embedded file) or "mysql".
	Type string `yaml:"db_type" json:"db_type"`

	// Path is the SQLite database file path.
	Path string `yaml:"db_path" json:"db_path"`

	// TableName is the constituent record table.
	TableName string `yaml:"table_name" json:"table_name"`

	// Networked store parameters. Ignored when Type is "sqlite".
	Host     string `yaml:"host,omitempty" json:"host,omitempty"`
	Port     int    `yaml:"port,omitempty" json:"port,omitempty"`
	DBName   string `yaml:"dbname,omitempty" json:"dbname,omitempty"`
	User     string `yaml:"user,omitempty" json:"user,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// ConnectTimeout bounds connection establishment for the networked
	// store.
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty" json:"connect_timeout,omitempty"`
}

// FormatConfig contains formatting conventions.
type FormatConfig struct {
	// DateFormat is the canonical store date-time representation as a
	// strftime-style pattern.
	DateFormat string `yaml:"date_format" json:"date_format"`
}

// CacheConfig configures the query-result cache backend.
type CacheConfig struct {
	// Type is "memory" (in-process LRU) or "redis".
	Type string `yaml:"type" json:"type"`

	// Capacity bounds the in-process LRU entry count.
	Capacity int `yaml:"capacity,omitempty" json:"capacity,omitempty"`

	// Redis backend parameters. Ignored when Type is "memory".
	Endpoint  string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Password  string        `yaml:"password,omitempty" json:"password,omitempty"`
	DB        int           `yaml:"db,omitempty" json:"db,omitempty"`
	KeyPrefix string        `yaml:"key_prefix,omitempty" json:"key_prefix,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`
}

// LoggingConfig configures the rotating query log.
type LoggingConfig struct {
	// File is the log file path. Empty disables file logging.
	File string `yaml:"file" json:"file"`

	// MaxSizeMB is the rotation threshold per file, in megabytes.
	MaxSizeMB int `yaml:"max_size_mb,omitempty" json:"max_size_mb,omitempty"`

	// MaxBackups is the number of rotated files to retain.
	MaxBackups int `yaml:"max_backups,omitempty" json:"max_backups,omitempty"`
}

// AuditConfig configures optional call-record publishing.
type AuditConfig struct {
	// Enabled turns on the Kafka audit publisher.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers,omitempty" json:"brokers,omitempty"`

	// Topic is the audit topic name.
	Topic string `yaml:"topic,omitempty" json:"topic,omitempty"`
}

// LimitsConfig configures backing-store throttling.
type LimitsConfig struct {
	// QueriesPerSecond throttles store round trips on cache miss.
	// Zero disables throttling.
	QueriesPerSecond float64 `yaml:"queries_per_second,omitempty" json:"queries_per_second,omitempty"`

	// SlowQueryThreshold triggers a warning for slower store round trips.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold,omitempty" json:"slow_query_threshold,omitempty"`
}

// identifierPattern constrains the table name, the only value interpolated
// into SQL text rather than bound as a parameter.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultConfig returns a configuration with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:           "sqlite",
			Path:           "index_data.db",
			TableName:      "equity_index_constituents",
			Port:           3306,
			ConnectTimeout: 10 * time.Second,
		},
		Format: FormatConfig{
			DateFormat: "%Y-%m-%d %H:%M:%S",
		},
		Cache: CacheConfig{
			Type:     "memory",
			Capacity: 64,
		},
		Logging: LoggingConfig{
			File:       "query_log.txt",
			MaxSizeMB:  1,
			MaxBackups: 3,
		},
		Audit: AuditConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "indexserve-calls",
		},
		Limits: LimitsConfig{
			QueriesPerSecond:   0,
			SlowQueryThreshold: 50 * time.Millisecond,
		},
	}
}

// LoadConfig loads the YAML configuration file, falling back silently to
// defaults when the file is absent. Missing keys keep their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing config file is non-fatal: defaults apply.
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv applies environment overrides following the pattern
// INDEXSERVE_<SECTION>_<KEY>, e.g. INDEXSERVE_DATABASE_HOST.
func (c *Config) LoadFromEnv() {
	if val := os.Getenv("INDEXSERVE_DATABASE_DB_TYPE"); val != "" {
		c.Database.Type = val
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_TABLE_NAME"); val != "" {
		c.Database.TableName = val
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_PORT"); val != "" {
		var port int
		if _, err := fmt.Sscanf(val, "%d", &port); err == nil {
			c.Database.Port = port
		}
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_DBNAME"); val != "" {
		c.Database.DBName = val
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("INDEXSERVE_DATABASE_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("INDEXSERVE_FORMAT_DATE_FORMAT"); val != "" {
		c.Format.DateFormat = val
	}
	if val := os.Getenv("INDEXSERVE_CACHE_TYPE"); val != "" {
		c.Cache.Type = val
	}
	if val := os.Getenv("INDEXSERVE_CACHE_ENDPOINT"); val != "" {
		c.Cache.Endpoint = val
	}
	if val := os.Getenv("INDEXSERVE_CACHE_CAPACITY"); val != "" {
		var capacity int
		if _, err := fmt.Sscanf(val, "%d", &capacity); err == nil {
			c.Cache.Capacity = capacity
		}
	}
	if val := os.Getenv("INDEXSERVE_AUDIT_ENABLED"); val != "" {
		c.Audit.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("INDEXSERVE_AUDIT_BROKERS"); val != "" {
		c.Audit.Brokers = strings.Split(val, ",")
	}
	if val := os.Getenv("INDEXSERVE_AUDIT_TOPIC"); val != "" {
		c.Audit.Topic = val
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "mysql":
	case "":
		return fmt.Errorf("database.db_type is required")
	default:
		return fmt.Errorf("database.db_type must be 'sqlite' or 'mysql', got %q", c.Database.Type)
	}

	if c.Database.TableName == "" {
		return fmt.Errorf("database.table_name is required")
	}
	if !identifierPattern.MatchString(c.Database.TableName) {
		return fmt.Errorf("database.table_name %q is not a valid SQL identifier", c.Database.TableName)
	}

	if c.Database.Type == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("database.db_path is required for sqlite")
	}
	if c.Database.Type == "mysql" {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for mysql")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database.port must be between 1 and 65535")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database.dbname is required for mysql")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for mysql")
		}
	}

	if _, err := query.LayoutFromStrftime(c.Format.DateFormat); err != nil {
		return fmt.Errorf("format.date_format: %w", err)
	}

	switch c.Cache.Type {
	case "", "memory":
	case "redis":
		if c.Cache.Endpoint == "" {
			return fmt.Errorf("cache.endpoint is required for redis")
		}
	default:
		return fmt.Errorf("cache.type must be 'memory' or 'redis', got %q", c.Cache.Type)
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must be non-negative")
	}

	if c.Audit.Enabled {
		if len(c.Audit.Brokers) == 0 {
			return fmt.Errorf("audit.brokers is required when audit is enabled")
		}
		if c.Audit.Topic == "" {
			return fmt.Errorf("audit.topic is required when audit is enabled")
		}
	}

	if c.Limits.QueriesPerSecond < 0 {
		return fmt.Errorf("limits.queries_per_second must be non-negative")
	}
	return nil
}

// DateLayout returns the configured date format as a Go reference layout.
// Validate must have succeeded first.
func (c *Config) DateLayout() string {
	layout, err := query.LayoutFromStrftime(c.Format.DateFormat)
	if err != nil {
		return query.DefaultDateLayout
	}
	return layout
}
