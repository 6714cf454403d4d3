// Package config defines all configuration structures for the node
// normalization service. No I/O or parsing logic lives here — only plain
// data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	Root            string        `mapstructure:"root"` // SERVER_ROOT, advertised in OpenAPI servers
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds the connection parameters for a single logical Redis
// deployment that backs the MultiStore. Mode selects standalone, sentinel,
// or cluster topology; a store-config file (see StoreConfig) maps each
// logical store name from spec.md §4.A onto one of these deployments.
type RedisConfig struct {
	Mode             string        `mapstructure:"mode"` // "standalone" | "sentinel" | "cluster"
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	ClusterAddrs     []string      `mapstructure:"cluster_addrs"`
	SentinelAddrs    []string      `mapstructure:"sentinel_addrs"`
	MasterName       string        `mapstructure:"master_name"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	SSL              bool          `mapstructure:"ssl"`
	PoolSize         int           `mapstructure:"pool_size"`
	MinIdleConns     int           `mapstructure:"min_idle_conns"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// Addr returns the host:port pair used by standalone/sentinel dialing.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StoreEntry describes which Redis deployment backs one logical store named
// in spec.md §4.A, by name of a deployment declared under StoreConfig.Deployments.
type StoreEntry struct {
	Deployment string `mapstructure:"deployment"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// StoreConfig is the YAML store-config document of spec.md §6: a mapping of
// every logical store name to the Redis deployment that backs it, plus the
// named Redis deployments themselves.
type StoreConfig struct {
	Deployments map[string]RedisConfig `mapstructure:"deployments"`
	Stores      map[string]StoreEntry  `mapstructure:"stores"`
}

// ResolverConfig holds tunables for the Clique Resolver and MultiStore
// batching described in spec.md §4.A and §5.
type ResolverConfig struct {
	// EQBatchSize is the per-multiGet batch ceiling (spec.md §4.A). A batch
	// larger than this is split into sequential chunks and concatenated.
	EQBatchSize int `mapstructure:"eq_batch_size"`

	// PipelineBlockSize is the number of write operations accumulated before
	// an ingestion pipeline is flushed (spec.md §4.A).
	PipelineBlockSize int `mapstructure:"pipeline_block_size"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "console"
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// MetricsConfig holds Prometheus exposition tunables.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Enabled   bool   `mapstructure:"enabled"`
}

// CallbackConfig controls the retry policy for /asyncquery callback delivery
// (spec.md §6).
type CallbackConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	BackoffFactor   float64       `mapstructure:"backoff_factor"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the node normalization
// service.
type Config struct {
	Server       ServerConfig   `mapstructure:"server"`
	Redis        RedisConfig    `mapstructure:"redis"`
	Resolver     ResolverConfig `mapstructure:"resolver"`
	Log          LogConfig      `mapstructure:"log"`
	Metrics      MetricsConfig  `mapstructure:"metrics"`
	Callback     CallbackConfig `mapstructure:"callback"`
	BabelVersion string         `mapstructure:"babel_version"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Redis.Mode {
	case "standalone", "sentinel", "cluster":
	default:
		return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
	}
	if c.Redis.Mode == "standalone" && c.Redis.Host == "" {
		return fmt.Errorf("config: redis.host is required in standalone mode")
	}
	if c.Redis.Mode == "cluster" && len(c.Redis.ClusterAddrs) == 0 {
		return fmt.Errorf("config: redis.cluster_addrs must contain at least one address in cluster mode")
	}
	if c.Redis.Mode == "sentinel" && len(c.Redis.SentinelAddrs) == 0 {
		return fmt.Errorf("config: redis.sentinel_addrs must contain at least one address in sentinel mode")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	if c.Resolver.EQBatchSize < 1 {
		return fmt.Errorf("config: resolver.eq_batch_size must be ≥ 1, got %d", c.Resolver.EQBatchSize)
	}
	if c.Resolver.PipelineBlockSize < 1 {
		return fmt.Errorf("config: resolver.pipeline_block_size must be ≥ 1, got %d", c.Resolver.PipelineBlockSize)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Callback.MaxRetries < 0 {
		return fmt.Errorf("config: callback.max_retries must be ≥ 0, got %d", c.Callback.MaxRetries)
	}

	return nil
}
