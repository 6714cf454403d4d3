// Package config provides configuration loading, defaults, and validation for
// the node normalization service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultRedisMode = "standalone"
	DefaultRedisHost = "localhost"
	DefaultRedisPort = 6379

	// DefaultEQBatchSize is the multiGet batch ceiling from spec.md §4.A,
	// overridable via EQ_BATCH_SIZE.
	DefaultEQBatchSize = 2500

	// DefaultPipelineBlockSize is the ingestion write-pipeline flush size
	// from spec.md §4.A.
	DefaultPipelineBlockSize = 1000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "node_normalizer"

	DefaultCallbackMaxRetries    = 3
	DefaultCallbackBackoffFactor = 3.0

	DefaultBabelVersion = "dev"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills the zero-value fields in cfg that have a platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = DefaultRedisHost
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = DefaultRedisPort
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.OperationTimeout == 0 {
		cfg.Redis.OperationTimeout = 5 * time.Second
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 50
	}

	if cfg.Resolver.EQBatchSize == 0 {
		cfg.Resolver.EQBatchSize = DefaultEQBatchSize
	}
	if cfg.Resolver.PipelineBlockSize == 0 {
		cfg.Resolver.PipelineBlockSize = DefaultPipelineBlockSize
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.Callback.MaxRetries == 0 {
		cfg.Callback.MaxRetries = DefaultCallbackMaxRetries
	}
	if cfg.Callback.BackoffFactor == 0 {
		cfg.Callback.BackoffFactor = DefaultCallbackBackoffFactor
	}
	if cfg.Callback.InitialInterval == 0 {
		cfg.Callback.InitialInterval = 500 * time.Millisecond
	}
	if cfg.Callback.RequestTimeout == 0 {
		cfg.Callback.RequestTimeout = 10 * time.Second
	}

	if cfg.BabelVersion == "" {
		cfg.BabelVersion = DefaultBabelVersion
	}
}
