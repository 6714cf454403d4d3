package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Mode: "debug"},
		Redis:  RedisConfig{Mode: "standalone", Host: "localhost", Port: 6379},
		Resolver: ResolverConfig{
			EQBatchSize:       2500,
			PipelineBlockSize: 1000,
		},
		Log:      LogConfig{Level: "info", Format: "json"},
		Callback: CallbackConfig{MaxRetries: 3},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	assert.NoError(t, newValidConfig().Validate())
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	cfg := newValidConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidServerMode(t *testing.T) {
	cfg := newValidConfig()
	cfg.Server.Mode = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidRedisMode(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.Mode = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_StandaloneRequiresHost(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.Host = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_ClusterRequiresAddrs(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.Mode = "cluster"
	cfg.Redis.ClusterAddrs = nil
	assert.Error(t, cfg.Validate())

	cfg.Redis.ClusterAddrs = []string{"node1:6379"}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_SentinelRequiresAddrs(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.Mode = "sentinel"
	cfg.Redis.SentinelAddrs = nil
	assert.Error(t, cfg.Validate())

	cfg.Redis.SentinelAddrs = []string{"sentinel1:26379"}
	cfg.Redis.MasterName = "mymaster"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_NegativeRedisDB(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.DB = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidEQBatchSize(t *testing.T) {
	cfg := newValidConfig()
	cfg.Resolver.EQBatchSize = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidPipelineBlockSize(t *testing.T) {
	cfg := newValidConfig()
	cfg.Resolver.PipelineBlockSize = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Log.Level = "invalid"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_NegativeCallbackRetries(t *testing.T) {
	cfg := newValidConfig()
	cfg.Callback.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", r.Addr())
}
