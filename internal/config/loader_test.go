package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: debug
redis:
  mode: standalone
  host: localhost
  port: 6379
resolver:
  eq_batch_size: 2500
  pipeline_block_size: 1000
log:
  level: info
  format: json
`

func createTempConfigFile(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func setEnvVars(t *testing.T, vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
	t.Cleanup(func() {
		for k := range vars {
			os.Unsetenv(k)
		}
	})
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load("non_existent_config.yaml")
	assert.Error(t, err)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "invalid_yaml: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	invalidConfig := `
server:
  port: 70000
  mode: debug
`
	path := createTempConfigFile(t, invalidConfig)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	setEnvVars(t, map[string]string{
		"NODENORM_SERVER_PORT": "9999",
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_EnvOverride_ReferenceEnvVar(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	setEnvVars(t, map[string]string{
		"REDIS_HOST":    "redis-override",
		"EQ_BATCH_SIZE": "500",
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis-override", cfg.Redis.Host)
	assert.Equal(t, 500, cfg.Resolver.EQBatchSize)
}

func TestLoad_DefaultValues(t *testing.T) {
	minimalYAML := `
server:
  port: 8080
  mode: debug
redis:
  mode: standalone
  host: localhost
  port: 6379
resolver:
  eq_batch_size: 2500
  pipeline_block_size: 1000
`
	path := createTempConfigFile(t, minimalYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	setEnvVars(t, map[string]string{
		"NODENORM_SERVER_PORT":   "8080",
		"NODENORM_SERVER_MODE":   "debug",
		"NODENORM_REDIS_MODE":    "standalone",
		"REDIS_HOST":             "localhost",
		"REDIS_PORT":             "6379",
		"EQ_BATCH_SIZE":          "2500",
		"NODENORM_LOG_LEVEL":     "info",
		"NODENORM_LOG_FORMAT":    "json",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 2500, cfg.Resolver.EQBatchSize)
}

func TestMustLoad_Success(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() {
		MustLoad(path)
	})
}

func TestMustLoad_Panic(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad("non_existent.yaml")
	})
}

func TestWatch_RegistersWithoutPanic(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	// Watch registers a filesystem watcher; we only assert it doesn't panic
	// wiring up the initial read, since exercising the fsnotify callback
	// reliably in a unit test requires real filesystem event timing.
	assert.NotPanics(t, func() {
		Watch(path, func(cfg *Config) {})
	})
}
