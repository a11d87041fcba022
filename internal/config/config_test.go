package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	require.Equal(t, DefaultProgramID, cfg.ProgramID)
	require.Equal(t, BackendPebble, cfg.Storage.Backend)
	require.Equal(t, HistorySQLite, cfg.History.Driver)
	require.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)

	program, err := cfg.Program()
	require.NoError(t, err)
	require.False(t, program.IsZero())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vaultd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[server]
listen = "0.0.0.0:9100"
read_timeout = "10s"

[storage]
backend = "leveldb"
path = "/tmp/vaultd-test-db"
compression = "none"
cache_size = 128

[history]
driver = "none"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "0.0.0.0:9100", cfg.Server.Listen)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, BackendLevelDB, cfg.Storage.Backend)
	require.Equal(t, "none", cfg.Storage.Compression)
	require.Equal(t, 128, cfg.Storage.CacheSize)
	require.Equal(t, HistoryNone, cfg.History.Driver)
	require.Equal(t, path, cfg.Path())

	// Unset keys keep their defaults.
	require.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	require.Equal(t, DefaultProgramID, cfg.ProgramID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("VAULTD_LOG_LEVEL", "warn")
	t.Setenv("VAULTD_STORAGE_BACKEND", "memory")

	cfg, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadDefault()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"bad program id", func(cfg *Config) { cfg.ProgramID = "not-base58-!!" }},
		{"bad log level", func(cfg *Config) { cfg.LogLevel = "trace" }},
		{"bad listen", func(cfg *Config) { cfg.Server.Listen = "no-port" }},
		{"zero timeout", func(cfg *Config) { cfg.Server.ReadTimeout = 0 }},
		{"unknown backend", func(cfg *Config) { cfg.Storage.Backend = "rocksdb" }},
		{"missing path", func(cfg *Config) { cfg.Storage.Path = "" }},
		{"unknown compression", func(cfg *Config) { cfg.Storage.Compression = "zstd" }},
		{"negative cache", func(cfg *Config) { cfg.Storage.CacheSize = -1 }},
		{"unknown history driver", func(cfg *Config) { cfg.History.Driver = "mysql" }},
		{"missing dsn", func(cfg *Config) { cfg.History.DSN = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			require.Error(t, Validate(cfg))
		})
	}

	t.Run("memory backend needs no path", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Backend = BackendMemory
		cfg.Storage.Path = ""
		require.NoError(t, Validate(cfg))
	})
}
