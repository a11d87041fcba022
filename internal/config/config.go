// Package config loads and validates the vaultd configuration from file,
// environment and defaults.
package config

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Storage backends.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// History drivers.
const (
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
	HistoryNone     = "none"
)

// Config is the complete vaultd configuration.
type Config struct {
	// ProgramID is the base58 program identifier all vault addresses are
	// derived under. Changing it re-keys every vault.
	ProgramID string `toml:"program_id" mapstructure:"program_id"`

	LogLevel string `toml:"log_level" mapstructure:"log_level"`

	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	History HistoryConfig `toml:"history" mapstructure:"history"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the JSON-RPC listener.
type ServerConfig struct {
	Listen       string        `toml:"listen" mapstructure:"listen"`
	ReadTimeout  time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
}

// StorageConfig configures the ledger entry store.
type StorageConfig struct {
	// Backend selects the key-value engine: pebble, leveldb or memory.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the on-disk database directory. Ignored for memory.
	Path string `toml:"path" mapstructure:"path"`

	// Compression names the value compressor, or "none".
	Compression string `toml:"compression" mapstructure:"compression"`

	// CacheSize is the entry count of the read-through LRU cache. Zero
	// disables caching.
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`
}

// HistoryConfig configures the instruction history store.
type HistoryConfig struct {
	// Driver selects sqlite, postgres or none.
	Driver string `toml:"driver" mapstructure:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// Program parses the configured program identifier.
func (c *Config) Program() (solana.PublicKey, error) {
	pub, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse program_id %q: %w", c.ProgramID, err)
	}
	return pub, nil
}

// Path returns the file this configuration was loaded from, empty when built
// from defaults and environment only.
func (c *Config) Path() string {
	return c.configPath
}
