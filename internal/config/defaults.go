package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultProgramID is the well-known vault program identifier used when none
// is configured. It is the system program key pattern reserved for local and
// test deployments.
const DefaultProgramID = "Vau1t11111111111111111111111111111111111111"

func setDefaults(v *viper.Viper) {
	v.SetDefault("program_id", DefaultProgramID)
	v.SetDefault("log_level", "info")

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("storage.backend", BackendPebble)
	v.SetDefault("storage.path", "vaultd-db")
	v.SetDefault("storage.compression", "lz4")
	v.SetDefault("storage.cache_size", 4096)

	v.SetDefault("history.driver", HistorySQLite)
	v.SetDefault("history.dsn", "file:vaultd-history.db")
}
