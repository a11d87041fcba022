package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks the configuration for values that would only fail later at
// open or listen time.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := cfg.Program(); err != nil {
		errs = append(errs, err)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", cfg.LogLevel))
	}

	if _, _, err := net.SplitHostPort(cfg.Server.Listen); err != nil {
		errs = append(errs, fmt.Errorf("invalid server.listen %q: %w", cfg.Server.Listen, err))
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}

	switch cfg.Storage.Backend {
	case BackendPebble, BackendLevelDB:
		if cfg.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for backend %q", cfg.Storage.Backend))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend))
	}

	switch cfg.Storage.Compression {
	case "lz4", "none", "":
	default:
		errs = append(errs, fmt.Errorf("unknown storage.compression %q", cfg.Storage.Compression))
	}

	if cfg.Storage.CacheSize < 0 {
		errs = append(errs, errors.New("storage.cache_size cannot be negative"))
	}

	switch cfg.History.Driver {
	case HistorySQLite, HistoryPostgres:
		if cfg.History.DSN == "" {
			errs = append(errs, fmt.Errorf("history.dsn is required for driver %q", cfg.History.Driver))
		}
	case HistoryNone:
	default:
		errs = append(errs, fmt.Errorf("unknown history.driver %q", cfg.History.Driver))
	}

	return errors.Join(errs...)
}
