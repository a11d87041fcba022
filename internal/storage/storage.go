// Package storage assembles the configured storage stack: a key-value
// backend wrapped with compression and caching for ledger entries, and an
// optional SQL history store.
package storage

import (
	"fmt"

	"github.com/custodia/govaultd/internal/config"
	"github.com/custodia/govaultd/internal/storage/historydb"
	"github.com/custodia/govaultd/internal/storage/keyvaluedb"
	"github.com/custodia/govaultd/internal/storage/keyvaluedb/compression"
	"github.com/custodia/govaultd/internal/storage/keyvaluedb/leveldb"
	"github.com/custodia/govaultd/internal/storage/keyvaluedb/pebble"
)

// OpenStore opens the entry store described by cfg, layered innermost to
// outermost: backend, compression, cache.
func OpenStore(cfg config.StorageConfig) (keyvaluedb.Store, error) {
	var (
		store keyvaluedb.Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendPebble:
		store, err = pebble.Open(cfg.Path)
	case config.BackendLevelDB:
		store, err = leveldb.Open(cfg.Path)
	case config.BackendMemory:
		store = keyvaluedb.NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store at %s: %w", cfg.Backend, cfg.Path, err)
	}

	if cfg.Compression != "" && cfg.Compression != "none" {
		comp, err := compression.Get(cfg.Compression)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = keyvaluedb.NewCompressed(store, comp)
	}

	if cfg.CacheSize > 0 {
		cached, err := keyvaluedb.NewCached(store, cfg.CacheSize)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = cached
	}

	return store, nil
}

// OpenHistory opens the instruction history store, or returns nil when
// history is disabled.
func OpenHistory(cfg config.HistoryConfig) (historydb.Store, error) {
	switch cfg.Driver {
	case config.HistorySQLite:
		store, err := historydb.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.HistoryPostgres:
		store, err := historydb.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.HistoryNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}
