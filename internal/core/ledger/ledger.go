// Package ledger adapts a keyvaluedb.Store to the tx.LedgerView the
// instruction engine executes against. Entries are keyed by their 32-byte
// address.
package ledger

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/tx"
	"github.com/custodia/govaultd/internal/storage/keyvaluedb"
)

// Ledger is the base, durable ledger view.
type Ledger struct {
	store keyvaluedb.Store
}

// New wraps a key-value store as a ledger view.
func New(store keyvaluedb.Store) *Ledger {
	return &Ledger{store: store}
}

// NewMemory returns a ledger over an in-memory store. Used by tests and
// standalone mode.
func NewMemory() *Ledger {
	return New(keyvaluedb.NewMemory())
}

func (l *Ledger) Read(key solana.PublicKey) ([]byte, error) {
	data, err := l.store.Get(key.Bytes())
	if errors.Is(err, keyvaluedb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger read %s: %w", key, err)
	}
	return data, nil
}

func (l *Ledger) Exists(key solana.PublicKey) (bool, error) {
	data, err := l.Read(key)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

func (l *Ledger) Insert(key solana.PublicKey, data []byte) error {
	exists, err := l.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return tx.ErrEntryExists
	}
	return l.store.Put(key.Bytes(), data)
}

func (l *Ledger) Update(key solana.PublicKey, data []byte) error {
	exists, err := l.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("ledger update of missing entry %s", key)
	}
	return l.store.Put(key.Bytes(), data)
}

func (l *Ledger) Erase(key solana.PublicKey) error {
	return l.store.Delete(key.Bytes())
}

// Snapshot returns a copy of every entry, keyed by address. Tests use it to
// assert that failed instructions leave state bit-for-bit unchanged.
func (l *Ledger) Snapshot() (map[solana.PublicKey][]byte, error) {
	out := make(map[solana.PublicKey][]byte)
	err := l.store.ForEach(func(key, value []byte) error {
		if len(key) != solana.PublicKeyLength {
			return fmt.Errorf("ledger snapshot: bad key length %d", len(key))
		}
		pub := solana.PublicKeyFromBytes(key)
		copied := make([]byte, len(value))
		copy(copied, value)
		out[pub] = copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
