// Package keyvaluedb defines the key-value storage interface the ledger
// persists entries through, plus an in-memory implementation used by tests
// and standalone runs.
package keyvaluedb

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("keyvaluedb: key not found")

// Store is a minimal key-value database.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Put stores value under key, replacing any existing value.
	Put(key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// ForEach calls fn for every key/value pair. Iteration stops at the
	// first error.
	ForEach(fn func(key, value []byte) error) error

	// Close releases underlying resources.
	Close() error
}

// Memory is a Store backed by a map. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.items[string(key)] = stored
	return nil
}

func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, string(key))
	return nil
}

func (m *Memory) ForEach(fn func(key, value []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, value := range m.items {
		if err := fn([]byte(key), value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
