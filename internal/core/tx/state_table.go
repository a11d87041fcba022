package tx

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// LedgerView provides read/write access to ledger entries keyed by address.
// Read returns nil data (and no error) when the entry does not exist.
type LedgerView interface {
	Read(key solana.PublicKey) ([]byte, error)
	Exists(key solana.PublicKey) (bool, error)
	Insert(key solana.PublicKey, data []byte) error
	Update(key solana.PublicKey, data []byte) error
	Erase(key solana.PublicKey) error
}

var ErrEntryExists = errors.New("entry already exists")

// Action is the kind of modification tracked for a ledger entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

type trackedEntry struct {
	action   Action
	original []byte // nil for inserts
	current  []byte // nil after erase
}

// ApplyStateTable wraps a base LedgerView and buffers every modification an
// instruction makes. Nothing reaches the base view until Commit; dropping
// the table discards all buffered work. This is what gives each instruction
// its all-or-nothing semantics.
type ApplyStateTable struct {
	base  LedgerView
	items map[solana.PublicKey]*trackedEntry
	order []solana.PublicKey
}

// NewApplyStateTable creates a tracked view over base.
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[solana.PublicKey]*trackedEntry),
	}
}

// Read returns the entry at key, observing buffered modifications first.
func (t *ApplyStateTable) Read(key solana.PublicKey) ([]byte, error) {
	if entry, ok := t.items[key]; ok {
		if entry.action == ActionErase {
			return nil, nil
		}
		return entry.current, nil
	}

	data, err := t.base.Read(key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		t.track(key, &trackedEntry{action: ActionCache, original: data, current: data})
	}
	return data, nil
}

// Exists reports whether an entry exists at key.
func (t *ApplyStateTable) Exists(key solana.PublicKey) (bool, error) {
	if entry, ok := t.items[key]; ok {
		return entry.action != ActionErase, nil
	}
	return t.base.Exists(key)
}

// Insert buffers creation of a new entry.
func (t *ApplyStateTable) Insert(key solana.PublicKey, data []byte) error {
	if entry, ok := t.items[key]; ok {
		if entry.action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify.
		entry.action = ActionModify
		entry.current = data
		return nil
	}

	exists, err := t.base.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.track(key, &trackedEntry{action: ActionInsert, current: data})
	return nil
}

// Update buffers modification of an existing entry.
func (t *ApplyStateTable) Update(key solana.PublicKey, data []byte) error {
	if entry, ok := t.items[key]; ok {
		switch entry.action {
		case ActionErase:
			return fmt.Errorf("update of erased entry %s", key)
		case ActionCache:
			entry.action = ActionModify
		}
		entry.current = data
		return nil
	}

	original, err := t.base.Read(key)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("update of missing entry %s", key)
	}

	t.track(key, &trackedEntry{action: ActionModify, original: original, current: data})
	return nil
}

// Erase buffers deletion of an entry.
func (t *ApplyStateTable) Erase(key solana.PublicKey) error {
	if entry, ok := t.items[key]; ok {
		if entry.action == ActionErase {
			return nil
		}
		if entry.action == ActionInsert {
			delete(t.items, key)
			return nil
		}
		entry.action = ActionErase
		entry.current = nil
		return nil
	}

	original, err := t.base.Read(key)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("erase of missing entry %s", key)
	}

	t.track(key, &trackedEntry{action: ActionErase, original: original})
	return nil
}

// Commit writes every buffered modification through to the base view, in
// first-touch order.
func (t *ApplyStateTable) Commit() error {
	for _, key := range t.order {
		entry := t.items[key]
		var err error
		switch entry.action {
		case ActionCache:
			// Read-only, nothing to write.
		case ActionInsert:
			err = t.base.Insert(key, entry.current)
		case ActionModify:
			err = t.base.Update(key, entry.current)
		case ActionErase:
			err = t.base.Erase(key)
		}
		if err != nil {
			return fmt.Errorf("commit %s: %w", key, err)
		}
	}
	return nil
}

func (t *ApplyStateTable) track(key solana.PublicKey, entry *trackedEntry) {
	t.items[key] = entry
	t.order = append(t.order, key)
}
