package tx

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Instruction is one atomic call against the vault program.
//
// Validate performs every stateless check (missing fields, zero amounts,
// oversized payloads); it must not touch the ledger. Apply executes against
// the tracked view in the context and returns a result code. The engine
// commits the view only on ResOK, so Apply never needs to undo anything.
type Instruction interface {
	// Kind returns the registered instruction name.
	Kind() string

	// Signer returns the principal whose signature authorizes this call.
	Signer() solana.PublicKey

	// Validate checks the instruction without reading state.
	Validate() error

	// Apply executes the instruction against ctx.View.
	Apply(ctx *ApplyContext) Result
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Instruction)
)

// Register adds an instruction constructor under kind. Called from package
// init functions.
func Register(kind string, factory func() Instruction) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("tx: duplicate instruction kind %q", kind))
	}
	registry[kind] = factory
}

// New returns a zero instruction of the given kind, or an error if the kind
// is unknown.
func New(kind string) (Instruction, error) {
	registryMu.RLock()
	factory, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tx: unknown instruction kind %q", kind)
	}
	return factory(), nil
}

// Kinds returns the registered instruction kinds, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
