package tx

import "github.com/gagliardetto/solana-go"

// Effect kinds recorded in the per-instruction effect log.
const (
	EffectTransfer = "transfer"
	EffectMint     = "mint"
	EffectBurn     = "burn"
	EffectCreate   = "create"
	EffectSwap     = "swap"
)

// Effect is one inner balance movement produced while applying an
// instruction. The ordered log is returned to the caller on commit so the
// exact transfer amounts and parties are inspectable; on any failure the log
// is dropped with the rest of the instruction's work.
type Effect struct {
	Kind      string           `json:"kind"`
	Mint      solana.PublicKey `json:"mint,omitempty"`
	From      solana.PublicKey `json:"from,omitempty"`
	To        solana.PublicKey `json:"to,omitempty"`
	Authority solana.PublicKey `json:"authority,omitempty"`
	Amount    uint64           `json:"amount"`

	// AmountOut is set on swap effects only.
	AmountOut uint64 `json:"amount_out,omitempty"`
}

// Effects accumulates the ordered effect log for one instruction.
type Effects struct {
	list []Effect
}

// Record appends one effect to the log.
func (e *Effects) Record(effect Effect) {
	e.list = append(e.list, effect)
}

// List returns the recorded effects in order.
func (e *Effects) List() []Effect {
	return e.list
}
