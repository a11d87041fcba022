package tx

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// Sentinel rejection causes. Instruction validation errors wrap one of these
// so the engine can map them to a result code without string matching.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAddressMismatch = errors.New("address mismatch")
)

// SwapRequest is the bounded instruction forwarded to the external exchange.
// The route payload is opaque: validated only for size at the boundary and
// passed through untouched.
type SwapRequest struct {
	Source          solana.PublicKey
	Destination     solana.PublicKey
	SourceMint      solana.PublicKey
	DestinationMint solana.PublicKey
	AmountIn        uint64
	MinAmountOut    uint64
	Route           []byte

	// Authority is the address entitled to move the source account. The
	// gateway resolves it (owner key or derived vault authority) before
	// forwarding.
	Authority solana.PublicKey
}

// Exchange is the external swap collaborator. Swap moves balances through
// the supplied view and returns the realized output amount. All of its
// effects live in the same tracked view as the calling instruction, so a
// failure or slippage shortfall rolls everything back together.
type Exchange interface {
	Swap(view LedgerView, effects *Effects, req SwapRequest) (amountOut uint64, err error)
}

// ApplyContext carries everything an instruction needs while executing.
type ApplyContext struct {
	// View is the tracked state table for this instruction.
	View LedgerView

	// Program is the vault program identifier used for derivations.
	Program solana.PublicKey

	// Effects is the ordered effect log for this instruction.
	Effects *Effects

	// Exchange is the external swap collaborator, nil unless configured.
	Exchange Exchange

	failure error
}

// Fail records the underlying error behind a non-success result so the
// engine can propagate it unchanged.
func (ctx *ApplyContext) Fail(err error) Result {
	ctx.failure = err
	return ResCollaboratorFailure
}

// FailWith records err and returns the given code.
func (ctx *ApplyContext) FailWith(code Result, err error) Result {
	ctx.failure = err
	return code
}
