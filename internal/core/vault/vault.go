// Package vault implements the custodial vault program: proportional share
// issuance against pooled deposits, fee-split redemption, and an owner-gated
// proxy into an external exchange.
package vault

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/addr"
	"github.com/custodia/govaultd/internal/core/entry"
	"github.com/custodia/govaultd/internal/core/token"
	"github.com/custodia/govaultd/internal/core/tx"
)

// Fee constants, in basis points of the redeemed claim amount.
const (
	// OwnerFeeBps is the redemption fee routed to the vault owner (0.5%).
	OwnerFeeBps = 50
	// BurnFeeBps is the deflationary redemption fee (1%).
	BurnFeeBps = 100
	// FeeDenominator converts basis points to a fraction.
	FeeDenominator = 10000

	// MaxWhitelistedTokens bounds the proxy-swap destination whitelist.
	MaxWhitelistedTokens = 10

	// MaxRouteLen bounds the opaque route payload forwarded to the
	// exchange.
	MaxRouteLen = 512
)

// Vault validation errors.
var (
	ErrSignerRequired   = fmt.Errorf("%w: signer account is required", tx.ErrInvalidArgument)
	ErrProgramRequired  = fmt.Errorf("%w: program id is required", tx.ErrInvalidArgument)
	ErrMintRequired     = fmt.Errorf("%w: mint is required", tx.ErrInvalidArgument)
	ErrVaultRequired    = fmt.Errorf("%w: vault account is required", tx.ErrInvalidArgument)
	ErrAccountRequired  = fmt.Errorf("%w: token account is required", tx.ErrInvalidArgument)
	ErrAmountZero       = fmt.Errorf("%w: amount must be greater than zero", tx.ErrInvalidArgument)
	ErrRouteTooLong     = fmt.Errorf("%w: route payload exceeds maximum length", tx.ErrInvalidArgument)
	ErrWhitelistFull    = errors.New("whitelist has reached the maximum number of tokens")
	ErrSlippageExceeded = errors.New("exchange output below minimum amount out")
	ErrNoExchange       = errors.New("no exchange collaborator configured")
)

// PositionKind tags the strategy-position variant of a vault record.
type PositionKind uint8

const (
	// PositionNone means the vault holds no external strategy position.
	PositionNone PositionKind = 0
	// PositionActive means Position and Pool reference a live strategy
	// position.
	PositionActive PositionKind = 1
)

// Position is the vault's strategy-position field. Deposit, withdraw and
// proxy-swap never change it; a separate strategy-entry call does.
type Position struct {
	Kind     PositionKind
	Position solana.PublicKey
	Pool     solana.PublicKey
}

// Record is the persisted vault state, one per (owner, asset) pair.
type Record struct {
	// Owner configures the vault and receives redemption fees. Immutable.
	Owner solana.PublicKey
	// Asset is the underlying asset mint this vault takes custody of.
	Asset solana.PublicKey
	// ShareMint is the claim-token mint this vault mints and burns.
	ShareMint solana.PublicKey
	// TotalShares is the claim supply outstanding against the custody
	// balance.
	TotalShares uint64
	// Bumps are the persisted derivation bumps for this vault's control
	// addresses.
	Bumps addr.Bumps
	// StrategyPosition is the optional external position reference.
	StrategyPosition Position
	// Whitelist is the ordered set of permitted proxy-swap destination
	// mints. Empty means unrestricted.
	Whitelist []solana.PublicKey
}

// Whitelisted reports whether mint is in the vault's whitelist.
func (r *Record) Whitelisted(mint solana.PublicKey) bool {
	for _, m := range r.Whitelist {
		if m == mint {
			return true
		}
	}
	return false
}

// LoadRecord reads the vault record stored at address, or nil if absent.
// Query surfaces use it; instructions go through their tracked view.
func LoadRecord(view tx.LedgerView, address solana.PublicKey) (*Record, error) {
	return readRecord(view, address)
}

// readRecord loads the vault record stored at address, or nil if absent.
func readRecord(view tx.LedgerView, address solana.PublicKey) (*Record, error) {
	data, err := view.Read(address)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var rec Record
	if err := entry.Decode(data, entry.KindVault, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func writeRecord(view tx.LedgerView, address solana.PublicKey, rec *Record, insert bool) error {
	data, err := entry.Encode(entry.KindVault, *rec)
	if err != nil {
		return err
	}
	if insert {
		return view.Insert(address, data)
	}
	return view.Update(address, data)
}

// Base carries the fields every vault instruction has: the program to
// execute under and the signing principal.
type Base struct {
	Program solana.PublicKey `json:"program"`
	Account solana.PublicKey `json:"account"`
}

// Signer returns the signing principal.
func (b Base) Signer() solana.PublicKey {
	return b.Account
}

func (b Base) validate() error {
	if b.Account.IsZero() {
		return ErrSignerRequired
	}
	if b.Program.IsZero() {
		return ErrProgramRequired
	}
	return nil
}

// mulDiv computes floor(a*b/div) through a 128-bit intermediate. The second
// return is false when div is zero or the quotient does not fit in 64 bits.
func mulDiv(a, b, div uint64) (uint64, bool) {
	if div == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= div {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, div)
	return q, true
}

// resultFromTokenErr maps token-layer failures onto result codes.
func resultFromTokenErr(ctx *tx.ApplyContext, err error) tx.Result {
	switch {
	case errors.Is(err, token.ErrInsufficient):
		return ctx.FailWith(tx.ResInsufficientFunds, err)
	case errors.Is(err, token.ErrNotAuthorized):
		return ctx.FailWith(tx.ResUnauthorized, err)
	case errors.Is(err, token.ErrNoAccount), errors.Is(err, token.ErrNoMint):
		return ctx.FailWith(tx.ResNoEntry, err)
	case errors.Is(err, token.ErrMintMismatch):
		return ctx.FailWith(tx.ResAddressMismatch, err)
	case errors.Is(err, token.ErrSupplyRange):
		return ctx.FailWith(tx.ResOverflow, err)
	default:
		return ctx.FailWith(tx.ResInternal, err)
	}
}

// vaultSigner rebuilds the capability to sign as the vault record address
// (the share mint authority) from the persisted bump.
func vaultSigner(rec *Record, program solana.PublicKey) addr.Signer {
	return addr.NewSigner(
		[][]byte{addr.SeedVault, rec.Owner.Bytes(), rec.Asset.Bytes()},
		rec.Bumps.Vault,
		program,
	)
}
