package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/addr"
	"github.com/custodia/govaultd/internal/core/token"
	"github.com/custodia/govaultd/internal/core/tx"
)

func init() {
	tx.Register("proxy_swap", func() tx.Instruction { return &ProxySwap{} })
}

// ProxySwap forwards a bounded swap instruction to the external exchange on
// behalf of the vault. Only the vault owner may call it. The route payload
// is opaque and passed through untouched; the exchange's effects share this
// instruction's state table, so a failure or slippage shortfall rolls
// everything back.
type ProxySwap struct {
	Base

	// Vault is the vault record address.
	Vault solana.PublicKey `json:"vault"`

	// Source and Destination are the token accounts the swap moves
	// between.
	Source      solana.PublicKey `json:"source"`
	Destination solana.PublicKey `json:"destination"`

	// SourceMint and DestinationMint identify the assets on each side.
	SourceMint      solana.PublicKey `json:"source_mint"`
	DestinationMint solana.PublicKey `json:"destination_mint"`

	// AmountIn must be greater than zero.
	AmountIn uint64 `json:"amount_in"`

	// MinAmountOut is the all-or-nothing slippage floor.
	MinAmountOut uint64 `json:"min_amount_out"`

	// Route is the opaque routing payload for the exchange.
	Route []byte `json:"route"`
}

// Kind returns the instruction kind.
func (ix *ProxySwap) Kind() string { return "proxy_swap" }

// Validate checks the instruction without reading state. Route contents are
// not interpreted here; only the size bound is enforced.
func (ix *ProxySwap) Validate() error {
	if err := ix.Base.validate(); err != nil {
		return err
	}
	if ix.Vault.IsZero() {
		return ErrVaultRequired
	}
	if ix.Source.IsZero() || ix.Destination.IsZero() {
		return ErrAccountRequired
	}
	if ix.SourceMint.IsZero() || ix.DestinationMint.IsZero() {
		return ErrMintRequired
	}
	if ix.AmountIn == 0 {
		return ErrAmountZero
	}
	if len(ix.Route) > MaxRouteLen {
		return ErrRouteTooLong
	}
	return nil
}

// Apply authorizes and forwards the swap.
func (ix *ProxySwap) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, err := readRecord(ctx.View, ix.Vault)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if rec == nil {
		return tx.ResNoEntry
	}

	// The authorization gate comes before everything else, including any
	// look at the route.
	if ix.Account != rec.Owner {
		return tx.ResUnauthorized
	}

	// An empty whitelist means unrestricted.
	if len(rec.Whitelist) > 0 && !rec.Whitelisted(ix.DestinationMint) {
		return tx.ResPolicyViolation
	}

	ledger := token.NewLedger(ctx)
	source, err := ledger.Account(ix.Source)
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	// The vault's derived authority signs only when the swap moves
	// vault-custodied assets; otherwise the owner signs for their own
	// accounts.
	var authority solana.PublicKey
	switch source.Owner {
	case ix.Account:
		authority = ix.Account
	default:
		signer := addr.AuthoritySigner(ix.Vault, ctx.Program, rec.Bumps.Authority)
		derivedAuthority, err := signer.Address()
		if err != nil {
			return ctx.FailWith(tx.ResInternal, err)
		}
		if source.Owner != derivedAuthority {
			return tx.ResUnauthorized
		}
		authority = derivedAuthority
	}

	if ctx.Exchange == nil {
		return ctx.FailWith(tx.ResCollaboratorFailure, ErrNoExchange)
	}

	amountOut, err := ctx.Exchange.Swap(ctx.View, ctx.Effects, tx.SwapRequest{
		Source:          ix.Source,
		Destination:     ix.Destination,
		SourceMint:      ix.SourceMint,
		DestinationMint: ix.DestinationMint,
		AmountIn:        ix.AmountIn,
		MinAmountOut:    ix.MinAmountOut,
		Route:           ix.Route,
		Authority:       authority,
	})
	if err != nil {
		// Propagated unchanged; the shared state table rolls back.
		return ctx.Fail(err)
	}
	if amountOut < ix.MinAmountOut {
		return ctx.FailWith(tx.ResCollaboratorFailure, ErrSlippageExceeded)
	}

	ctx.Effects.Record(tx.Effect{
		Kind:      tx.EffectSwap,
		Mint:      ix.DestinationMint,
		From:      ix.Source,
		To:        ix.Destination,
		Authority: authority,
		Amount:    ix.AmountIn,
		AmountOut: amountOut,
	})
	return tx.ResOK
}
