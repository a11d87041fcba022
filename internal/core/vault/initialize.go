package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/addr"
	"github.com/custodia/govaultd/internal/core/token"
	"github.com/custodia/govaultd/internal/core/tx"
)

func init() {
	tx.Register("initialize", func() tx.Instruction { return &Initialize{} })
}

// Initialize creates the vault record and custody account for an
// (owner, asset) pair and optionally moves seed liquidity into custody.
// Seed liquidity mints no shares: total shares stay zero.
type Initialize struct {
	Base

	// Asset is the underlying asset mint the vault takes custody of.
	Asset solana.PublicKey `json:"asset"`

	// ShareMint is the claim-token mint. The caller must separately grant
	// the vault record address mint authority before the first deposit.
	ShareMint solana.PublicKey `json:"share_mint"`

	// OwnerAssetAccount is the signer's asset token account funding the
	// seed transfer.
	OwnerAssetAccount solana.PublicKey `json:"owner_asset_account"`

	// Vault, Authority and Custody are the caller-derived control
	// addresses; they must match the program's own derivation exactly.
	Vault     solana.PublicKey `json:"vault"`
	Authority solana.PublicKey `json:"authority"`
	Custody   solana.PublicKey `json:"custody"`

	// SeedAmount may be zero.
	SeedAmount uint64 `json:"seed_amount"`
}

// Kind returns the instruction kind.
func (ix *Initialize) Kind() string { return "initialize" }

// Validate checks the instruction without reading state.
func (ix *Initialize) Validate() error {
	if err := ix.Base.validate(); err != nil {
		return err
	}
	if ix.Asset.IsZero() || ix.ShareMint.IsZero() {
		return ErrMintRequired
	}
	if ix.Vault.IsZero() || ix.Authority.IsZero() || ix.Custody.IsZero() {
		return ErrVaultRequired
	}
	if ix.SeedAmount > 0 && ix.OwnerAssetAccount.IsZero() {
		return ErrAccountRequired
	}
	return nil
}

// Apply creates the vault.
func (ix *Initialize) Apply(ctx *tx.ApplyContext) tx.Result {
	derived, err := addr.Derive(ix.Account, ix.Asset, ctx.Program)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if derived.Vault != ix.Vault || derived.Authority != ix.Authority || derived.Custody != ix.Custody {
		return ctx.FailWith(tx.ResAddressMismatch, tx.ErrAddressMismatch)
	}

	exists, err := ctx.View.Exists(ix.Vault)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if exists {
		return tx.ResEntryExists
	}

	ledger := token.NewLedger(ctx)
	if _, err := ledger.Mint(ix.Asset); err != nil {
		return resultFromTokenErr(ctx, err)
	}
	if _, err := ledger.Mint(ix.ShareMint); err != nil {
		return resultFromTokenErr(ctx, err)
	}

	rec := Record{
		Owner:     ix.Account,
		Asset:     ix.Asset,
		ShareMint: ix.ShareMint,
		Bumps:     derived.Bumps,
	}
	if err := writeRecord(ctx.View, ix.Vault, &rec, true); err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}

	// Custody is owned by the derived authority, never by a user key.
	if err := ledger.CreateAccount(ix.Custody, ix.Asset, ix.Authority); err != nil {
		return resultFromTokenErr(ctx, err)
	}

	if ix.SeedAmount > 0 {
		err := ledger.Transfer(ix.Asset, ix.OwnerAssetAccount, ix.Custody, ix.SeedAmount, token.KeyAuthority(ix.Account))
		if err != nil {
			return resultFromTokenErr(ctx, err)
		}
	}

	return tx.ResOK
}
