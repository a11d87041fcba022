package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/addr"
	"github.com/custodia/govaultd/internal/core/token"
	"github.com/custodia/govaultd/internal/core/tx"
)

func init() {
	tx.Register("deposit", func() tx.Instruction { return &Deposit{} })
}

// Deposit moves amount of the underlying asset into custody and mints
// proportional claim shares to the depositor.
type Deposit struct {
	Base

	// Vault is the vault record address.
	Vault solana.PublicKey `json:"vault"`

	// Custody is the vault's custody token account.
	Custody solana.PublicKey `json:"custody"`

	// DepositorAssetAccount funds the deposit.
	DepositorAssetAccount solana.PublicKey `json:"depositor_asset_account"`

	// DepositorShareAccount receives the minted shares; created on first
	// use. Must match the derived token account for (signer, share mint).
	DepositorShareAccount solana.PublicKey `json:"depositor_share_account"`

	// Amount must be greater than zero.
	Amount uint64 `json:"amount"`
}

// Kind returns the instruction kind.
func (ix *Deposit) Kind() string { return "deposit" }

// Validate checks the instruction without reading state.
func (ix *Deposit) Validate() error {
	if err := ix.Base.validate(); err != nil {
		return err
	}
	if ix.Vault.IsZero() {
		return ErrVaultRequired
	}
	if ix.Custody.IsZero() || ix.DepositorAssetAccount.IsZero() || ix.DepositorShareAccount.IsZero() {
		return ErrAccountRequired
	}
	if ix.Amount == 0 {
		return ErrAmountZero
	}
	return nil
}

// Apply executes the deposit.
func (ix *Deposit) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, err := readRecord(ctx.View, ix.Vault)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if rec == nil {
		return tx.ResNoEntry
	}

	derived, err := addr.Derive(rec.Owner, rec.Asset, ctx.Program)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if derived.Custody != ix.Custody {
		return ctx.FailWith(tx.ResAddressMismatch, tx.ErrAddressMismatch)
	}
	shareAccount, _, err := addr.TokenAccount(ix.Account, rec.ShareMint, ctx.Program)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if shareAccount != ix.DepositorShareAccount {
		return ctx.FailWith(tx.ResAddressMismatch, tx.ErrAddressMismatch)
	}

	ledger := token.NewLedger(ctx)

	// Exchange rate is recomputed from current balances on every call,
	// never cached. B is the custody balance before this transfer lands.
	custodyBalance, err := ledger.Balance(ix.Custody)
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	var minted uint64
	if rec.TotalShares == 0 {
		// Bootstrap at 1:1; seed liquidity stays unclaimed.
		minted = ix.Amount
	} else {
		var ok bool
		minted, ok = mulDiv(ix.Amount, rec.TotalShares, custodyBalance)
		if !ok {
			return tx.ResOverflow
		}
	}

	err = ledger.Transfer(rec.Asset, ix.DepositorAssetAccount, ix.Custody, ix.Amount, token.KeyAuthority(ix.Account))
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	if _, err := ledger.EnsureAccount(ix.DepositorShareAccount, rec.ShareMint, ix.Account); err != nil {
		return resultFromTokenErr(ctx, err)
	}

	// The share mint authority is the vault record address; sign with the
	// derived capability.
	err = ledger.MintTo(rec.ShareMint, ix.DepositorShareAccount, minted, vaultSigner(rec, ctx.Program))
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	if rec.TotalShares > ^uint64(0)-minted {
		return tx.ResOverflow
	}
	rec.TotalShares += minted
	if err := writeRecord(ctx.View, ix.Vault, rec, false); err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}

	return tx.ResOK
}
