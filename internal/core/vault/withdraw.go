package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/addr"
	"github.com/custodia/govaultd/internal/core/token"
	"github.com/custodia/govaultd/internal/core/tx"
)

func init() {
	tx.Register("withdraw", func() tx.Instruction { return &Withdraw{} })
}

// Withdraw redeems claim shares for the underlying asset under the fee
// split: 0.5% of the claim amount to the owner in shares, 1% burned, the
// rest exchanged at the current rate. The withdrawer's share balance always
// drops by exactly the claim amount.
type Withdraw struct {
	Base

	// Vault is the vault record address.
	Vault solana.PublicKey `json:"vault"`

	// Custody is the vault's custody token account.
	Custody solana.PublicKey `json:"custody"`

	// WithdrawerAssetAccount receives the underlying asset.
	WithdrawerAssetAccount solana.PublicKey `json:"withdrawer_asset_account"`

	// WithdrawerShareAccount is debited the full claim amount.
	WithdrawerShareAccount solana.PublicKey `json:"withdrawer_share_account"`

	// OwnerShareAccount receives the owner fee, created on first use.
	OwnerShareAccount solana.PublicKey `json:"owner_share_account"`

	// ClaimAmount must be greater than zero.
	ClaimAmount uint64 `json:"claim_amount"`
}

// Kind returns the instruction kind.
func (ix *Withdraw) Kind() string { return "withdraw" }

// Validate checks the instruction without reading state.
func (ix *Withdraw) Validate() error {
	if err := ix.Base.validate(); err != nil {
		return err
	}
	if ix.Vault.IsZero() {
		return ErrVaultRequired
	}
	if ix.Custody.IsZero() || ix.WithdrawerAssetAccount.IsZero() ||
		ix.WithdrawerShareAccount.IsZero() || ix.OwnerShareAccount.IsZero() {
		return ErrAccountRequired
	}
	if ix.ClaimAmount == 0 {
		return ErrAmountZero
	}
	return nil
}

// Apply executes the withdrawal.
func (ix *Withdraw) Apply(ctx *tx.ApplyContext) tx.Result {
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
	ownerShare, _, err := addr.TokenAccount(rec.Owner, rec.ShareMint, ctx.Program)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if ownerShare != ix.OwnerShareAccount {
		return ctx.FailWith(tx.ResAddressMismatch, tx.ErrAddressMismatch)
	}

	ledger := token.NewLedger(ctx)

	// Every precondition is checked before any movement.
	balance, err := ledger.Balance(ix.WithdrawerShareAccount)
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}
	if balance < ix.ClaimAmount {
		return tx.ResInsufficientFunds
	}

	// Fees are a flat percentage of the shares redeemed, floor division;
	// truncation remainders stay in custody backing the remaining claims.
	ownerFee, ok := mulDiv(ix.ClaimAmount, OwnerFeeBps, FeeDenominator)
	if !ok {
		return tx.ResOverflow
	}
	burnFee, ok := mulDiv(ix.ClaimAmount, BurnFeeBps, FeeDenominator)
	if !ok {
		return tx.ResOverflow
	}
	net := ix.ClaimAmount - ownerFee - burnFee

	if rec.TotalShares == 0 {
		// Shares exist in an account but not in the record: the ledger is
		// corrupt.
		return tx.ResInternal
	}
	custodyBalance, err := ledger.Balance(ix.Custody)
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}
	assetOut, ok := mulDiv(net, custodyBalance, rec.TotalShares)
	if !ok {
		return tx.ResOverflow
	}

	// Leg 1: pay out the underlying, signed by the derived authority.
	authority := addr.AuthoritySigner(ix.Vault, ctx.Program, rec.Bumps.Authority)
	err = ledger.Transfer(rec.Asset, ix.Custody, ix.WithdrawerAssetAccount, assetOut, authority)
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	// The redeemed shares move to the vault-held claims account, so the
	// claim supply invariant (total shares == sum of account balances)
	// holds while the withdrawer's balance drops by the full claim amount.
	claimsAccount, _, err := addr.ClaimsAccount(ix.Vault, ctx.Program)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if _, err := ledger.EnsureAccount(claimsAccount, rec.ShareMint, derived.Authority); err != nil {
		return resultFromTokenErr(ctx, err)
	}
	err = ledger.Transfer(rec.ShareMint, ix.WithdrawerShareAccount, claimsAccount, net, token.KeyAuthority(ix.Account))
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	// Leg 2: owner fee, paid in shares.
	if _, err := ledger.EnsureAccount(ix.OwnerShareAccount, rec.ShareMint, rec.Owner); err != nil {
		return resultFromTokenErr(ctx, err)
	}
	err = ledger.Transfer(rec.ShareMint, ix.WithdrawerShareAccount, ix.OwnerShareAccount, ownerFee, token.KeyAuthority(ix.Account))
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	// Leg 3: deflationary burn. Only this leg reduces total shares.
	err = ledger.Burn(rec.ShareMint, ix.WithdrawerShareAccount, burnFee, token.KeyAuthority(ix.Account))
	if err != nil {
		return resultFromTokenErr(ctx, err)
	}

	rec.TotalShares -= burnFee
	if err := writeRecord(ctx.View, ix.Vault, rec, false); err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}

	return tx.ResOK
}
