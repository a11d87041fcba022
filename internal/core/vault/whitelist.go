package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/tx"
)

func init() {
	tx.Register("whitelist_add", func() tx.Instruction { return &WhitelistAdd{} })
	tx.Register("whitelist_remove", func() tx.Instruction { return &WhitelistRemove{} })
}

// WhitelistAdd adds a mint to the vault's proxy-swap destination whitelist.
// Adding a mint that is already present succeeds without change.
type WhitelistAdd struct {
	Base

	// Vault is the vault record address.
	Vault solana.PublicKey `json:"vault"`

	// Mint is the destination mint to permit.
	Mint solana.PublicKey `json:"mint"`
}

// Kind returns the instruction kind.
func (ix *WhitelistAdd) Kind() string { return "whitelist_add" }

// Validate checks the instruction without reading state.
func (ix *WhitelistAdd) Validate() error {
	if err := ix.Base.validate(); err != nil {
		return err
	}
	if ix.Vault.IsZero() {
		return ErrVaultRequired
	}
	if ix.Mint.IsZero() {
		return ErrMintRequired
	}
	return nil
}

// Apply adds the mint.
func (ix *WhitelistAdd) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, err := readRecord(ctx.View, ix.Vault)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if rec == nil {
		return tx.ResNoEntry
	}
	if ix.Account != rec.Owner {
		return tx.ResUnauthorized
	}
	if rec.Whitelisted(ix.Mint) {
		return tx.ResOK
	}
	if len(rec.Whitelist) >= MaxWhitelistedTokens {
		return ctx.FailWith(tx.ResPolicyViolation, ErrWhitelistFull)
	}
	rec.Whitelist = append(rec.Whitelist, ix.Mint)
	if err := writeRecord(ctx.View, ix.Vault, rec, false); err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	return tx.ResOK
}

// WhitelistRemove removes a mint from the vault's whitelist. Removing a mint
// that is not present succeeds without change.
type WhitelistRemove struct {
	Base

	// Vault is the vault record address.
	Vault solana.PublicKey `json:"vault"`

	// Mint is the destination mint to remove.
	Mint solana.PublicKey `json:"mint"`
}

// Kind returns the instruction kind.
func (ix *WhitelistRemove) Kind() string { return "whitelist_remove" }

// Validate checks the instruction without reading state.
func (ix *WhitelistRemove) Validate() error {
	if err := ix.Base.validate(); err != nil {
		return err
	}
	if ix.Vault.IsZero() {
		return ErrVaultRequired
	}
	if ix.Mint.IsZero() {
		return ErrMintRequired
	}
	return nil
}

// Apply removes the mint.
func (ix *WhitelistRemove) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, err := readRecord(ctx.View, ix.Vault)
	if err != nil {
		return ctx.FailWith(tx.ResInternal, err)
	}
	if rec == nil {
		return tx.ResNoEntry
	}
	if ix.Account != rec.Owner {
		return tx.ResUnauthorized
	}
	for i, m := range rec.Whitelist {
		if m != ix.Mint {
			continue
		}
		rec.Whitelist = append(rec.Whitelist[:i], rec.Whitelist[i+1:]...)
		if err := writeRecord(ctx.View, ix.Vault, rec, false); err != nil {
			return ctx.FailWith(tx.ResInternal, err)
		}
		return tx.ResOK
	}
	return tx.ResOK
}
