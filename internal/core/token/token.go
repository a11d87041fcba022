// Package token implements the fungible-token primitives the vault program
// builds on: mints, per-holder token accounts, and authority-checked
// transfer, mint and burn. All mutations go through a tx.LedgerView, so they
// inherit the caller's atomicity.
package token

import (
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/entry"
	"github.com/custodia/govaultd/internal/core/tx"
)

var (
	ErrNoMint        = errors.New("mint does not exist")
	ErrNoAccount     = errors.New("token account does not exist")
	ErrMintMismatch  = errors.New("token account mint mismatch")
	ErrNotAuthorized = errors.New("authority cannot move this balance")
	ErrInsufficient  = errors.New("insufficient token balance")
	ErrSupplyRange   = errors.New("token supply out of range")
)

// Mint is a fungible asset class. Authority is the only principal allowed to
// mint new supply.
type Mint struct {
	Authority solana.PublicKey
	Supply    uint64
	Decimals  uint8
}

// Account is one holder's balance of a mint.
type Account struct {
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Balance uint64
}

// Authority is the capability to move a balance. Address re-derives or
// returns the signing principal; an authority whose address does not match
// the account owner is refused.
type Authority interface {
	Address() (solana.PublicKey, error)
}

type keyAuthority struct{ key solana.PublicKey }

func (a keyAuthority) Address() (solana.PublicKey, error) { return a.key, nil }

// KeyAuthority is the authority of an ordinary signing principal.
func KeyAuthority(key solana.PublicKey) Authority {
	return keyAuthority{key: key}
}

// Ledger exposes token operations over one instruction's tracked view,
// recording every balance movement in the effect log.
type Ledger struct {
	view    tx.LedgerView
	effects *tx.Effects
}

// NewLedger builds a token ledger over the instruction's context.
func NewLedger(ctx *tx.ApplyContext) *Ledger {
	return &Ledger{view: ctx.View, effects: ctx.Effects}
}

// NewLedgerOver builds a token ledger over an explicit view and effect log.
// Used by setup tooling and by the exchange collaborator boundary.
func NewLedgerOver(view tx.LedgerView, effects *tx.Effects) *Ledger {
	return &Ledger{view: view, effects: effects}
}

// CreateMint creates a new fungible asset class at address.
func (l *Ledger) CreateMint(address, authority solana.PublicKey, decimals uint8) error {
	data, err := entry.Encode(entry.KindMint, Mint{Authority: authority, Decimals: decimals})
	if err != nil {
		return err
	}
	return l.view.Insert(address, data)
}

// Mint reads the mint at address.
func (l *Ledger) Mint(address solana.PublicKey) (*Mint, error) {
	data, err := l.view.Read(address)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMint, address)
	}
	var m Mint
	if err := entry.Decode(data, entry.KindMint, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateAccount creates an empty token account for owner at address.
func (l *Ledger) CreateAccount(address, mint, owner solana.PublicKey) error {
	if _, err := l.Mint(mint); err != nil {
		return err
	}
	data, err := entry.Encode(entry.KindToken, Account{Mint: mint, Owner: owner})
	if err != nil {
		return err
	}
	if err := l.view.Insert(address, data); err != nil {
		return err
	}
	l.record(tx.Effect{Kind: tx.EffectCreate, Mint: mint, To: address})
	return nil
}

// EnsureAccount returns the token account at address, creating it empty if
// absent. Claim-token accounts come into being this way on first contact.
func (l *Ledger) EnsureAccount(address, mint, owner solana.PublicKey) (*Account, error) {
	acct, err := l.Account(address)
	if err == nil {
		if acct.Mint != mint {
			return nil, fmt.Errorf("%w: account %s", ErrMintMismatch, address)
		}
		return acct, nil
	}
	if !errors.Is(err, ErrNoAccount) {
		return nil, err
	}
	if err := l.CreateAccount(address, mint, owner); err != nil {
		return nil, err
	}
	return l.Account(address)
}

// Account reads the token account at address.
func (l *Ledger) Account(address solana.PublicKey) (*Account, error) {
	data, err := l.view.Read(address)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAccount, address)
	}
	var a Account
	if err := entry.Decode(data, entry.KindToken, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Balance returns the balance at address, zero if the account is absent.
func (l *Ledger) Balance(address solana.PublicKey) (uint64, error) {
	acct, err := l.Account(address)
	if errors.Is(err, ErrNoAccount) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Transfer moves amount between two accounts of the same mint. The authority
// must resolve to the source account's owner. Zero-amount transfers are
// legal and still recorded.
func (l *Ledger) Transfer(mint, from, to solana.PublicKey, amount uint64, auth Authority) error {
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	if src.Mint != mint || dst.Mint != mint {
		return fmt.Errorf("%w: transfer %s -> %s", ErrMintMismatch, from, to)
	}

	signer, err := auth.Address()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
	}
	if signer != src.Owner {
		return fmt.Errorf("%w: %s is not owner of %s", ErrNotAuthorized, signer, from)
	}

	if src.Balance < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficient, from, src.Balance, amount)
	}
	if dst.Balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrSupplyRange, to)
	}

	src.Balance -= amount
	dst.Balance += amount
	if err := l.writeAccount(from, src); err != nil {
		return err
	}
	if err := l.writeAccount(to, dst); err != nil {
		return err
	}

	l.record(tx.Effect{
		Kind:      tx.EffectTransfer,
		Mint:      mint,
		From:      from,
		To:        to,
		Authority: signer,
		Amount:    amount,
	})
	return nil
}

// MintTo creates amount new units of mint in the destination account. The
// authority must resolve to the mint authority.
func (l *Ledger) MintTo(mint, to solana.PublicKey, amount uint64, auth Authority) error {
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	signer, err := auth.Address()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
	}
	if signer != m.Authority {
		return fmt.Errorf("%w: %s is not the mint authority", ErrNotAuthorized, signer)
	}

	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	if dst.Mint != mint {
		return fmt.Errorf("%w: account %s", ErrMintMismatch, to)
	}
	if m.Supply > math.MaxUint64-amount || dst.Balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: mint %s", ErrSupplyRange, mint)
	}

	m.Supply += amount
	dst.Balance += amount
	if err := l.writeMint(mint, m); err != nil {
		return err
	}
	if err := l.writeAccount(to, dst); err != nil {
		return err
	}

	l.record(tx.Effect{
		Kind:      tx.EffectMint,
		Mint:      mint,
		To:        to,
		Authority: signer,
		Amount:    amount,
	})
	return nil
}

// Burn destroys amount units held in from. The authority must resolve to the
// account owner.
func (l *Ledger) Burn(mint, from solana.PublicKey, amount uint64, auth Authority) error {
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	if src.Mint != mint {
		return fmt.Errorf("%w: account %s", ErrMintMismatch, from)
	}

	signer, err := auth.Address()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
	}
	if signer != src.Owner {
		return fmt.Errorf("%w: %s is not owner of %s", ErrNotAuthorized, signer, from)
	}

	if src.Balance < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficient, from, src.Balance, amount)
	}
	if m.Supply < amount {
		return fmt.Errorf("%w: mint %s supply below burn", ErrSupplyRange, mint)
	}

	src.Balance -= amount
	m.Supply -= amount
	if err := l.writeAccount(from, src); err != nil {
		return err
	}
	if err := l.writeMint(mint, m); err != nil {
		return err
	}

	l.record(tx.Effect{
		Kind:      tx.EffectBurn,
		Mint:      mint,
		From:      from,
		Authority: signer,
		Amount:    amount,
	})
	return nil
}

func (l *Ledger) writeAccount(address solana.PublicKey, a *Account) error {
	data, err := entry.Encode(entry.KindToken, *a)
	if err != nil {
		return err
	}
	return l.view.Update(address, data)
}

func (l *Ledger) writeMint(address solana.PublicKey, m *Mint) error {
	data, err := entry.Encode(entry.KindMint, *m)
	if err != nil {
		return err
	}
	return l.view.Update(address, data)
}

func (l *Ledger) record(e tx.Effect) {
	if l.effects != nil {
		l.effects.Record(e)
	}
}
