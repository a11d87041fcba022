// Package addr derives the control addresses of a vault from its seeds.
//
// Every address is a program-derived address: it is computed from seeds and
// the program id, is guaranteed not to lie on the ed25519 curve, and so has
// no private key. Callers and the program must derive identically or every
// instruction fails with an address mismatch.
package addr

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed prefixes. These match the vault program's on-chain derivation and
// must never change once vaults exist.
var (
	SeedVault     = []byte("vault")
	SeedAuthority = []byte("authority")
	SeedCustody   = []byte("tokens")
	SeedClaims    = []byte("claims")
	SeedToken     = []byte("token")
)

var ErrDerivation = errors.New("no valid bump found for seeds")

// Bumps holds the disambiguation byte for each derived address. They are
// persisted in the vault record so later instructions can rebuild the
// signing authority without searching again.
type Bumps struct {
	Vault     uint8 `json:"vault"`
	Authority uint8 `json:"authority"`
	Custody   uint8 `json:"custody"`
}

// Addresses is the full set of control addresses for one (owner, mint) vault.
type Addresses struct {
	Vault     solana.PublicKey `json:"vault"`
	Authority solana.PublicKey `json:"authority"`
	Custody   solana.PublicKey `json:"custody"`
	Bumps     Bumps            `json:"bumps"`
}

// Derive computes the vault record, signing authority and custody account
// addresses for an (owner, mint) pair under programID. Pure: same inputs
// always produce the same outputs.
func Derive(owner, mint, programID solana.PublicKey) (Addresses, error) {
	vault, vaultBump, err := solana.FindProgramAddress(
		[][]byte{SeedVault, owner.Bytes(), mint.Bytes()},
		programID,
	)
	if err != nil {
		return Addresses{}, fmt.Errorf("derive vault: %w", ErrDerivation)
	}

	authority, authorityBump, err := solana.FindProgramAddress(
		[][]byte{SeedAuthority, vault.Bytes()},
		programID,
	)
	if err != nil {
		return Addresses{}, fmt.Errorf("derive authority: %w", ErrDerivation)
	}

	custody, custodyBump, err := solana.FindProgramAddress(
		[][]byte{SeedCustody, vault.Bytes()},
		programID,
	)
	if err != nil {
		return Addresses{}, fmt.Errorf("derive custody: %w", ErrDerivation)
	}

	return Addresses{
		Vault:     vault,
		Authority: authority,
		Custody:   custody,
		Bumps: Bumps{
			Vault:     vaultBump,
			Authority: authorityBump,
			Custody:   custodyBump,
		},
	}, nil
}

// ClaimsAccount derives the vault-held claim-token account that receives the
// redeemed portion of every withdrawal.
func ClaimsAccount(vault, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{SeedClaims, vault.Bytes()}, programID)
}

// TokenAccount derives the deterministic token account address for a holder
// and mint. Claim-token accounts are created lazily at this address on first
// issuance.
func TokenAccount(holder, mint, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{SeedToken, holder.Bytes(), mint.Bytes()}, programID)
}

// Signer is the capability to act as a derived address. It can only be built
// by code holding the correct seeds; Address recomputes the derived address
// from them, so a wrong seed set simply yields an address that owns nothing.
type Signer struct {
	seeds     [][]byte
	bump      uint8
	programID solana.PublicKey
}

// NewSigner builds a capability from explicit seeds and bump.
func NewSigner(seeds [][]byte, bump uint8, programID solana.PublicKey) Signer {
	return Signer{seeds: seeds, bump: bump, programID: programID}
}

// AuthoritySigner builds the signing capability for the vault's custody
// authority from the persisted bump.
func AuthoritySigner(vault, programID solana.PublicKey, bump uint8) Signer {
	return Signer{
		seeds:     [][]byte{SeedAuthority, vault.Bytes()},
		bump:      bump,
		programID: programID,
	}
}

// Address returns the derived address this capability signs for. It fails if
// seeds plus bump do not produce a valid off-curve address.
func (s Signer) Address() (solana.PublicKey, error) {
	seeds := make([][]byte, 0, len(s.seeds)+1)
	seeds = append(seeds, s.seeds...)
	seeds = append(seeds, []byte{s.bump})
	pub, err := solana.CreateProgramAddress(seeds, s.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("rebuild derived signer: %w", err)
	}
	return pub, nil
}
