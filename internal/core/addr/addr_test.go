package addr

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	program := solana.NewWallet().PublicKey()

	first, err := Derive(owner, mint, program)
	require.NoError(t, err)
	second, err := Derive(owner, mint, program)
	require.NoError(t, err)

	assert.Equal(t, first, second, "derivation must be a pure function")
	assert.False(t, first.Vault.IsOnCurve(), "vault address must be off-curve")
	assert.False(t, first.Authority.IsOnCurve(), "authority address must be off-curve")
	assert.False(t, first.Custody.IsOnCurve(), "custody address must be off-curve")
}

func TestDeriveDistinctPerInput(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	ownerA := solana.NewWallet().PublicKey()
	ownerB := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	a, err := Derive(ownerA, mint, program)
	require.NoError(t, err)
	b, err := Derive(ownerB, mint, program)
	require.NoError(t, err)

	assert.NotEqual(t, a.Vault, b.Vault)
	assert.NotEqual(t, a.Authority, b.Authority)
	assert.NotEqual(t, a.Custody, b.Custody)
}

func TestAuthoritySignerRoundTrip(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	program := solana.NewWallet().PublicKey()

	addrs, err := Derive(owner, mint, program)
	require.NoError(t, err)

	signer := AuthoritySigner(addrs.Vault, program, addrs.Bumps.Authority)
	got, err := signer.Address()
	require.NoError(t, err)
	assert.Equal(t, addrs.Authority, got, "capability must rebuild the derived authority exactly")
}

func TestAuthoritySignerWrongSeeds(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	program := solana.NewWallet().PublicKey()

	addrs, err := Derive(owner, mint, program)
	require.NoError(t, err)

	// A capability built over the wrong vault can never produce the real
	// authority address.
	wrong := AuthoritySigner(solana.NewWallet().PublicKey(), program, addrs.Bumps.Authority)
	got, err := wrong.Address()
	if err == nil {
		assert.NotEqual(t, addrs.Authority, got)
	}
}

func TestTokenAccountDistinctPerHolder(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	a, _, err := TokenAccount(solana.NewWallet().PublicKey(), mint, program)
	require.NoError(t, err)
	b, _, err := TokenAccount(solana.NewWallet().PublicKey(), mint, program)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
