package vault_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/custodia/govaultd/internal/core/tx"
	"github.com/custodia/govaultd/internal/core/vault"
)

func (e *env) whitelistAdd(signer, mint solana.PublicKey) tx.ApplyResult {
	return e.engine().Apply(&vault.WhitelistAdd{
		Base:  vault.Base{Program: e.program, Account: signer},
		Vault: e.derived.Vault,
		Mint:  mint,
	})
}

func (e *env) whitelistRemove(signer, mint solana.PublicKey) tx.ApplyResult {
	return e.engine().Apply(&vault.WhitelistRemove{
		Base:  vault.Base{Program: e.program, Account: signer},
		Vault: e.derived.Vault,
		Mint:  mint,
	})
}

func TestWhitelistAddRemove(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, tx.ResOK, e.initialize(0).Code)

	mint := solana.NewWallet().PublicKey()
	require.Equal(t, tx.ResOK, e.whitelistAdd(e.owner, mint).Code)
	require.True(t, e.record().Whitelisted(mint))

	// Re-adding is a successful no-op, not a duplicate entry.
	require.Equal(t, tx.ResOK, e.whitelistAdd(e.owner, mint).Code)
	require.Len(t, e.record().Whitelist, 1)

	require.Equal(t, tx.ResOK, e.whitelistRemove(e.owner, mint).Code)
	require.False(t, e.record().Whitelisted(mint))
	require.Empty(t, e.record().Whitelist)

	// Removing an absent mint succeeds without change.
	require.Equal(t, tx.ResOK, e.whitelistRemove(e.owner, mint).Code)
}

func TestWhitelistCapacity(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, tx.ResOK, e.initialize(0).Code)

	mints := make([]solana.PublicKey, vault.MaxWhitelistedTokens)
	for i := range mints {
		mints[i] = solana.NewWallet().PublicKey()
		require.Equal(t, tx.ResOK, e.whitelistAdd(e.owner, mints[i]).Code)
	}
	require.Len(t, e.record().Whitelist, vault.MaxWhitelistedTokens)

	res := e.whitelistAdd(e.owner, solana.NewWallet().PublicKey())
	require.Equal(t, tx.ResPolicyViolation, res.Code)
	require.ErrorIs(t, res.Err, vault.ErrWhitelistFull)

	// A full list still accepts re-adds of present mints and frees a slot
	// on removal.
	require.Equal(t, tx.ResOK, e.whitelistAdd(e.owner, mints[0]).Code)
	require.Equal(t, tx.ResOK, e.whitelistRemove(e.owner, mints[0]).Code)
	require.Equal(t, tx.ResOK, e.whitelistAdd(e.owner, solana.NewWallet().PublicKey()).Code)
}

func TestWhitelistOwnerGate(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, tx.ResOK, e.initialize(0).Code)

	mint := solana.NewWallet().PublicKey()
	require.Equal(t, tx.ResUnauthorized, e.whitelistAdd(e.depositor, mint).Code)
	require.Equal(t, tx.ResUnauthorized, e.whitelistRemove(e.depositor, mint).Code)
	require.Empty(t, e.record().Whitelist)
}

func TestWhitelistNoVault(t *testing.T) {
	e := newEnv(t)

	res := e.whitelistAdd(e.owner, solana.NewWallet().PublicKey())
	require.Equal(t, tx.ResNoEntry, res.Code)
}
