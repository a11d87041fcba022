package historydb

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia/govaultd/internal/core/tx"
)

func TestSQLiteAppendAndRecent(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	mint := solana.NewWallet().PublicKey()
	first := tx.HistoryRecord{
		Kind:   "deposit",
		Signer: solana.NewWallet().PublicKey().String(),
		Code:   tx.ResOK,
		Effects: []tx.Effect{
			{Kind: tx.EffectTransfer, Mint: mint, Amount: 5},
			{Kind: tx.EffectMint, Mint: mint, Amount: 5},
		},
		AppliedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	second := tx.HistoryRecord{
		Kind:      "withdraw",
		Signer:    first.Signer,
		Code:      tx.ResInsufficientFunds,
		AppliedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	require.NoError(t, store.Append(first))
	require.NoError(t, store.Append(second))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "withdraw", records[0].Kind)
	assert.Equal(t, tx.ResInsufficientFunds, records[0].Code)
	assert.Equal(t, "deposit", records[1].Kind)
	require.Len(t, records[1].Effects, 2)
	assert.Equal(t, tx.EffectTransfer, records[1].Effects[0].Kind)
	assert.Equal(t, uint64(5), records[1].Effects[0].Amount)
	assert.Equal(t, mint, records[1].Effects[0].Mint)
	assert.Equal(t, first.AppliedAt, records[1].AppliedAt)
}

func TestSQLiteRecentLimit(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(tx.HistoryRecord{
			Kind:      "deposit",
			Signer:    "signer",
			Code:      tx.ResOK,
			AppliedAt: time.Now().UTC(),
		}))
	}

	records, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
