package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia/govaultd/internal/storage/keyvaluedb"
)

func TestLevelDBRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get([]byte("missing"))
	assert.ErrorIs(t, err, keyvaluedb.ErrNotFound)

	require.NoError(t, store.Put([]byte("vault"), []byte("record")))
	value, err := store.Get([]byte("vault"))
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), value)

	require.NoError(t, store.Delete([]byte("vault")))
	_, err = store.Get([]byte("vault"))
	assert.ErrorIs(t, err, keyvaluedb.ErrNotFound)
}

func TestLevelDBForEach(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put([]byte("a"), []byte("1")))
	require.NoError(t, store.Put([]byte("b"), []byte("2")))

	seen := map[string]string{}
	require.NoError(t, store.ForEach(func(key, value []byte) error {
		seen[string(key)] = string(value)
		return nil
	}))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, seen)
}
