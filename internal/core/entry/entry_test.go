package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string
	Balance uint64
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sample{Name: "custody", Balance: 42}

	data, err := Encode(KindToken, in)
	require.NoError(t, err)

	kind, err := KindOf(data)
	require.NoError(t, err)
	assert.Equal(t, KindToken, kind)

	var out sample
	require.NoError(t, Decode(data, KindToken, &out))
	assert.Equal(t, in, out)
}

func TestEncodeCanonical(t *testing.T) {
	in := sample{Name: "custody", Balance: 42}

	a, err := Encode(KindVault, in)
	require.NoError(t, err)
	b, err := Encode(KindVault, in)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same entry must always serialize to the same bytes")
}

func TestDecodeKindMismatch(t *testing.T) {
	data, err := Encode(KindMint, sample{})
	require.NoError(t, err)

	var out sample
	err = Decode(data, KindVault, &out)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestDecodeEmpty(t *testing.T) {
	var out sample
	assert.ErrorIs(t, Decode(nil, KindToken, &out), ErrEmpty)

	_, err := KindOf(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}
