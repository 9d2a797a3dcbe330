package felt_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalJson(t *testing.T) {
	var with felt.Felt
	assert.NoError(t, with.UnmarshalJSON([]byte("0x4437ab")))

	var without felt.Felt
	assert.NoError(t, without.UnmarshalJSON([]byte("4437ab")))
	assert.Equal(t, true, without.Equal(&with))
}

func TestMarshalJson(t *testing.T) {
	f, err := new(felt.Felt).SetString("0xdead")
	require.NoError(t, err)

	marshalled, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"0xdead"`, string(marshalled))

	var decoded felt.Felt
	require.NoError(t, json.Unmarshal(marshalled, &decoded))
	assert.True(t, f.Equal(&decoded))
}

func TestFeltCbor(t *testing.T) {
	var val felt.Felt
	_, err := val.SetRandom()
	require.NoError(t, err)

	bytes, err := cbor.Marshal(val)
	require.NoError(t, err)

	var unmarshaledFelt felt.Felt
	require.NoError(t, cbor.Unmarshal(bytes, &unmarshaledFelt))
	assert.Equal(t, val, unmarshaledFelt)
}

func TestHexRoundTrip(t *testing.T) {
	for _, hex := range []string{"0x0", "0x1", "0xdead", "0x7fffffffffffffffffffffffffffffff"} {
		f, err := new(felt.Felt).SetString(hex)
		require.NoError(t, err)
		assert.Equal(t, hex, f.String())

		parsed, err := new(felt.Felt).SetString(f.String())
		require.NoError(t, err)
		assert.True(t, f.Equal(parsed), "hex %s did not round-trip", hex)
	}

	t.Run("leading zeros stripped", func(t *testing.T) {
		f, err := new(felt.Felt).SetString("0x00dead")
		require.NoError(t, err)
		assert.Equal(t, "0xdead", f.String())
	})
}

func TestSetBytesCanonical(t *testing.T) {
	t.Run("round trip below modulus", func(t *testing.T) {
		f, err := new(felt.Felt).SetString("0x44437ab")
		require.NoError(t, err)
		fBytes := f.Bytes()

		var decoded felt.Felt
		require.NoError(t, decoded.SetBytesCanonical(fBytes[:]))
		assert.True(t, f.Equal(&decoded))

		reencoded := decoded.Bytes()
		assert.Equal(t, fBytes, reencoded)
	})

	t.Run("modulus overflows", func(t *testing.T) {
		var decoded felt.Felt
		assert.ErrorIs(t, decoded.SetBytesCanonical(fp.Modulus().Bytes()), felt.ErrOverflow)
	})

	t.Run("too many bytes", func(t *testing.T) {
		var decoded felt.Felt
		assert.ErrorIs(t, decoded.SetBytesCanonical(make([]byte, felt.Bytes+1)), felt.ErrOverflow)
	})
}

func TestAddMatchesBigInt(t *testing.T) {
	a, err := new(felt.Felt).SetRandom()
	require.NoError(t, err)
	b, err := new(felt.Felt).SetRandom()
	require.NoError(t, err)

	expected := new(big.Int).Add(a.BigInt(new(big.Int)), b.BigInt(new(big.Int)))
	expected.Mod(expected, fp.Modulus())

	sum := new(felt.Felt).Add(a, b)
	assert.Equal(t, expected, sum.BigInt(new(big.Int)))
}

func TestInverse(t *testing.T) {
	t.Run("zero is not invertible", func(t *testing.T) {
		_, err := new(felt.Felt).Inverse(&felt.Zero)
		assert.ErrorIs(t, err, felt.ErrNotInvertible)
	})

	t.Run("a * a^-1 == 1", func(t *testing.T) {
		a, err := new(felt.Felt).SetRandom()
		require.NoError(t, err)
		if a.IsZero() {
			a.SetUint64(1)
		}

		aInv, err := new(felt.Felt).Inverse(a)
		require.NoError(t, err)
		assert.True(t, new(felt.Felt).Mul(a, aInv).IsOne())
	})
}

func TestDiv(t *testing.T) {
	six := new(felt.Felt).SetUint64(6)
	three := new(felt.Felt).SetUint64(3)

	quot, err := new(felt.Felt).Div(six, three)
	require.NoError(t, err)
	assert.True(t, quot.Equal(new(felt.Felt).SetUint64(2)))

	_, err = new(felt.Felt).Div(six, &felt.Zero)
	assert.ErrorIs(t, err, felt.ErrNotInvertible)
}
