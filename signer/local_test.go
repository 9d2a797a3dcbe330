package signer_test

import (
	"context"
	"testing"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/signer"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalPublicKey(t *testing.T) {
	// Private scalar 1 maps to the curve generator.
	s, err := signer.NewLocal("0x1")
	require.NoError(t, err)

	pub, err := s.PublicKey()
	require.NoError(t, err)
	assert.True(t, utils.HexToFelt(t,
		"0x1ef15c18599971b7beced415a40f0c7deacfd9b0d1819e03d723d8bc943cfca",
	).Equal(pub))
}

func TestNewLocalInvalidKey(t *testing.T) {
	tests := map[string]string{
		"not hex":     "xyz",
		"empty":       "",
		"zero scalar": "0x0",
		// The curve order itself is out of range.
		"order": "0x800000000000010ffffffffffffffffb781126dcae7b2321e66a241adc64d2f",
	}

	for name, key := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := signer.NewLocal(key)
			assert.ErrorIs(t, err, signer.ErrInvalidKey)
		})
	}
}

func TestLocalSignVerify(t *testing.T) {
	s, err := signer.NewLocal("0x2dccce1da22003777062ee0870e9881b460a8b7eca276870f57c601f182136c")
	require.NoError(t, err)
	assert.False(t, s.Retryable())

	msgHash := utils.HexToFelt(t, "0x2897e3cec3e24e4d341df26b8cf1ab84ea1c01a051021836b36c6639145b497")
	sig, err := s.Sign(context.Background(), msgHash)
	require.NoError(t, err)

	pub, err := s.PublicKey()
	require.NoError(t, err)

	ok, err := crypto.NewPublicKey(pub).Verify(sig, msgHash)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("different hash does not verify", func(t *testing.T) {
		ok, err := crypto.NewPublicKey(pub).Verify(sig, utils.HexToFelt(t, "0xdead"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLocalSignCancelledContext(t *testing.T) {
	s, err := signer.NewLocal("0x1234")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Sign(ctx, utils.HexToFelt(t, "0x1"))
	assert.ErrorIs(t, err, context.Canceled)
}
