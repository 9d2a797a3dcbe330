package signer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/cairn-systems/starkgo/signer"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignerServer(t *testing.T, backing *signer.Local) (*httptest.Server, *int) {
	t.Helper()
	publicKeyCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign":
			var req struct {
				Hash *felt.Felt `json:"hash"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			sig, err := backing.Sign(r.Context(), req.Hash)
			require.NoError(t, err)
			require.NoError(t, json.NewEncoder(w).Encode(map[string]*felt.Felt{
				"r": &sig.R,
				"s": &sig.S,
			}))
		case "/public_key":
			publicKeyCalls++
			pub, err := backing.PublicKey()
			require.NoError(t, err)
			require.NoError(t, json.NewEncoder(w).Encode(map[string]*felt.Felt{
				"public_key": pub,
			}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &publicKeyCalls
}

func TestRemoteSign(t *testing.T) {
	backing, err := signer.NewLocal("0x1234")
	require.NoError(t, err)
	srv, publicKeyCalls := newSignerServer(t, backing)

	remote := signer.NewRemote(srv.URL, utils.NewNopZapLogger())
	assert.True(t, remote.Retryable())

	msgHash := utils.HexToFelt(t, "0xabcdef")
	sig, err := remote.Sign(context.Background(), msgHash)
	require.NoError(t, err)

	// Signing nonces are randomized, so check validity rather than r/s.
	pub, err := backing.PublicKey()
	require.NoError(t, err)
	valid, err := crypto.NewPublicKey(pub).Verify(sig, msgHash)
	require.NoError(t, err)
	assert.True(t, valid)

	t.Run("public key fetched once", func(t *testing.T) {
		localPub, err := backing.PublicKey()
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			pub, err := remote.PublicKey()
			require.NoError(t, err)
			assert.True(t, localPub.Equal(pub))
		}
		assert.Equal(t, 1, *publicKeyCalls)
	})
}

func TestRemoteSignUnavailable(t *testing.T) {
	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		remote := signer.NewRemote(srv.URL, utils.NewNopZapLogger())
		_, err := remote.Sign(context.Background(), utils.HexToFelt(t, "0x1"))
		assert.ErrorIs(t, err, signer.ErrSigningUnavailable)

		_, err = remote.PublicKey()
		assert.ErrorIs(t, err, signer.ErrSigningUnavailable)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		remote := signer.NewRemote(srv.URL, utils.NewNopZapLogger())
		_, err := remote.Sign(context.Background(), utils.HexToFelt(t, "0x1"))
		assert.ErrorIs(t, err, signer.ErrSigningUnavailable)
	})

	t.Run("malformed response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"r": "0x1"}`)) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		remote := signer.NewRemote(srv.URL, utils.NewNopZapLogger())
		_, err := remote.Sign(context.Background(), utils.HexToFelt(t, "0x1"))
		assert.ErrorIs(t, err, signer.ErrSigningUnavailable)
	})
}
