package signer

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

// Local signs with a stark-curve private key held in memory. The scalar never
// leaves the struct; only the public key is exposed.
type Local struct {
	key       *ecdsa.PrivateKey
	publicKey *felt.Felt
}

var _ Signer = (*Local)(nil)

// NewLocal derives a signer from a hex-encoded private scalar. The scalar
// must be in [1, curve order).
func NewLocal(privateKeyHex string) (*Local, error) {
	scalar, ok := new(big.Int).SetString(strings.TrimPrefix(privateKeyHex, "0x"), felt.Base16)
	if !ok {
		return nil, fmt.Errorf("%w: not a hex scalar", ErrInvalidKey)
	}
	if scalar.Sign() <= 0 || scalar.Cmp(fr.Modulus()) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidKey)
	}

	pub := new(starkcurve.G1Affine).ScalarMultiplicationBase(scalar)

	// gnark's private key layout is publicKey || scalar.
	pubBytes := pub.Bytes()
	buf := make([]byte, 0, len(pubBytes)+fr.Bytes)
	buf = append(buf, pubBytes[:]...)
	scalarBytes := make([]byte, fr.Bytes)
	scalar.FillBytes(scalarBytes)
	buf = append(buf, scalarBytes...)

	key := new(ecdsa.PrivateKey)
	if _, err := key.SetBytes(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Local{
		key:       key,
		publicKey: felt.NewFelt(&pub.X),
	}, nil
}

func (l *Local) Sign(ctx context.Context, msgHash *felt.Felt) (*crypto.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return crypto.Sign(msgHash, l.key)
}

func (l *Local) PublicKey() (*felt.Felt, error) {
	return l.publicKey, nil
}

func (l *Local) Retryable() bool {
	return false
}
