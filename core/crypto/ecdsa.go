package crypto

import (
	"errors"

	"github.com/cairn-systems/starkgo/core/felt"
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Signature is a stark-curve ECDSA signature over a single message hash.
type Signature struct {
	R felt.Felt
	S felt.Felt
}

// Felts returns the signature in its wire form, [r, s].
func (s *Signature) Felts() []*felt.Felt {
	return []*felt.Felt{&s.R, &s.S}
}

// bytes returns the r || s encoding gnark's verifier expects.
func (s *Signature) bytes() []byte {
	rBytes := s.R.Bytes()
	sBytes := s.S.Bytes()
	return append(rBytes[:], sBytes[:]...)
}

// PublicKey is the x-coordinate of a stark-curve point, which is how accounts
// publish their verification key on-chain.
type PublicKey felt.Felt

func NewPublicKey(key *felt.Felt) *PublicKey {
	return (*PublicKey)(key)
}

func (k *PublicKey) Felt() *felt.Felt {
	return (*felt.Felt)(k)
}

var ErrInvalidPublicKey = errors.New("not a valid public key")

// stark curve: y^2 = x^3 + x + b
var curveB, _ = new(fp.Element).SetString("0x6f21413efbe40de150e596d72f7a8c5609ad26c15c915c1f4cdfcb99cee9e89")

// points returns the two curve points sharing the key's x-coordinate. The
// on-chain key does not pin the parity of y, a signature under either point
// counts as valid.
func (k *PublicKey) points() ([2]starkcurve.G1Affine, error) {
	var points [2]starkcurve.G1Affine

	x := (*felt.Felt)(k).Impl()
	var ySquared fp.Element
	ySquared.Square(x)
	ySquared.Mul(&ySquared, x)
	ySquared.Add(&ySquared, x)
	ySquared.Add(&ySquared, curveB)

	var y fp.Element
	if y.Sqrt(&ySquared) == nil {
		return points, ErrInvalidPublicKey
	}

	points[0].X = *x
	points[0].Y = y
	points[1].X = *x
	points[1].Y.Neg(&y)
	return points, nil
}

// Verify reports whether sig is a valid signature of msgHash under the key.
// An x-coordinate that is not on the curve fails with ErrInvalidPublicKey.
func (k *PublicKey) Verify(sig *Signature, msgHash *felt.Felt) (bool, error) {
	candidates, err := k.points()
	if err != nil {
		return false, err
	}

	sigBytes := sig.bytes()
	hashBytes := msgHash.Bytes()
	for i := range candidates {
		pub := ecdsa.PublicKey{A: candidates[i]}
		if ok, err := pub.Verify(sigBytes, hashBytes[:], nil); err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

// Sign produces a signature of msgHash with the given stark-curve key.
func Sign(msgHash *felt.Felt, key *ecdsa.PrivateKey) (*Signature, error) {
	hashBytes := msgHash.Bytes()
	sigBytes, err := key.Sign(hashBytes[:], nil)
	if err != nil {
		return nil, err
	}
	if len(sigBytes) != 2*felt.Bytes {
		return nil, errors.New("unexpected signature length")
	}

	sig := new(Signature)
	sig.R.SetBytes(sigBytes[:felt.Bytes])
	sig.S.SetBytes(sigBytes[felt.Bytes:])
	return sig, nil
}
