package crypto

import (
	junocrypto "github.com/NethermindEth/juno/core/crypto"
	junofelt "github.com/NethermindEth/juno/core/felt"

	"github.com/cairn-systems/starkgo/core/felt"
)

// The Hades permutation behind Poseidon comes from Juno's crypto package,
// values cross the boundary as raw fp elements so no re-reduction happens.

// Poseidon implements the two-element [Poseidon hash].
//
// [Poseidon hash]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#poseidon_hash
func Poseidon(x, y *felt.Felt) *felt.Felt {
	res := junocrypto.Poseidon(junofelt.NewFelt(x.Impl()), junofelt.NewFelt(y.Impl()))
	return felt.NewFelt(res.Impl())
}

// PoseidonArray implements [Poseidon array hashing].
//
// [Poseidon array hashing]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#poseidon_array_hash
func PoseidonArray(elems ...*felt.Felt) *felt.Felt {
	var digest PoseidonDigest
	return digest.Update(elems...).Finish()
}

var _ Digest = (*PoseidonDigest)(nil)

type PoseidonDigest struct {
	inner junocrypto.PoseidonDigest
}

func (d *PoseidonDigest) Update(elems ...*felt.Felt) Digest {
	for idx := range elems {
		d.inner.Update(junofelt.NewFelt(elems[idx].Impl()))
	}
	return d
}

func (d *PoseidonDigest) Finish() *felt.Felt {
	return felt.NewFelt(d.inner.Finish().Impl())
}
