package crypto

import (
	"github.com/cairn-systems/starkgo/core/felt"
	"golang.org/x/crypto/sha3"
)

// StarknetKeccak implements [Starknet keccak]
//
// [Starknet keccak]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#starknet_keccak
func StarknetKeccak(b []byte) (*felt.Felt, error) {
	h := sha3.NewLegacyKeccak256()
	if _, err := h.Write(b); err != nil {
		return nil, err
	}
	d := h.Sum(nil)
	// Remove the first 6 bits from the first byte
	d[0] &= 3
	return new(felt.Felt).SetBytes(d), nil
}

// Selector returns the entry-point selector for a contract function name.
func Selector(name string) *felt.Felt {
	// hash.Hash.Write never returns an error.
	selector, err := StarknetKeccak([]byte(name))
	if err != nil {
		panic(err)
	}
	return selector
}
