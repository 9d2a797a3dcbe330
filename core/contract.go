package core

import (
	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
)

// ContractAddress derives the deterministic address a contract deploys to.
//
// https://docs.starknet.io/documentation/architecture_and_concepts/Contracts/contract-address
func ContractAddress(callerAddress, classHash, salt *felt.Felt, constructorCallData []*felt.Felt) *felt.Felt {
	prefix := new(felt.Felt).SetBytes([]byte("STARKNET_CONTRACT_ADDRESS"))
	callDataHash := crypto.PedersenArray(constructorCallData...)

	return crypto.PedersenArray(
		prefix,
		callerAddress,
		salt,
		classHash,
		callDataHash,
	)
}
