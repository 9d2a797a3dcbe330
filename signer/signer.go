// Package signer produces stark-curve signatures over transaction hashes.
// Implementations either hold key material locally or delegate to a remote
// service that does.
package signer

import (
	"context"
	"errors"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
)

var (
	// ErrInvalidKey is returned by constructors for malformed or
	// out-of-range key material.
	ErrInvalidKey = errors.New("invalid private key")
	// ErrSigningUnavailable is returned when a delegated signer cannot be
	// reached or refuses the request.
	ErrSigningUnavailable = errors.New("signing unavailable")
)

type Signer interface {
	// Sign signs the given message hash. The returned signature verifies
	// under the signer's public key.
	Sign(ctx context.Context, msgHash *felt.Felt) (*crypto.Signature, error)
	// PublicKey returns the x-coordinate of the signer's public key, the
	// form accounts store on-chain.
	PublicKey() (*felt.Felt, error)
	// Retryable reports whether a failed Sign may be attempted again.
	// Local signing is deterministic so retrying cannot help; a remote
	// signer may recover.
	Retryable() bool
}
