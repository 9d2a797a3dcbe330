package crypto

import "github.com/cairn-systems/starkgo/core/felt"

// Digest accumulates felts into a single running hash. Update may be called
// any number of times before Finish.
type Digest interface {
	Update(...*felt.Felt) Digest
	Finish() *felt.Felt
}
