// Package txnbuild turns a caller's intent into an unsigned, hash-carrying
// transaction. Building is pure: the same intent and chain context always
// produce the same transaction, so a build can be repeated after a nonce
// refresh without re-deciding anything.
package txnbuild

import (
	"errors"
	"fmt"

	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
)

var ErrIncompleteIntent = errors.New("incomplete transaction intent")

// Call is a single contract invocation inside a multicall.
type Call struct {
	ContractAddress *felt.Felt
	Selector        *felt.Felt
	Calldata        []*felt.Felt
}

// NewCall builds a Call addressed by entry-point name.
func NewCall(contractAddress *felt.Felt, function string, calldata ...*felt.Felt) Call {
	return Call{
		ContractAddress: contractAddress,
		Selector:        crypto.Selector(function),
		Calldata:        calldata,
	}
}

// Intent describes what the sender wants executed. Zero-value fee fields mean
// "take them from the chain context"; non-nil ones override it.
type Intent struct {
	SenderAddress *felt.Felt
	Calls         []Call
	// Version of the transaction to build. Nil selects v3.
	Version *felt.Felt

	// Overrides. When nil the ChainContext values are used verbatim.
	Nonce          *felt.Felt
	MaxFee         *felt.Felt
	ResourceBounds core.ResourceBoundsMap
}

// ChainContext is a snapshot of the chain-dependent inputs to a build: which
// network, which nonce, and what fees were resolved for it. Callers populate
// it once per attempt and treat it as immutable.
type ChainContext struct {
	ChainID *felt.Felt
	Nonce   *felt.Felt

	// v1 fee.
	MaxFee *felt.Felt

	// v3 fees.
	ResourceBounds core.ResourceBoundsMap
	Tip            uint64
	PaymasterData  []*felt.Felt
	NonceDAMode    core.DataAvailabilityMode
	FeeDAMode      core.DataAvailabilityMode
}

// ExecuteCalldata flattens calls into the account __execute__ layout: the
// call count, then per call the target address, selector, argument count and
// arguments.
func ExecuteCalldata(calls []Call) []*felt.Felt {
	size := 1
	for _, call := range calls {
		size += 3 + len(call.Calldata)
	}

	out := make([]*felt.Felt, 0, size)
	out = append(out, new(felt.Felt).SetUint64(uint64(len(calls))))
	for _, call := range calls {
		out = append(out, call.ContractAddress, call.Selector,
			new(felt.Felt).SetUint64(uint64(len(call.Calldata))))
		out = append(out, call.Calldata...)
	}
	return out
}

// BuildInvoke assembles an unsigned invoke transaction carrying its canonical
// hash. All calls share the one nonce and will share the one signature.
func BuildInvoke(intent *Intent, chainCtx *ChainContext) (*core.InvokeTransaction, error) {
	if err := checkIntent(intent, chainCtx); err != nil {
		return nil, err
	}

	version := intent.Version
	if version == nil {
		version = core.TxVersion3
	}

	nonce := chainCtx.Nonce
	if intent.Nonce != nil {
		nonce = intent.Nonce
	}
	if nonce == nil {
		return nil, fmt.Errorf("%w: no nonce", ErrIncompleteIntent)
	}

	tx := &core.InvokeTransaction{
		SenderAddress: intent.SenderAddress,
		CallData:      ExecuteCalldata(intent.Calls),
		Version:       version,
		Nonce:         nonce,
	}

	switch {
	case version.Equal(core.TxVersion1):
		tx.MaxFee = chainCtx.MaxFee
		if intent.MaxFee != nil {
			tx.MaxFee = intent.MaxFee
		}
		if tx.MaxFee == nil {
			return nil, fmt.Errorf("%w: v1 requires a max fee", ErrIncompleteIntent)
		}
	case version.Equal(core.TxVersion3):
		tx.ResourceBounds = chainCtx.ResourceBounds
		if intent.ResourceBounds != nil {
			tx.ResourceBounds = intent.ResourceBounds
		}
		if tx.ResourceBounds == nil {
			return nil, fmt.Errorf("%w: v3 requires resource bounds", ErrIncompleteIntent)
		}
		tx.Tip = chainCtx.Tip
		tx.PaymasterData = chainCtx.PaymasterData
		tx.NonceDAMode = chainCtx.NonceDAMode
		tx.FeeDAMode = chainCtx.FeeDAMode
	default:
		return nil, fmt.Errorf("%w: invoke version %s", core.ErrUnsupportedVersion, version)
	}

	hash, err := core.TransactionHash(tx, chainCtx.ChainID)
	if err != nil {
		return nil, err
	}
	tx.TransactionHash = hash
	return tx, nil
}

// BuildDeployAccount assembles an unsigned deploy-account transaction. The
// deployed address is derived from the class hash, salt and constructor
// arguments, never chosen by the caller.
func BuildDeployAccount(classHash, salt *felt.Felt, constructorCalldata []*felt.Felt,
	chainCtx *ChainContext,
) (*core.DeployAccountTransaction, error) {
	if classHash == nil || salt == nil {
		return nil, fmt.Errorf("%w: class hash and salt required", ErrIncompleteIntent)
	}
	if chainCtx == nil || chainCtx.ChainID == nil {
		return nil, fmt.Errorf("%w: no chain id", ErrIncompleteIntent)
	}
	if chainCtx.ResourceBounds == nil {
		return nil, fmt.Errorf("%w: v3 requires resource bounds", ErrIncompleteIntent)
	}

	nonce := chainCtx.Nonce
	if nonce == nil {
		nonce = &felt.Zero
	}

	tx := &core.DeployAccountTransaction{
		ContractAddress:     core.ContractAddress(&felt.Zero, classHash, salt, constructorCalldata),
		ClassHash:           classHash,
		ContractAddressSalt: salt,
		ConstructorCallData: constructorCalldata,
		Version:             core.TxVersion3,
		Nonce:               nonce,
		ResourceBounds:      chainCtx.ResourceBounds,
		Tip:                 chainCtx.Tip,
		PaymasterData:       chainCtx.PaymasterData,
		NonceDAMode:         chainCtx.NonceDAMode,
		FeeDAMode:           chainCtx.FeeDAMode,
	}

	hash, err := core.TransactionHash(tx, chainCtx.ChainID)
	if err != nil {
		return nil, err
	}
	tx.TransactionHash = hash
	return tx, nil
}

func checkIntent(intent *Intent, chainCtx *ChainContext) error {
	if intent == nil || intent.SenderAddress == nil {
		return fmt.Errorf("%w: no sender address", ErrIncompleteIntent)
	}
	if len(intent.Calls) == 0 {
		return fmt.Errorf("%w: no calls", ErrIncompleteIntent)
	}
	for i, call := range intent.Calls {
		if call.ContractAddress == nil || call.Selector == nil {
			return fmt.Errorf("%w: call %d missing target", ErrIncompleteIntent, i)
		}
	}
	if chainCtx == nil || chainCtx.ChainID == nil {
		return fmt.Errorf("%w: no chain id", ErrIncompleteIntent)
	}
	return nil
}
