package core

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
)

// ErrUnsupportedVersion is returned when a transaction carries a version the
// hashing layer does not implement. It is a configuration error and is never
// retried.
var ErrUnsupportedVersion = errors.New("unsupported transaction version")

type Transaction interface {
	Hash() *felt.Felt
	Signature() []*felt.Felt
}

var (
	_ Transaction = (*InvokeTransaction)(nil)
	_ Transaction = (*DeclareTransaction)(nil)
	_ Transaction = (*DeployAccountTransaction)(nil)
)

// Transaction version felts. Versions not listed are either deprecated on
// the network or not yet specified.
var (
	TxVersion1 = new(felt.Felt).SetUint64(1)
	TxVersion2 = new(felt.Felt).SetUint64(2)
	TxVersion3 = new(felt.Felt).SetUint64(3)
)

type Resource uint32

const (
	ResourceL1Gas Resource = iota + 1
	ResourceL2Gas
	ResourceL1DataGas
)

func (r Resource) MarshalText() ([]byte, error) {
	switch r {
	case ResourceL1Gas:
		return []byte("l1_gas"), nil
	case ResourceL2Gas:
		return []byte("l2_gas"), nil
	case ResourceL1DataGas:
		return []byte("l1_data_gas"), nil
	default:
		return nil, fmt.Errorf("unknown Resource %v", uint32(r))
	}
}

func (r *Resource) UnmarshalText(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "l1_gas":
		*r = ResourceL1Gas
	case "l2_gas":
		*r = ResourceL2Gas
	case "l1_data_gas":
		*r = ResourceL1DataGas
	default:
		return fmt.Errorf("unknown Resource: %q", string(data))
	}
	return nil
}

// hashName returns the resource label that enters the v3 hash. It differs
// from the JSON label for the data gas resource.
func (r Resource) hashName() string {
	switch r {
	case ResourceL1Gas:
		return "L1_GAS"
	case ResourceL2Gas:
		return "L2_GAS"
	case ResourceL1DataGas:
		return "L1_DATA"
	default:
		return ""
	}
}

// ResourceBounds caps what the sender is willing to burn for one resource.
// MaxPricePerUnit must fit in 128 bits.
type ResourceBounds struct {
	MaxAmount       uint64
	MaxPricePerUnit *felt.Felt
}

type ResourceBoundsMap map[Resource]ResourceBounds

type DataAvailabilityMode uint32

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

func (m DataAvailabilityMode) MarshalText() ([]byte, error) {
	switch m {
	case DAModeL1:
		return []byte("L1"), nil
	case DAModeL2:
		return []byte("L2"), nil
	default:
		return nil, fmt.Errorf("unknown DataAvailabilityMode %v", uint32(m))
	}
}

func (m *DataAvailabilityMode) UnmarshalText(data []byte) error {
	switch string(data) {
	case "L1":
		*m = DAModeL1
	case "L2":
		*m = DAModeL2
	default:
		return fmt.Errorf("unknown DataAvailabilityMode: %q", string(data))
	}
	return nil
}

type InvokeTransaction struct {
	TransactionHash *felt.Felt
	// The arguments that are passed to the validate and execute functions.
	CallData []*felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	TransactionSignature []*felt.Felt
	// When the fields that comprise a transaction change,
	// either with the addition of a new field or the removal of an existing field,
	// then the transaction version increases.
	Version *felt.Felt
	// The transaction nonce.
	Nonce *felt.Felt
	// The address of the sender of this transaction.
	SenderAddress *felt.Felt

	// Version 1 fields
	// The maximum fee that the sender is willing to pay for the transaction.
	MaxFee *felt.Felt

	// Version 3 fields
	ResourceBounds        ResourceBoundsMap
	Tip                   uint64
	PaymasterData         []*felt.Felt
	AccountDeploymentData []*felt.Felt
	NonceDAMode           DataAvailabilityMode
	FeeDAMode             DataAvailabilityMode
}

func (i *InvokeTransaction) Hash() *felt.Felt {
	return i.TransactionHash
}

func (i *InvokeTransaction) Signature() []*felt.Felt {
	return i.TransactionSignature
}

type DeclareTransaction struct {
	TransactionHash *felt.Felt
	// The class hash being declared.
	ClassHash *felt.Felt
	// The hash of the compiled class produced by the sierra compiler.
	CompiledClassHash *felt.Felt
	// The address of the account initiating the transaction.
	SenderAddress *felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	TransactionSignature []*felt.Felt
	// The transaction nonce.
	Nonce   *felt.Felt
	Version *felt.Felt

	// Version 2 fields
	MaxFee *felt.Felt

	// Version 3 fields
	ResourceBounds        ResourceBoundsMap
	Tip                   uint64
	PaymasterData         []*felt.Felt
	AccountDeploymentData []*felt.Felt
	NonceDAMode           DataAvailabilityMode
	FeeDAMode             DataAvailabilityMode
}

func (d *DeclareTransaction) Hash() *felt.Felt {
	return d.TransactionHash
}

func (d *DeclareTransaction) Signature() []*felt.Felt {
	return d.TransactionSignature
}

type DeployAccountTransaction struct {
	TransactionHash *felt.Felt
	// The address of the deployed account, derived from class hash, salt and
	// constructor arguments.
	ContractAddress *felt.Felt
	// The hash of the class which defines the account's functionality.
	ClassHash *felt.Felt
	// A random number used to distinguish between different instances of the contract.
	ContractAddressSalt *felt.Felt
	// The arguments passed to the constructor during deployment.
	ConstructorCallData []*felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	TransactionSignature []*felt.Felt
	// The transaction nonce.
	Nonce   *felt.Felt
	Version *felt.Felt

	// Version 1 fields
	MaxFee *felt.Felt

	// Version 3 fields
	ResourceBounds ResourceBoundsMap
	Tip            uint64
	PaymasterData  []*felt.Felt
	NonceDAMode    DataAvailabilityMode
	FeeDAMode      DataAvailabilityMode
}

func (d *DeployAccountTransaction) Hash() *felt.Felt {
	return d.TransactionHash
}

func (d *DeployAccountTransaction) Signature() []*felt.Felt {
	return d.TransactionSignature
}

// Domain tags separating the hash spaces of the transaction kinds.
var (
	invokeFelt        = new(felt.Felt).SetBytes([]byte("invoke"))
	declareFelt       = new(felt.Felt).SetBytes([]byte("declare"))
	deployAccountFelt = new(felt.Felt).SetBytes([]byte("deploy_account"))
)

func errInvalidTransactionVersion(t Transaction, version *felt.Felt) error {
	return fmt.Errorf("%w: %T version %v", ErrUnsupportedVersion, t, version.Text(felt.Base10))
}

// TransactionHash computes the canonical network hash of the transaction.
// The field ordering and domain tags below are fixed by the network
// specification and must be reproduced bit-exact.
func TransactionHash(transaction Transaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch t := transaction.(type) {
	case *InvokeTransaction:
		return invokeTransactionHash(t, chainID)
	case *DeclareTransaction:
		return declareTransactionHash(t, chainID)
	case *DeployAccountTransaction:
		return deployAccountTransactionHash(t, chainID)
	default:
		return nil, errors.New("unknown transaction")
	}
}

func invokeTransactionHash(i *InvokeTransaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch {
	case i.Version.Equal(TxVersion1):
		return crypto.PedersenArray(
			invokeFelt,
			i.Version,
			i.SenderAddress,
			&felt.Zero,
			crypto.PedersenArray(i.CallData...),
			i.MaxFee,
			chainID,
			i.Nonce,
		), nil
	case i.Version.Equal(TxVersion3):
		return crypto.PoseidonArray(
			invokeFelt,
			i.Version,
			i.SenderAddress,
			tipAndResourcesHash(i.Tip, i.ResourceBounds),
			crypto.PoseidonArray(i.PaymasterData...),
			chainID,
			i.Nonce,
			daModesFelt(i.NonceDAMode, i.FeeDAMode),
			crypto.PoseidonArray(i.AccountDeploymentData...),
			crypto.PoseidonArray(i.CallData...),
		), nil
	default:
		return nil, errInvalidTransactionVersion(i, i.Version)
	}
}

func declareTransactionHash(d *DeclareTransaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch {
	case d.Version.Equal(TxVersion2):
		return crypto.PedersenArray(
			declareFelt,
			d.Version,
			d.SenderAddress,
			&felt.Zero,
			crypto.PedersenArray(d.ClassHash),
			d.MaxFee,
			chainID,
			d.Nonce,
			d.CompiledClassHash,
		), nil
	case d.Version.Equal(TxVersion3):
		return crypto.PoseidonArray(
			declareFelt,
			d.Version,
			d.SenderAddress,
			tipAndResourcesHash(d.Tip, d.ResourceBounds),
			crypto.PoseidonArray(d.PaymasterData...),
			chainID,
			d.Nonce,
			daModesFelt(d.NonceDAMode, d.FeeDAMode),
			crypto.PoseidonArray(d.AccountDeploymentData...),
			d.ClassHash,
			d.CompiledClassHash,
		), nil
	default:
		return nil, errInvalidTransactionVersion(d, d.Version)
	}
}

func deployAccountTransactionHash(d *DeployAccountTransaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch {
	case d.Version.Equal(TxVersion1):
		callData := []*felt.Felt{d.ClassHash, d.ContractAddressSalt}
		callData = append(callData, d.ConstructorCallData...)
		return crypto.PedersenArray(
			deployAccountFelt,
			d.Version,
			d.ContractAddress,
			&felt.Zero,
			crypto.PedersenArray(callData...),
			d.MaxFee,
			chainID,
			d.Nonce,
		), nil
	case d.Version.Equal(TxVersion3):
		return crypto.PoseidonArray(
			deployAccountFelt,
			d.Version,
			d.ContractAddress,
			tipAndResourcesHash(d.Tip, d.ResourceBounds),
			crypto.PoseidonArray(d.PaymasterData...),
			chainID,
			d.Nonce,
			daModesFelt(d.NonceDAMode, d.FeeDAMode),
			crypto.PoseidonArray(d.ConstructorCallData...),
			d.ClassHash,
			d.ContractAddressSalt,
		), nil
	default:
		return nil, errInvalidTransactionVersion(d, d.Version)
	}
}

// tipAndResourcesHash commits to the fee bounds. Each bound packs into one
// felt as name<<192 | maxAmount<<128 | maxPricePerUnit; the data gas bound
// only participates when the sender set it.
func tipAndResourcesHash(tip uint64, bounds ResourceBoundsMap) *felt.Felt {
	elems := []*felt.Felt{
		new(felt.Felt).SetUint64(tip),
		packedResourceBound(ResourceL1Gas, bounds[ResourceL1Gas]),
		packedResourceBound(ResourceL2Gas, bounds[ResourceL2Gas]),
	}
	if dataGas, ok := bounds[ResourceL1DataGas]; ok {
		elems = append(elems, packedResourceBound(ResourceL1DataGas, dataGas))
	}
	return crypto.PoseidonArray(elems...)
}

func packedResourceBound(resource Resource, bound ResourceBounds) *felt.Felt {
	packed := new(big.Int).SetBytes([]byte(resource.hashName()))
	packed.Lsh(packed, 64)
	packed.Or(packed, new(big.Int).SetUint64(bound.MaxAmount))
	packed.Lsh(packed, 128)
	if bound.MaxPricePerUnit != nil {
		packed.Or(packed, bound.MaxPricePerUnit.BigInt(new(big.Int)))
	}
	return new(felt.Felt).SetBigInt(packed)
}

func daModesFelt(nonceDAMode, feeDAMode DataAvailabilityMode) *felt.Felt {
	return new(felt.Felt).SetUint64(uint64(nonceDAMode)<<32 | uint64(feeDAMode))
}
