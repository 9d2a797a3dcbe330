package core

import (
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/ethereum/go-ethereum/common"
)

type Event struct {
	Data []*felt.Felt
	From *felt.Felt
	Keys []*felt.Felt
}

type L1ToL2Message struct {
	From     common.Address
	Nonce    *felt.Felt
	Payload  []*felt.Felt
	Selector *felt.Felt
	To       *felt.Felt
}

type L2ToL1Message struct {
	From    *felt.Felt
	Payload []*felt.Felt
	To      common.Address
}

type ExecutionResources struct {
	L1Gas     uint64
	L2Gas     uint64
	L1DataGas uint64
	Steps     uint64
}

type TxnExecutionStatus uint8

const (
	TxnSuccess TxnExecutionStatus = iota + 1
	TxnFailure
)

func (es TxnExecutionStatus) MarshalText() ([]byte, error) {
	switch es {
	case TxnSuccess:
		return []byte("SUCCEEDED"), nil
	case TxnFailure:
		return []byte("REVERTED"), nil
	default:
		return nil, fmt.Errorf("unknown ExecutionStatus %v", uint8(es))
	}
}

func (es *TxnExecutionStatus) UnmarshalText(data []byte) error {
	switch string(data) {
	case "SUCCEEDED":
		*es = TxnSuccess
	case "REVERTED":
		*es = TxnFailure
	default:
		return fmt.Errorf("unknown ExecutionStatus: %q", string(data))
	}
	return nil
}

type TxnFinalityStatus uint8

const (
	TxnAcceptedOnL2 TxnFinalityStatus = iota + 1
	TxnAcceptedOnL1
)

func (fs TxnFinalityStatus) MarshalText() ([]byte, error) {
	switch fs {
	case TxnAcceptedOnL1:
		return []byte("ACCEPTED_ON_L1"), nil
	case TxnAcceptedOnL2:
		return []byte("ACCEPTED_ON_L2"), nil
	default:
		return nil, fmt.Errorf("unknown FinalityStatus %v", uint8(fs))
	}
}

func (fs *TxnFinalityStatus) UnmarshalText(data []byte) error {
	switch string(data) {
	case "ACCEPTED_ON_L1":
		*fs = TxnAcceptedOnL1
	case "ACCEPTED_ON_L2":
		*fs = TxnAcceptedOnL2
	default:
		return fmt.Errorf("unknown FinalityStatus: %q", string(data))
	}
	return nil
}

// IsTerminal reports whether the status will never change again, which is
// when receipt polling may stop.
func (fs TxnFinalityStatus) IsTerminal() bool {
	return fs == TxnAcceptedOnL2 || fs == TxnAcceptedOnL1
}

type TransactionReceipt struct {
	TransactionHash    *felt.Felt
	ActualFee          *felt.Felt
	Events             []*Event
	ExecutionResources *ExecutionResources
	L2ToL1Messages     []*L2ToL1Message
	ExecutionStatus    TxnExecutionStatus
	FinalityStatus     TxnFinalityStatus
	RevertReason       string
}

const (
	// Calculated at https://hur.st/bloomfilter/?n=1000&p=&m=8192&k=
	// provides 1 in 51 possibility of false positives for approximately 1000 elements
	eventsBloomLength    = 8192
	eventsBloomHashFuncs = 6
)

// EventsBloom builds a prefilter over emitting addresses and event keys so
// callers scanning many receipts can skip the ones that cannot match.
func EventsBloom(receipts []*TransactionReceipt) *bloom.BloomFilter {
	filter := bloom.New(eventsBloomLength, eventsBloomHashFuncs)

	for _, receipt := range receipts {
		for _, event := range receipt.Events {
			fromBytes := event.From.Bytes()
			filter.TestOrAdd(fromBytes[:])
			for _, key := range event.Keys {
				keyBytes := key.Bytes()
				filter.TestOrAdd(keyBytes[:])
			}
		}
	}
	return filter
}
