package rpc

import (
	"fmt"

	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/ethereum/go-ethereum/common"
)

// FeeEstimate is the node's cost projection for one transaction.
type FeeEstimate struct {
	L1GasConsumed     *felt.Felt `json:"l1_gas_consumed"`
	L1GasPrice        *felt.Felt `json:"l1_gas_price"`
	L2GasConsumed     *felt.Felt `json:"l2_gas_consumed"`
	L2GasPrice        *felt.Felt `json:"l2_gas_price"`
	L1DataGasConsumed *felt.Felt `json:"l1_data_gas_consumed"`
	L1DataGasPrice    *felt.Felt `json:"l1_data_gas_price"`
	OverallFee        *felt.Felt `json:"overall_fee"`
	Unit              string     `json:"unit"`
}

type wireResourceBounds struct {
	MaxAmount       string `json:"max_amount"`
	MaxPricePerUnit string `json:"max_price_per_unit"`
}

// broadcastInvoke is the wire form of an invoke transaction. Versioned
// fields carry omitempty so a v1 payload does not leak v3 keys and vice
// versa.
type broadcastInvoke struct {
	Type          string       `json:"type"`
	SenderAddress *felt.Felt   `json:"sender_address"`
	Calldata      []*felt.Felt `json:"calldata"`
	Version       *felt.Felt   `json:"version"`
	Signature     []*felt.Felt `json:"signature"`
	Nonce         *felt.Felt   `json:"nonce"`

	MaxFee *felt.Felt `json:"max_fee,omitempty"`

	ResourceBounds        map[core.Resource]wireResourceBounds `json:"resource_bounds,omitempty"`
	Tip                   string                               `json:"tip,omitempty"`
	PaymasterData         []*felt.Felt                         `json:"paymaster_data,omitempty"`
	AccountDeploymentData []*felt.Felt                         `json:"account_deployment_data,omitempty"`
	NonceDAMode           string                               `json:"nonce_data_availability_mode,omitempty"`
	FeeDAMode             string                               `json:"fee_data_availability_mode,omitempty"`
}

func adaptInvoke(tx *core.InvokeTransaction) *broadcastInvoke {
	out := &broadcastInvoke{
		Type:          "INVOKE",
		SenderAddress: tx.SenderAddress,
		Calldata:      emptyIfNil(tx.CallData),
		Version:       tx.Version,
		Signature:     emptyIfNil(tx.TransactionSignature),
		Nonce:         tx.Nonce,
		MaxFee:        tx.MaxFee,
	}

	if tx.Version.Equal(core.TxVersion3) {
		out.ResourceBounds = make(map[core.Resource]wireResourceBounds, len(tx.ResourceBounds))
		for resource, bound := range tx.ResourceBounds {
			price := &felt.Zero
			if bound.MaxPricePerUnit != nil {
				price = bound.MaxPricePerUnit
			}
			out.ResourceBounds[resource] = wireResourceBounds{
				MaxAmount:       fmt.Sprintf("%#x", bound.MaxAmount),
				MaxPricePerUnit: price.String(),
			}
		}
		out.Tip = fmt.Sprintf("%#x", tx.Tip)
		out.PaymasterData = emptyIfNil(tx.PaymasterData)
		out.AccountDeploymentData = emptyIfNil(tx.AccountDeploymentData)
		nonceDA, _ := tx.NonceDAMode.MarshalText()
		feeDA, _ := tx.FeeDAMode.MarshalText()
		out.NonceDAMode = string(nonceDA)
		out.FeeDAMode = string(feeDA)
	}
	return out
}

func emptyIfNil(felts []*felt.Felt) []*felt.Felt {
	if felts == nil {
		return []*felt.Felt{}
	}
	return felts
}

type wireEvent struct {
	From *felt.Felt   `json:"from_address"`
	Keys []*felt.Felt `json:"keys"`
	Data []*felt.Felt `json:"data"`
}

type wireMessage struct {
	From    *felt.Felt     `json:"from_address"`
	To      common.Address `json:"to_address"`
	Payload []*felt.Felt   `json:"payload"`
}

type wireActualFee struct {
	Amount *felt.Felt `json:"amount"`
	Unit   string     `json:"unit"`
}

type wireExecutionResources struct {
	L1Gas     uint64 `json:"l1_gas"`
	L2Gas     uint64 `json:"l2_gas"`
	L1DataGas uint64 `json:"l1_data_gas"`
	Steps     uint64 `json:"steps"`
}

type wireReceipt struct {
	TransactionHash    *felt.Felt              `json:"transaction_hash"`
	ActualFee          wireActualFee           `json:"actual_fee"`
	ExecutionStatus    core.TxnExecutionStatus `json:"execution_status"`
	FinalityStatus     core.TxnFinalityStatus  `json:"finality_status"`
	RevertReason       string                  `json:"revert_reason"`
	Events             []wireEvent             `json:"events"`
	MessagesSent       []wireMessage           `json:"messages_sent"`
	ExecutionResources wireExecutionResources  `json:"execution_resources"`
}

func (r *wireReceipt) adapt() *core.TransactionReceipt {
	receipt := &core.TransactionReceipt{
		TransactionHash: r.TransactionHash,
		ActualFee:       r.ActualFee.Amount,
		ExecutionStatus: r.ExecutionStatus,
		FinalityStatus:  r.FinalityStatus,
		RevertReason:    r.RevertReason,
		ExecutionResources: &core.ExecutionResources{
			L1Gas:     r.ExecutionResources.L1Gas,
			L2Gas:     r.ExecutionResources.L2Gas,
			L1DataGas: r.ExecutionResources.L1DataGas,
			Steps:     r.ExecutionResources.Steps,
		},
	}
	for _, event := range r.Events {
		receipt.Events = append(receipt.Events, &core.Event{
			From: event.From,
			Keys: event.Keys,
			Data: event.Data,
		})
	}
	for _, msg := range r.MessagesSent {
		receipt.L2ToL1Messages = append(receipt.L2ToL1Messages, &core.L2ToL1Message{
			From:    msg.From,
			To:      msg.To,
			Payload: msg.Payload,
		})
	}
	return receipt
}
