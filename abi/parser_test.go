package abi_test

import (
	"testing"

	"github.com/cairn-systems/starkgo/abi"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const erc20Abi = `[
	{
		"type": "struct",
		"name": "core::integer::u256",
		"members": [
			{"name": "low", "type": "core::felt252"},
			{"name": "high", "type": "core::felt252"}
		]
	},
	{
		"type": "interface",
		"name": "openzeppelin::token::erc20::interface::IERC20",
		"items": [
			{
				"type": "function",
				"name": "transfer",
				"inputs": [
					{"name": "recipient", "type": "core::felt252"},
					{"name": "amount", "type": "core::integer::u256"}
				],
				"outputs": [{"type": "core::felt252"}],
				"state_mutability": "external"
			},
			{
				"type": "function",
				"name": "batch_transfer",
				"inputs": [
					{"name": "recipients", "type": "core::array::Array::<core::felt252>"},
					{"name": "memo", "type": "core::option::Option::<core::felt252>"},
					{"name": "range", "type": "(core::felt252, core::felt252)"}
				],
				"outputs": [],
				"state_mutability": "external"
			}
		]
	},
	{
		"type": "event",
		"name": "Transfer"
	}
]`

func TestParse(t *testing.T) {
	parsed, err := abi.Parse([]byte(erc20Abi))
	require.NoError(t, err)

	t.Run("function inside interface found with selector", func(t *testing.T) {
		transfer, ok := parsed.Function("transfer")
		require.True(t, ok)
		assert.True(t, utils.HexToFelt(t,
			"0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e",
		).Equal(transfer.Selector))

		require.Len(t, transfer.Inputs, 2)
		assert.Equal(t, abi.FeltKind, transfer.Inputs[0].Type.Kind)
		assert.Equal(t, abi.StructKind, transfer.Inputs[1].Type.Kind)
		assert.Equal(t, "core::integer::u256", transfer.Inputs[1].Type.Name)
	})

	t.Run("generic and tuple inputs resolve", func(t *testing.T) {
		batch, ok := parsed.Function("batch_transfer")
		require.True(t, ok)
		require.Len(t, batch.Inputs, 3)
		assert.Equal(t, abi.ArrayKind, batch.Inputs[0].Type.Kind)
		assert.Equal(t, abi.OptionKind, batch.Inputs[1].Type.Kind)
		assert.Equal(t, abi.TupleKind, batch.Inputs[2].Type.Kind)
		assert.Len(t, batch.Inputs[2].Type.Members, 2)
	})

	t.Run("unknown function absent", func(t *testing.T) {
		_, ok := parsed.Function("approve")
		assert.False(t, ok)
	})
}

func TestParseEncodeDecodeEndToEnd(t *testing.T) {
	parsed, err := abi.Parse([]byte(erc20Abi))
	require.NoError(t, err)

	transfer, ok := parsed.Function("transfer")
	require.True(t, ok)

	args := []abi.Value{
		abi.FeltValue(utils.HexToFelt(t, "0xcafe")),
		abi.StructValue(abi.Uint64Value(1000), abi.Uint64Value(0)),
	}
	calldata, err := transfer.EncodeInputs(args)
	require.NoError(t, err)
	require.Len(t, calldata, 3)

	outputs, err := transfer.DecodeOutputs(calldata[:1])
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	_, err = transfer.DecodeOutputs(calldata)
	assert.ErrorIs(t, err, abi.ErrMalformedAbiData, "trailing data must be rejected")
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"not json": `{`,
		"duplicate struct": `[
			{"type": "struct", "name": "A", "members": []},
			{"type": "struct", "name": "A", "members": []}
		]`,
		"duplicate function": `[
			{"type": "function", "name": "f", "inputs": [], "outputs": []},
			{"type": "function", "name": "f", "inputs": [], "outputs": []}
		]`,
		"unknown type": `[
			{"type": "function", "name": "f", "inputs": [{"name": "a", "type": "missing::Type"}], "outputs": []}
		]`,
		"struct cycle": `[
			{"type": "struct", "name": "A", "members": [{"name": "b", "type": "B"}]},
			{"type": "struct", "name": "B", "members": [{"name": "a", "type": "A"}]},
			{"type": "function", "name": "f", "inputs": [{"name": "a", "type": "A"}], "outputs": []}
		]`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := abi.Parse([]byte(doc))
			assert.ErrorIs(t, err, abi.ErrInvalidAbi)
		})
	}
}
