package txnbuild_test

import (
	"testing"

	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/cairn-systems/starkgo/txnbuild"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChainContext(t *testing.T) *txnbuild.ChainContext {
	return &txnbuild.ChainContext{
		ChainID: utils.Sepolia.ChainID(),
		Nonce:   utils.HexToFelt(t, "0x7"),
		ResourceBounds: core.ResourceBoundsMap{
			core.ResourceL1Gas: {MaxAmount: 5000, MaxPricePerUnit: new(felt.Felt).SetUint64(12)},
			core.ResourceL2Gas: {},
		},
	}
}

func TestExecuteCalldata(t *testing.T) {
	token := utils.HexToFelt(t, "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")
	recipient := utils.HexToFelt(t, "0xcafe")

	calls := []txnbuild.Call{
		txnbuild.NewCall(token, "transfer", recipient, new(felt.Felt).SetUint64(100), &felt.Zero),
		txnbuild.NewCall(token, "approve", recipient, new(felt.Felt).SetUint64(1)),
	}

	calldata := txnbuild.ExecuteCalldata(calls)
	require.Len(t, calldata, 1+3+3+3+2)

	assert.True(t, new(felt.Felt).SetUint64(2).Equal(calldata[0]))

	assert.True(t, token.Equal(calldata[1]))
	assert.True(t, crypto.Selector("transfer").Equal(calldata[2]))
	assert.True(t, new(felt.Felt).SetUint64(3).Equal(calldata[3]))
	assert.True(t, recipient.Equal(calldata[4]))

	assert.True(t, token.Equal(calldata[7]))
	assert.True(t, crypto.Selector("approve").Equal(calldata[8]))
	assert.True(t, new(felt.Felt).SetUint64(2).Equal(calldata[9]))
}

func TestBuildInvokeDeterministic(t *testing.T) {
	sender := utils.HexToFelt(t, "0xabc")
	chainCtx := testChainContext(t)
	intent := &txnbuild.Intent{
		SenderAddress: sender,
		Calls: []txnbuild.Call{
			txnbuild.NewCall(utils.HexToFelt(t, "0x111"), "transfer", utils.HexToFelt(t, "0x222")),
		},
	}

	first, err := txnbuild.BuildInvoke(intent, chainCtx)
	require.NoError(t, err)
	second, err := txnbuild.BuildInvoke(intent, chainCtx)
	require.NoError(t, err)

	require.NotNil(t, first.TransactionHash)
	assert.True(t, first.TransactionHash.Equal(second.TransactionHash))
	assert.True(t, chainCtx.Nonce.Equal(first.Nonce))
	assert.True(t, core.TxVersion3.Equal(first.Version))
	assert.Nil(t, first.TransactionSignature, "builder output is unsigned")
}

func TestBuildInvokeMulticallSharesOneNonce(t *testing.T) {
	chainCtx := testChainContext(t)
	intent := &txnbuild.Intent{
		SenderAddress: utils.HexToFelt(t, "0xabc"),
		Calls: []txnbuild.Call{
			txnbuild.NewCall(utils.HexToFelt(t, "0x111"), "transfer", utils.HexToFelt(t, "0x1")),
			txnbuild.NewCall(utils.HexToFelt(t, "0x222"), "approve", utils.HexToFelt(t, "0x2")),
			txnbuild.NewCall(utils.HexToFelt(t, "0x333"), "mint"),
		},
	}

	tx, err := txnbuild.BuildInvoke(intent, chainCtx)
	require.NoError(t, err)

	// One transaction, one nonce, however many calls.
	assert.True(t, chainCtx.Nonce.Equal(tx.Nonce))
	assert.True(t, new(felt.Felt).SetUint64(3).Equal(tx.CallData[0]))
}

func TestBuildInvokeOverrides(t *testing.T) {
	chainCtx := testChainContext(t)
	override := utils.HexToFelt(t, "0x99")
	intent := &txnbuild.Intent{
		SenderAddress: utils.HexToFelt(t, "0xabc"),
		Calls: []txnbuild.Call{
			txnbuild.NewCall(utils.HexToFelt(t, "0x111"), "transfer"),
		},
		Nonce: override,
	}

	tx, err := txnbuild.BuildInvoke(intent, chainCtx)
	require.NoError(t, err)
	assert.True(t, override.Equal(tx.Nonce))
}

func TestBuildInvokeV1(t *testing.T) {
	chainCtx := testChainContext(t)
	chainCtx.MaxFee = utils.HexToFelt(t, "0x1000")
	intent := &txnbuild.Intent{
		SenderAddress: utils.HexToFelt(t, "0xabc"),
		Calls: []txnbuild.Call{
			txnbuild.NewCall(utils.HexToFelt(t, "0x111"), "transfer"),
		},
		Version: core.TxVersion1,
	}

	tx, err := txnbuild.BuildInvoke(intent, chainCtx)
	require.NoError(t, err)
	assert.True(t, chainCtx.MaxFee.Equal(tx.MaxFee))
	require.NotNil(t, tx.TransactionHash)
}

func TestBuildInvokeErrors(t *testing.T) {
	chainCtx := testChainContext(t)
	call := txnbuild.NewCall(utils.HexToFelt(t, "0x111"), "transfer")

	tests := map[string]struct {
		intent   *txnbuild.Intent
		chainCtx *txnbuild.ChainContext
		want     error
	}{
		"no sender": {
			intent:   &txnbuild.Intent{Calls: []txnbuild.Call{call}},
			chainCtx: chainCtx,
			want:     txnbuild.ErrIncompleteIntent,
		},
		"no calls": {
			intent:   &txnbuild.Intent{SenderAddress: utils.HexToFelt(t, "0xabc")},
			chainCtx: chainCtx,
			want:     txnbuild.ErrIncompleteIntent,
		},
		"no chain id": {
			intent: &txnbuild.Intent{
				SenderAddress: utils.HexToFelt(t, "0xabc"),
				Calls:         []txnbuild.Call{call},
			},
			chainCtx: &txnbuild.ChainContext{},
			want:     txnbuild.ErrIncompleteIntent,
		},
		"v1 without max fee": {
			intent: &txnbuild.Intent{
				SenderAddress: utils.HexToFelt(t, "0xabc"),
				Calls:         []txnbuild.Call{call},
				Version:       core.TxVersion1,
			},
			chainCtx: testChainContext(t),
			want:     txnbuild.ErrIncompleteIntent,
		},
		"unsupported version": {
			intent: &txnbuild.Intent{
				SenderAddress: utils.HexToFelt(t, "0xabc"),
				Calls:         []txnbuild.Call{call},
				Version:       new(felt.Felt).SetUint64(9),
			},
			chainCtx: chainCtx,
			want:     core.ErrUnsupportedVersion,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := txnbuild.BuildInvoke(test.intent, test.chainCtx)
			assert.ErrorIs(t, err, test.want)
		})
	}
}

func TestBuildDeployAccount(t *testing.T) {
	chainCtx := testChainContext(t)
	chainCtx.Nonce = nil
	classHash := utils.HexToFelt(t, "0x0439218681f9108b470d2379cf589ef47e60dc5888ee49ec70071671d74ca9c6")
	salt := utils.HexToFelt(t, "0x5bebda1b28ba6daa824126577b9fbc984033e8b18360f5e1ef694cb172c7aa5")

	tx, err := txnbuild.BuildDeployAccount(classHash, salt, nil, chainCtx)
	require.NoError(t, err)

	assert.True(t, core.ContractAddress(&felt.Zero, classHash, salt, nil).Equal(tx.ContractAddress))
	assert.True(t, felt.Zero.Equal(tx.Nonce), "deploy account starts at nonce zero")
	require.NotNil(t, tx.TransactionHash)
}
