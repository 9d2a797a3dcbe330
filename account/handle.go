package account

import (
	"context"
	"time"

	"github.com/cairn-systems/starkgo/clients/rpc"
	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/felt"
)

// Handle tracks a submitted transaction.
type Handle struct {
	TransactionHash *felt.Felt

	provider rpc.Provider
}

// NewHandle adopts an already-submitted transaction hash, for callers that
// persisted it and want to resume waiting.
func NewHandle(hash *felt.Felt, provider rpc.Provider) *Handle {
	return &Handle{TransactionHash: hash, provider: provider}
}

// Wait polls the node until the transaction reaches a terminal finality
// status. A node that does not know the hash yet just means the transaction
// is still propagating, so polling continues.
func (h *Handle) Wait(ctx context.Context, interval time.Duration) (*core.TransactionReceipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := h.provider.Receipt(ctx, h.TransactionHash)
		switch {
		case err == nil && receipt.FinalityStatus.IsTerminal():
			return receipt, nil
		case err != nil && !rpc.IsNotFound(err):
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
