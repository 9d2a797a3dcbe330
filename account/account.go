// Package account orchestrates the submission pipeline: resolve nonce and
// fees, build one multicall transaction, sign its hash, submit it, and
// optionally retry on a nonce conflict. An Account is immutable after
// construction and safe for concurrent Execute calls; it does not serialize
// them, so callers needing strict nonce order must await each call.
package account

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/cairn-systems/starkgo/clients/rpc"
	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/cairn-systems/starkgo/signer"
	"github.com/cairn-systems/starkgo/txnbuild"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/jinzhu/copier"
	"github.com/sourcegraph/conc/pool"
)

// DefaultFeeMultiplier is the safety margin applied over the node's fee
// estimate, leaving room for price drift between estimation and inclusion.
const DefaultFeeMultiplier = 1.5

// RetryPolicy bounds resubmission after a nonce conflict. MaxAttempts counts
// submissions, so MaxAttempts=1 disables retrying.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Backoff:     100 * time.Millisecond,
}

type Options struct {
	FeeMultiplier float64
	Retry         RetryPolicy
	Log           utils.SimpleLogger
}

type Account struct {
	address       *felt.Felt
	chainID       *felt.Felt
	signer        signer.Signer
	provider      rpc.Provider
	feeMultiplier float64
	retry         RetryPolicy
	log           utils.SimpleLogger
}

func New(address, chainID *felt.Felt, accountSigner signer.Signer, provider rpc.Provider, opts *Options) *Account {
	account := &Account{
		address:       address,
		chainID:       chainID,
		signer:        accountSigner,
		provider:      provider,
		feeMultiplier: DefaultFeeMultiplier,
		retry:         DefaultRetryPolicy,
		log:           utils.NewNopZapLogger(),
	}
	if opts != nil {
		if opts.FeeMultiplier > 0 {
			account.feeMultiplier = opts.FeeMultiplier
		}
		if opts.Retry.MaxAttempts > 0 {
			account.retry = opts.Retry
		}
		if opts.Log != nil {
			account.log = opts.Log
		}
	}
	return account
}

func (a *Account) Address() *felt.Felt {
	return a.address
}

// ExecuteOptions override the resolved inputs of a single Execute call.
// Unset fields are resolved from the node.
type ExecuteOptions struct {
	// Nonce pins the transaction nonce instead of querying the node.
	Nonce *felt.Felt
	// Version selects the transaction version, v3 when nil.
	Version *felt.Felt
	// MaxFee pins the v1 fee cap.
	MaxFee *felt.Felt
	// ResourceBounds pins the v3 fee bounds.
	ResourceBounds core.ResourceBoundsMap
	Tip            uint64
}

// Execute submits all calls as one transaction: one nonce, one signature,
// one submission. Cancelling ctx after submission has returned does not
// retract the transaction.
func (a *Account) Execute(ctx context.Context, calls []txnbuild.Call, opts *ExecuteOptions) (*Handle, error) {
	if opts == nil {
		opts = &ExecuteOptions{}
	}

	version := opts.Version
	if version == nil {
		version = core.TxVersion3
	}

	intent := &txnbuild.Intent{
		SenderAddress: a.address,
		Calls:         calls,
		Version:       version,
	}

	chainCtx, err := a.resolveChainContext(ctx, intent, opts)
	if err != nil {
		return nil, err
	}

	return a.signAndSubmit(ctx, intent, chainCtx)
}

// resolveChainContext fills in the nonce and fee the caller left open. Both
// node round trips are independent, so they run concurrently when both are
// needed.
func (a *Account) resolveChainContext(ctx context.Context, intent *txnbuild.Intent,
	opts *ExecuteOptions,
) (*txnbuild.ChainContext, error) {
	chainCtx := &txnbuild.ChainContext{
		ChainID:        a.chainID,
		Nonce:          opts.Nonce,
		MaxFee:         opts.MaxFee,
		ResourceBounds: opts.ResourceBounds,
		Tip:            opts.Tip,
	}

	isV1 := intent.Version.Equal(core.TxVersion1)
	needNonce := chainCtx.Nonce == nil
	needFee := (isV1 && chainCtx.MaxFee == nil) || (!isV1 && chainCtx.ResourceBounds == nil)

	fetchers := pool.New().WithErrors().WithContext(ctx)
	if needNonce {
		fetchers.Go(func(ctx context.Context) error {
			nonce, err := a.provider.Nonce(ctx, a.address)
			if err != nil {
				return fmt.Errorf("resolving nonce: %w", err)
			}
			chainCtx.Nonce = nonce
			return nil
		})
	}
	if needFee {
		fetchers.Go(func(ctx context.Context) error {
			estimate, err := a.estimate(ctx, intent, opts)
			if err != nil {
				return fmt.Errorf("estimating fee: %w", err)
			}
			if isV1 {
				chainCtx.MaxFee = a.padFelt(estimate.OverallFee)
			} else {
				chainCtx.ResourceBounds = a.boundsFromEstimate(estimate)
			}
			return nil
		})
	}
	if err := fetchers.Wait(); err != nil {
		return nil, err
	}
	return chainCtx, nil
}

// estimate asks the node to price a draft of the transaction. The draft is
// unsigned and estimation skips validation, so a placeholder nonce and zero
// fee bounds are fine.
func (a *Account) estimate(ctx context.Context, intent *txnbuild.Intent,
	opts *ExecuteOptions,
) (*rpc.FeeEstimate, error) {
	draftCtx := &txnbuild.ChainContext{
		ChainID: a.chainID,
		Nonce:   &felt.Zero,
		MaxFee:  &felt.Zero,
		ResourceBounds: core.ResourceBoundsMap{
			core.ResourceL1Gas: {},
			core.ResourceL2Gas: {},
		},
		Tip: opts.Tip,
	}
	if opts.Nonce != nil {
		draftCtx.Nonce = opts.Nonce
	}

	draft, err := txnbuild.BuildInvoke(intent, draftCtx)
	if err != nil {
		return nil, err
	}
	return a.provider.EstimateFee(ctx, draft)
}

func (a *Account) boundsFromEstimate(estimate *rpc.FeeEstimate) core.ResourceBoundsMap {
	bounds := core.ResourceBoundsMap{
		core.ResourceL1Gas: {
			MaxAmount:       a.padAmount(estimate.L1GasConsumed),
			MaxPricePerUnit: a.padFelt(estimate.L1GasPrice),
		},
		core.ResourceL2Gas: {
			MaxAmount:       a.padAmount(estimate.L2GasConsumed),
			MaxPricePerUnit: a.padFelt(estimate.L2GasPrice),
		},
	}
	if estimate.L1DataGasConsumed != nil {
		bounds[core.ResourceL1DataGas] = core.ResourceBounds{
			MaxAmount:       a.padAmount(estimate.L1DataGasConsumed),
			MaxPricePerUnit: a.padFelt(estimate.L1DataGasPrice),
		}
	}
	return bounds
}

// padFelt scales the estimate by the fee multiplier, rounding up. Prices are
// 128-bit quantities, so the arithmetic stays in big.Int space.
func (a *Account) padFelt(value *felt.Felt) *felt.Felt {
	if value == nil {
		return new(felt.Felt)
	}
	mult := new(big.Rat).SetFloat64(a.feeMultiplier)
	if mult == nil {
		mult = new(big.Rat).SetFloat64(DefaultFeeMultiplier)
	}

	padded := new(big.Int).Mul(value.BigInt(new(big.Int)), mult.Num())
	padded.Add(padded, new(big.Int).Sub(mult.Denom(), big.NewInt(1)))
	padded.Quo(padded, mult.Denom())
	return new(felt.Felt).SetBigInt(padded)
}

// padAmount is padFelt clamped to the 64-bit max-amount wire field.
func (a *Account) padAmount(value *felt.Felt) uint64 {
	padded := a.padFelt(value).BigInt(new(big.Int))
	if !padded.IsUint64() {
		return math.MaxUint64
	}
	return padded.Uint64()
}

// signAndSubmit runs the build-sign-submit attempt loop. Only a nonce
// conflict triggers a rebuild with a refreshed nonce; every other node error
// propagates unchanged.
func (a *Account) signAndSubmit(ctx context.Context, intent *txnbuild.Intent,
	chainCtx *txnbuild.ChainContext,
) (*Handle, error) {
	for attempt := 1; ; attempt++ {
		tx, err := txnbuild.BuildInvoke(intent, chainCtx)
		if err != nil {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sig, err := a.signer.Sign(ctx, tx.TransactionHash)
		if err != nil {
			if a.signer.Retryable() && attempt < a.retry.MaxAttempts {
				a.log.Warnw("Signing failed, retrying", "attempt", attempt, "err", err)
				if err := a.backoff(ctx); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		tx.TransactionSignature = sig.Felts()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash, err := a.provider.AddInvokeTransaction(ctx, tx)
		if err == nil {
			submissions.Inc()
			a.log.Infow("Transaction submitted", "hash", hash, "nonce", tx.Nonce,
				"attempt", attempt)
			return &Handle{TransactionHash: hash, provider: a.provider}, nil
		}

		if !rpc.IsNonceConflict(err) || attempt >= a.retry.MaxAttempts {
			return nil, err
		}

		nonceRetries.Inc()
		a.log.Warnw("Nonce conflict, refreshing nonce", "attempt", attempt, "nonce", tx.Nonce)
		if err := a.backoff(ctx); err != nil {
			return nil, err
		}
		chainCtx, err = a.refreshNonce(ctx, chainCtx)
		if err != nil {
			return nil, err
		}
	}
}

// refreshNonce clones the chain context with the node's current nonce. The
// original snapshot is left untouched so a caller holding it sees consistent
// values.
func (a *Account) refreshNonce(ctx context.Context, chainCtx *txnbuild.ChainContext) (*txnbuild.ChainContext, error) {
	nonce, err := a.provider.Nonce(ctx, a.address)
	if err != nil {
		return nil, fmt.Errorf("refreshing nonce: %w", err)
	}

	refreshed := new(txnbuild.ChainContext)
	if err := copier.Copy(refreshed, chainCtx); err != nil {
		return nil, err
	}
	refreshed.Nonce = nonce
	return refreshed, nil
}

func (a *Account) backoff(ctx context.Context) error {
	if a.retry.Backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.retry.Backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
