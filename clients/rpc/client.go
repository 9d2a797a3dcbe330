// Package rpc talks JSON-RPC 2.0 to a Starknet node. The Client implements
// the Provider surface the account layer consumes; everything else in the
// package is wire plumbing.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Provider is the node surface the account layer needs. *Client is the real
// implementation; tests substitute a mock.
type Provider interface {
	ChainID(ctx context.Context) (*felt.Felt, error)
	SpecVersion(ctx context.Context) (string, error)
	Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error)
	EstimateFee(ctx context.Context, tx *core.InvokeTransaction) (*FeeEstimate, error)
	AddInvokeTransaction(ctx context.Context, tx *core.InvokeTransaction) (*felt.Felt, error)
	Receipt(ctx context.Context, hash *felt.Felt) (*core.TransactionReceipt, error)
}

// supportedSpecs covers the RPC spec versions this client is written
// against.
var supportedSpecs = mustConstraint(">= 0.7.0, < 1.0.0")

func mustConstraint(c string) *semver.Constraints {
	parsed, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return parsed
}

type Options struct {
	URL        string        `validate:"required,http_url"`
	Timeout    time.Duration `validate:"min=0"`
	HTTPClient *http.Client
	Log        utils.SimpleLogger
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func optionsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

type Client struct {
	url     string
	client  *http.Client
	timeout time.Duration
	log     utils.SimpleLogger
	nextID  atomic.Uint64
}

var _ Provider = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	if err := optionsValidator().Struct(opts); err != nil {
		return nil, errors.Wrap(err, "invalid rpc options")
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	log := opts.Log
	if log == nil {
		log = utils.NewNopZapLogger()
	}

	return &Client{
		url:     strings.TrimSuffix(opts.URL, "/"),
		client:  client,
		timeout: timeout,
		log:     log,
	}, nil
}

type request struct {
	Version string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Version string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(request{
		Version: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "posting %s", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("%s: %s: %s", method, resp.Status, string(respBody))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrapf(err, "decoding %s response", method)
	}
	if decoded.Error != nil {
		c.log.Debugw("Node returned an error", "method", method, "code", decoded.Error.Code,
			"message", decoded.Error.Message)
		return nil, decoded.Error
	}
	return decoded.Result, nil
}

// feltHook lets mapstructure turn hex strings into felts and L1 addresses
// while walking a decoded result.
func feltHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case reflect.TypeOf(&felt.Felt{}):
		return new(felt.Felt).SetString(data.(string))
	case reflect.TypeOf(common.Address{}):
		return common.HexToAddress(data.(string)), nil
	default:
		return data, nil
	}
}

func decodeResult(raw json.RawMessage, target any) error {
	var intermediate any
	if err := json.Unmarshal(raw, &intermediate); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			feltHook,
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(decoder.Decode(intermediate), "decoding rpc result")
}

func (c *Client) ChainID(ctx context.Context) (*felt.Felt, error) {
	raw, err := c.call(ctx, "starknet_chainId", nil)
	if err != nil {
		return nil, err
	}
	chainID := new(felt.Felt)
	if err := json.Unmarshal(raw, chainID); err != nil {
		return nil, err
	}
	return chainID, nil
}

func (c *Client) SpecVersion(ctx context.Context) (string, error) {
	raw, err := c.call(ctx, "starknet_specVersion", nil)
	if err != nil {
		return "", err
	}
	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", err
	}
	return version, nil
}

// CheckSpecVersion rejects nodes speaking an RPC spec this client was not
// written against.
func (c *Client) CheckSpecVersion(ctx context.Context) error {
	raw, err := c.SpecVersion(ctx)
	if err != nil {
		return err
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return errors.Wrapf(err, "parsing node spec version %q", raw)
	}
	if !supportedSpecs.Check(version) {
		return errors.Errorf("node spec version %s outside supported range %s", raw, supportedSpecs)
	}
	return nil
}

func (c *Client) Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	raw, err := c.call(ctx, "starknet_getNonce", map[string]any{
		"block_id":         "pending",
		"contract_address": address,
	})
	if err != nil {
		return nil, err
	}
	nonce := new(felt.Felt)
	if err := json.Unmarshal(raw, nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

func (c *Client) EstimateFee(ctx context.Context, tx *core.InvokeTransaction) (*FeeEstimate, error) {
	// The transaction is unsigned at estimation time, so account validation
	// has to be skipped.
	raw, err := c.call(ctx, "starknet_estimateFee", map[string]any{
		"request":          []any{adaptInvoke(tx)},
		"simulation_flags": []string{"SKIP_VALIDATE"},
		"block_id":         "pending",
	})
	if err != nil {
		return nil, err
	}

	var estimates []FeeEstimate
	if err := decodeResult(raw, &estimates); err != nil {
		return nil, err
	}
	if len(estimates) != 1 {
		return nil, errors.Errorf("expected one fee estimate, got %d", len(estimates))
	}
	return &estimates[0], nil
}

func (c *Client) AddInvokeTransaction(ctx context.Context, tx *core.InvokeTransaction) (*felt.Felt, error) {
	raw, err := c.call(ctx, "starknet_addInvokeTransaction", map[string]any{
		"invoke_transaction": adaptInvoke(tx),
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		TransactionHash *felt.Felt `json:"transaction_hash"`
	}
	if err := decodeResult(raw, &result); err != nil {
		return nil, err
	}
	if result.TransactionHash == nil {
		return nil, errors.New("node response missing transaction hash")
	}
	return result.TransactionHash, nil
}

func (c *Client) Receipt(ctx context.Context, hash *felt.Felt) (*core.TransactionReceipt, error) {
	raw, err := c.call(ctx, "starknet_getTransactionReceipt", map[string]any{
		"transaction_hash": hash,
	})
	if err != nil {
		return nil, err
	}

	var receipt wireReceipt
	if err := decodeResult(raw, &receipt); err != nil {
		return nil, err
	}
	return receipt.adapt(), nil
}
