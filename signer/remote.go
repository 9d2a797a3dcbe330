package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/cairn-systems/starkgo/utils"
)

// Remote delegates signing to an HTTP service holding the key. The service
// exposes POST /sign taking {"hash": "0x.."} and returning {"r": .., "s": ..},
// and GET /public_key returning {"public_key": "0x.."}.
type Remote struct {
	url     string
	client  *http.Client
	timeout time.Duration
	log     utils.SimpleLogger

	mu        sync.Mutex
	publicKey *felt.Felt
}

var _ Signer = (*Remote)(nil)

func NewRemote(signerURL string, log utils.SimpleLogger) *Remote {
	return &Remote{
		url:     strings.TrimSuffix(signerURL, "/"),
		timeout: 10 * time.Second,
		client:  http.DefaultClient,
		log:     log,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (r *Remote) WithHTTPClient(client *http.Client) *Remote {
	r.client = client
	return r
}

type signRequest struct {
	Hash *felt.Felt `json:"hash"`
}

type signResponse struct {
	R *felt.Felt `json:"r"`
	S *felt.Felt `json:"s"`
}

type publicKeyResponse struct {
	PublicKey *felt.Felt `json:"public_key"`
}

func (r *Remote) Sign(ctx context.Context, msgHash *felt.Felt) (*crypto.Signature, error) {
	body, err := json.Marshal(signRequest{Hash: msgHash})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/sign", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warnw("Remote signer unreachable", "url", r.url, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		r.log.Warnw("Remote signer refused request", "status", resp.Status, "body", string(respBody))
		return nil, fmt.Errorf("%w: %s", ErrSigningUnavailable, resp.Status)
	}

	var decoded signResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrSigningUnavailable, err)
	}
	if decoded.R == nil || decoded.S == nil {
		return nil, fmt.Errorf("%w: response missing r or s", ErrSigningUnavailable)
	}

	sig := new(crypto.Signature)
	sig.R.Set(decoded.R)
	sig.S.Set(decoded.S)
	return sig, nil
}

func (r *Remote) PublicKey() (*felt.Felt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.publicKey != nil {
		return r.publicKey, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"/public_key", http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrSigningUnavailable, resp.Status)
	}

	var decoded publicKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrSigningUnavailable, err)
	}
	if decoded.PublicKey == nil {
		return nil, fmt.Errorf("%w: response missing public key", ErrSigningUnavailable)
	}

	r.publicKey = decoded.PublicKey
	return r.publicKey, nil
}

func (r *Remote) Retryable() bool {
	return true
}
