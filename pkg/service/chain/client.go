// Package chain talks to an Ethereum JSON-RPC node and builds, signs, and
// broadcasts ERC20 transfer transactions. The client enforces the node's
// rate limit on our side: at most one request per second, with a single
// retry when the node answers 429 anyway.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	defaultMinInterval = time.Second
	defaultRetryWait   = time.Second
)

// Client is a throttled JSON-RPC client. Safe for concurrent use; the
// throttle serializes outbound requests.
type Client struct {
	endpoint   string
	httpClient *http.Client

	minInterval time.Duration
	retryWait   time.Duration

	mu       sync.Mutex
	lastCall time.Time
	nextID   int
}

var _ interfaces.ChainClient = (*Client)(nil)

// Option is a functional option for Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithMinInterval overrides the inter-request spacing, used by tests.
func WithMinInterval(d time.Duration) Option {
	return func(cl *Client) {
		cl.minInterval = d
	}
}

// WithRetryWait overrides the backoff before the single 429 retry.
func WithRetryWait(d time.Duration) Option {
	return func(cl *Client) {
		cl.retryWait = d
	}
}

func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, goerr.New("rpc endpoint is required")
	}

	c := &Client{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		minInterval: defaultMinInterval,
		retryWait:   defaultRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one throttled JSON-RPC call. A 429 status is retried exactly
// once after retryWait; a second 429 surfaces as ErrRPCUnavailable.
func (c *Client) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.minInterval - time.Since(c.lastCall); wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, goerr.Wrap(err, "interrupted while throttling", goerr.V("method", method))
		}
	}

	c.nextID++
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode rpc request", goerr.V("method", method))
	}

	result, status, err := c.post(ctx, body)
	c.lastCall = time.Now()
	if status == http.StatusTooManyRequests {
		logging.From(ctx).Warn("rpc rate limited, retrying once", "method", method)
		if err := sleepCtx(ctx, c.retryWait); err != nil {
			return nil, goerr.Wrap(err, "interrupted during rate-limit backoff", goerr.V("method", method))
		}
		result, status, err = c.post(ctx, body)
		c.lastCall = time.Now()
		if status == http.StatusTooManyRequests {
			return nil, goerr.Wrap(ErrRPCUnavailable, "rate limited after retry", goerr.V("method", method))
		}
	}
	if err != nil {
		return nil, goerr.Wrap(err, "rpc call failed", goerr.V("method", method))
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, body []byte) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to build rpc request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, goerr.Wrap(ErrRPCUnavailable, "transport failure", goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, goerr.Wrap(ErrRPCUnavailable, "unexpected status", goerr.V("status", resp.StatusCode))
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, goerr.Wrap(err, "failed to decode rpc response")
	}
	if out.Error != nil {
		if strings.Contains(strings.ToLower(out.Error.Message), "nonce") {
			return nil, resp.StatusCode, goerr.Wrap(ErrNonceMismatch, out.Error.Message,
				goerr.V("code", out.Error.Code))
		}
		return nil, resp.StatusCode, goerr.New("rpc error",
			goerr.V("code", out.Error.Code),
			goerr.V("message", out.Error.Message))
	}
	return out.Result, resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) callString(ctx context.Context, method string, params ...any) (string, error) {
	raw, err := c.call(ctx, method, params...)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", goerr.Wrap(err, "malformed rpc result", goerr.V("method", method))
	}
	return s, nil
}

// PendingNonce implements interfaces.ChainClient.
func (c *Client) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	s, err := c.callString(ctx, "eth_getTransactionCount", addr.Hex(), "pending")
	if err != nil {
		return 0, err
	}
	nonce, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, goerr.Wrap(err, "malformed nonce", goerr.V("value", s))
	}
	return nonce, nil
}

// GasPrice implements interfaces.ChainClient.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	s, err := c.callString(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	price, err := hexutil.DecodeBig(s)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed gas price", goerr.V("value", s))
	}
	return price, nil
}

type callArgs struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

func (c *Client) ethCall(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	s, err := c.callString(ctx, "eth_call", callArgs{To: to.Hex(), Data: hexutil.Encode(data)}, "latest")
	if err != nil {
		return nil, err
	}
	out, err := hexutil.Decode(s)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed eth_call result", goerr.V("value", s))
	}
	return out, nil
}

// TokenDecimals implements interfaces.ChainClient.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := c.ethCall(ctx, token, EncodeDecimals())
	if err != nil {
		return 0, err
	}
	if len(out) != 32 {
		return 0, goerr.New("unexpected decimals() return size", goerr.V("size", len(out)))
	}
	return out[31], nil
}

// TokenBalance implements interfaces.ChainClient.
func (c *Client) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.ethCall(ctx, token, EncodeBalanceOf(owner))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(out), nil
}

// TokenAllowance implements interfaces.ChainClient.
func (c *Client) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.ethCall(ctx, token, EncodeAllowance(owner, spender))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(out), nil
}

// SendRawTransaction implements interfaces.ChainClient.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	s, err := c.callString(ctx, "eth_sendRawTransaction", hexutil.Encode(raw))
	if err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(s), nil
}

type receiptResult struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
	Status          string `json:"status"`
}

// TransactionReceipt implements interfaces.ChainClient.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*model.Receipt, error) {
	raw, err := c.call(ctx, "eth_getTransactionReceipt", hash.Hex())
	if err != nil {
		return nil, err
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, goerr.Wrap(ErrReceiptNotFound, "transaction pending", goerr.V("tx_hash", hash.Hex()))
	}

	var res receiptResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, goerr.Wrap(err, "malformed receipt")
	}

	blockNumber, err := hexutil.DecodeUint64(res.BlockNumber)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed block number", goerr.V("value", res.BlockNumber))
	}
	gasUsed, err := hexutil.DecodeUint64(res.GasUsed)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed gas used", goerr.V("value", res.GasUsed))
	}

	return &model.Receipt{
		TxHash:      common.HexToHash(res.TransactionHash),
		BlockNumber: blockNumber,
		GasUsed:     gasUsed,
		Succeeded:   res.Status == "0x1",
	}, nil
}
