package chain_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/service/chain"
	"github.com/m-mizutani/gt"
)

type rpcCall struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// rpcServer answers each JSON-RPC method from results and records calls.
func rpcServer(t *testing.T, results map[string]any) (*httptest.Server, *[]rpcCall) {
	t.Helper()
	var calls []rpcCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcCall
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req)).Required()
		calls = append(calls, req)

		result, ok := results[req.Method]
		if !ok {
			t.Fatalf("unexpected rpc method: %s", req.Method)
		}
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  result,
		}))
	}))
	return srv, &calls
}

func fastClient(t *testing.T, endpoint string) *chain.Client {
	t.Helper()
	client, err := chain.New(endpoint,
		chain.WithMinInterval(time.Millisecond),
		chain.WithRetryWait(time.Millisecond),
	)
	gt.NoError(t, err).Required()
	return client
}

func TestClientReads(t *testing.T) {
	srv, calls := rpcServer(t, map[string]any{
		"eth_getTransactionCount": "0x2a",
		"eth_gasPrice":            "0x3b9aca00",
		"eth_call":                "0x0000000000000000000000000000000000000000000000000000000000000006",
	})
	defer srv.Close()

	client := fastClient(t, srv.URL)
	ctx := context.Background()
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	nonce, err := client.PendingNonce(ctx, addr)
	gt.NoError(t, err).Required()
	gt.Value(t, nonce).Equal(uint64(42))

	price, err := client.GasPrice(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, price.String()).Equal("1000000000")

	decimals, err := client.TokenDecimals(ctx, addr)
	gt.NoError(t, err).Required()
	gt.Value(t, decimals).Equal(uint8(6))

	balance, err := client.TokenBalance(ctx, addr, addr)
	gt.NoError(t, err).Required()
	gt.Value(t, balance.String()).Equal("6")

	allowance, err := client.TokenAllowance(ctx, addr, addr, addr)
	gt.NoError(t, err).Required()
	gt.Value(t, allowance.String()).Equal("6")

	// The nonce request must ask for the pending state.
	first := (*calls)[0]
	gt.Value(t, first.Method).Equal("eth_getTransactionCount")
	gt.Value(t, first.Params[1]).Equal("pending")
}

func TestClientRetriesRateLimitOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1, "result": "0x1",
		}))
	}))
	defer srv.Close()

	client := fastClient(t, srv.URL)
	price, err := client.GasPrice(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, price.String()).Equal("1")
	gt.Value(t, hits.Load()).Equal(int32(2))
}

func TestClientGivesUpAfterSecondRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := fastClient(t, srv.URL)
	_, err := client.GasPrice(context.Background())
	gt.Bool(t, errors.Is(err, chain.ErrRPCUnavailable)).True()
	gt.Value(t, hits.Load()).Equal(int32(2))
}

func TestClientThrottlesRequests(t *testing.T) {
	srv, _ := rpcServer(t, map[string]any{"eth_gasPrice": "0x1"})
	defer srv.Close()

	interval := 50 * time.Millisecond
	client, err := chain.New(srv.URL, chain.WithMinInterval(interval))
	gt.NoError(t, err).Required()
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.GasPrice(ctx)
		gt.NoError(t, err).Required()
	}

	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Fatalf("three calls finished in %v, want at least %v between calls", elapsed, interval)
	}
}

func TestClientPropagatesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]any{"code": -32000, "message": "nonce too low"},
		}))
	}))
	defer srv.Close()

	client := fastClient(t, srv.URL)
	_, err := client.GasPrice(context.Background())
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, chain.ErrNonceMismatch)).True()
}

func TestTransactionReceipt(t *testing.T) {
	hash := common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000001")

	srv, _ := rpcServer(t, map[string]any{
		"eth_getTransactionReceipt": map[string]any{
			"transactionHash": hash.Hex(),
			"blockNumber":     "0x10",
			"gasUsed":         "0xafc8",
			"status":          "0x1",
		},
	})
	defer srv.Close()

	client := fastClient(t, srv.URL)
	receipt, err := client.TransactionReceipt(context.Background(), hash)
	gt.NoError(t, err).Required()

	gt.Value(t, receipt.TxHash).Equal(hash)
	gt.Value(t, receipt.BlockNumber).Equal(uint64(16))
	gt.Value(t, receipt.GasUsed).Equal(uint64(45000))
	gt.Bool(t, receipt.Succeeded).True()
}

func TestTransactionReceiptPending(t *testing.T) {
	srv, _ := rpcServer(t, map[string]any{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	client := fastClient(t, srv.URL)
	_, err := client.TransactionReceipt(context.Background(), common.Hash{})
	gt.Bool(t, errors.Is(err, chain.ErrReceiptNotFound)).True()
}

func TestSendRawTransaction(t *testing.T) {
	hash := "0xdef0000000000000000000000000000000000000000000000000000000000002"
	srv, calls := rpcServer(t, map[string]any{"eth_sendRawTransaction": hash})
	defer srv.Close()

	client := fastClient(t, srv.URL)
	got, err := client.SendRawTransaction(context.Background(), []byte{0xf8, 0x6c})
	gt.NoError(t, err).Required()

	gt.Value(t, got).Equal(common.HexToHash(hash))
	gt.Value(t, (*calls)[0].Params[0]).Equal("0xf86c")
}

func TestClientRequiresEndpoint(t *testing.T) {
	_, err := chain.New("")
	gt.Error(t, err)
}
