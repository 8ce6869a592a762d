package mock

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// ChainClient is a test double for the blockchain RPC boundary. Behavior is
// injected per-method via function fields; every call is recorded so tests
// can assert which RPC methods were (or were not) reached.
type ChainClient struct {
	mu    sync.Mutex
	calls []string

	PendingNonceFunc       func(ctx context.Context, addr common.Address) (uint64, error)
	GasPriceFunc           func(ctx context.Context) (*big.Int, error)
	TokenDecimalsFunc      func(ctx context.Context, token common.Address) (uint8, error)
	TokenBalanceFunc       func(ctx context.Context, token, owner common.Address) (*big.Int, error)
	TokenAllowanceFunc     func(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	SendRawTransactionFunc func(ctx context.Context, raw []byte) (common.Hash, error)
	TransactionReceiptFunc func(ctx context.Context, hash common.Hash) (*model.Receipt, error)
}

var _ interfaces.ChainClient = &ChainClient{}

func (c *ChainClient) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, method)
}

// Calls returns the RPC method names invoked so far, in order.
func (c *ChainClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

// Called reports whether the named method was invoked.
func (c *ChainClient) Called(method string) bool {
	for _, m := range c.Calls() {
		if m == method {
			return true
		}
	}
	return false
}

func (c *ChainClient) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	c.record("PendingNonce")
	if c.PendingNonceFunc == nil {
		return 0, goerr.New("PendingNonce not stubbed")
	}
	return c.PendingNonceFunc(ctx, addr)
}

func (c *ChainClient) GasPrice(ctx context.Context) (*big.Int, error) {
	c.record("GasPrice")
	if c.GasPriceFunc == nil {
		return nil, goerr.New("GasPrice not stubbed")
	}
	return c.GasPriceFunc(ctx)
}

func (c *ChainClient) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	c.record("TokenDecimals")
	if c.TokenDecimalsFunc == nil {
		return 0, goerr.New("TokenDecimals not stubbed")
	}
	return c.TokenDecimalsFunc(ctx, token)
}

func (c *ChainClient) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	c.record("TokenBalance")
	if c.TokenBalanceFunc == nil {
		return nil, goerr.New("TokenBalance not stubbed")
	}
	return c.TokenBalanceFunc(ctx, token, owner)
}

func (c *ChainClient) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	c.record("TokenAllowance")
	if c.TokenAllowanceFunc == nil {
		return nil, goerr.New("TokenAllowance not stubbed")
	}
	return c.TokenAllowanceFunc(ctx, token, owner, spender)
}

func (c *ChainClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	c.record("SendRawTransaction")
	if c.SendRawTransactionFunc == nil {
		return common.Hash{}, goerr.New("SendRawTransaction not stubbed")
	}
	return c.SendRawTransactionFunc(ctx, raw)
}

func (c *ChainClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*model.Receipt, error) {
	c.record("TransactionReceipt")
	if c.TransactionReceiptFunc == nil {
		return nil, goerr.New("TransactionReceipt not stubbed")
	}
	return c.TransactionReceiptFunc(ctx, hash)
}
