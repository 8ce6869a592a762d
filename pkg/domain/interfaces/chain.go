package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/domain/model"
)

// ChainClient is the JSON-RPC boundary to a blockchain node. Implementations
// throttle outbound calls and retry a 429 response exactly once; callers see
// every other failure as-is.
type ChainClient interface {
	// PendingNonce returns the next nonce for the sender, including pending
	// transactions. Fetched fresh per attempt, never cached.
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	// GasPrice returns the node's current gas price suggestion in wei.
	GasPrice(ctx context.Context) (*big.Int, error)
	// TokenDecimals reads decimals() from the token contract.
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	// TokenBalance reads balanceOf(owner) from the token contract.
	TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	// TokenAllowance reads allowance(owner, spender) from the token contract.
	TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	// SendRawTransaction broadcasts a signed payload and returns its hash.
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	// TransactionReceipt returns the receipt, or ErrReceiptNotFound while the
	// transaction is still pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*model.Receipt, error)
}
