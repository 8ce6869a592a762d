package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// AttemptID identifies one payment attempt across its event stream.
type AttemptID string

// NewAttemptID generates a new UUID v4 AttemptID
func NewAttemptID() AttemptID {
	return AttemptID(uuid.New().String())
}

// TransactionIntent is the deterministic input to signing: given the same
// intent and key, the signed payload is identical. An intent is built per
// payment attempt and never reused; retries rebuild from a fresh nonce.
type TransactionIntent struct {
	Sender    common.Address
	Recipient common.Address
	// Token is the ERC20 contract the transfer call is addressed to.
	Token common.Address
	// Amount is the human-unit decimal amount, e.g. "10.5".
	Amount string
	// AmountBase is Amount scaled by TokenDecimals.
	AmountBase    *big.Int
	TokenDecimals uint8
	Nonce         uint64
	GasPrice      *big.Int
	GasLimit      uint64
	ChainID       *big.Int
	// Data is the ABI-encoded transfer(address,uint256) call.
	Data []byte
}

// Validate checks the intent is complete enough to sign.
func (t *TransactionIntent) Validate() error {
	if t.AmountBase == nil || t.AmountBase.Sign() <= 0 {
		return goerr.New("amount must be positive", goerr.V("amount", t.Amount))
	}
	if t.GasPrice == nil || t.GasPrice.Sign() <= 0 {
		return goerr.New("gas price must be positive")
	}
	if t.GasLimit == 0 {
		return goerr.New("gas limit must be positive")
	}
	if t.ChainID == nil || t.ChainID.Sign() <= 0 {
		return goerr.New("chain ID must be positive")
	}
	if len(t.Data) == 0 {
		return goerr.New("call data is empty")
	}
	return nil
}

// SignedTransaction is the opaque signed payload ready for broadcast.
// Immutable after signing.
type SignedTransaction struct {
	Raw  []byte
	Hash common.Hash
}

// Receipt is the on-chain record of a submitted transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	// Succeeded is true iff the receipt status flag indicates success.
	Succeeded bool
}

// PaymentEvent is one entry of the progress stream emitted while a payment
// attempt advances through its stages.
type PaymentEvent struct {
	AttemptID AttemptID          `json:"attempt_id"`
	Stage     types.PaymentStage `json:"stage"`
	Message   string             `json:"message"`
	TxHash    string             `json:"tx_hash,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// PaymentResult is the terminal outcome of a payment attempt.
type PaymentResult struct {
	AttemptID   AttemptID
	Stage       types.PaymentStage
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}
