package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/service/chain"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// PayRequest describes one payment attempt. Either Image or AccountID
// identifies the payer: an image runs the face match first, a pre-matched
// account ID skips it.
type PayRequest struct {
	Image     []byte
	AccountID types.AccountID
	// Amount is the human-unit decimal amount, e.g. "10.5".
	Amount string
	// Recipient defaults to the configured merchant when zero.
	Recipient common.Address
}

// Pay runs one payment attempt through its stages: identify the payer,
// preflight the balance, fetch nonce and gas, encode the transfer, sign,
// submit, and wait for the receipt. Each stage transition is published to
// the configured event sink. Any failure is terminal for the attempt; a
// retry starts a new attempt with a fresh nonce.
func (uc *UseCases) Pay(ctx context.Context, req *PayRequest) (*model.PaymentResult, error) {
	return uc.pay(ctx, req, uc.sink)
}

// PayWithSink runs Pay but additionally streams stage events to the given
// sink. Used by surfaces that attach a per-request stream (SSE).
func (uc *UseCases) PayWithSink(ctx context.Context, req *PayRequest, sink interfaces.EventSink) (*model.PaymentResult, error) {
	if uc.sink != nil && sink != nil {
		base := uc.sink
		extra := sink
		sink = interfaces.EventSinkFunc(func(ctx context.Context, ev model.PaymentEvent) {
			base.Publish(ctx, ev)
			extra.Publish(ctx, ev)
		})
	} else if sink == nil {
		sink = uc.sink
	}
	return uc.pay(ctx, req, sink)
}

func (uc *UseCases) pay(ctx context.Context, req *PayRequest, sink interfaces.EventSink) (*model.PaymentResult, error) {
	if uc.chain == nil || uc.payment == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "chain client is not configured")
	}
	if err := uc.payment.Validate(); err != nil {
		return nil, goerr.Wrap(err, "payment config incomplete")
	}

	attempt := &payAttempt{
		uc:   uc,
		id:   model.NewAttemptID(),
		sink: sink,
	}
	logger := logging.From(ctx).With("attempt_id", attempt.id)
	ctx = logging.With(ctx, logger)

	attempt.emit(ctx, types.StageIdle, "payment attempt started", "")

	payer, err := uc.resolvePayer(ctx, req)
	if err != nil {
		return nil, attempt.fail(ctx, err)
	}

	recipient := req.Recipient
	if recipient == (common.Address{}) {
		recipient = uc.payment.Merchant
	}
	if recipient == (common.Address{}) {
		return nil, attempt.fail(ctx, goerr.New("recipient is required"))
	}

	// Preflight: the amount must be covered before anything is built or
	// broadcast.
	decimals, err := uc.chain.TokenDecimals(ctx, uc.payment.Token)
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "failed to read token decimals"))
	}
	amountBase, err := chain.ParseUnits(req.Amount, decimals)
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "invalid payment amount"))
	}
	if amountBase.Sign() <= 0 {
		return nil, attempt.fail(ctx, goerr.New("payment amount must be positive", goerr.V("amount", req.Amount)))
	}
	balance, err := uc.chain.TokenBalance(ctx, uc.payment.Token, payer.Address())
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "failed to read payer balance"))
	}
	if balance.Cmp(amountBase) < 0 {
		return nil, attempt.fail(ctx, goerr.Wrap(ErrInsufficientBalance, "preflight rejected payment",
			goerr.V("account_id", payer),
			goerr.V("amount", req.Amount)))
	}

	// Fresh nonce per attempt, never cached across attempts.
	nonce, err := uc.chain.PendingNonce(ctx, payer.Address())
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "failed to fetch nonce"))
	}
	suggested, err := uc.chain.GasPrice(ctx)
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "failed to fetch gas price"))
	}
	gasPrice := chain.EffectiveGasPrice(suggested, uc.payment.GasPriceCap)
	attempt.emit(ctx, types.StageParametersFetched, "fetched nonce and gas price", "")

	intent := &model.TransactionIntent{
		Sender:        payer.Address(),
		Recipient:     recipient,
		Token:         uc.payment.Token,
		Amount:        req.Amount,
		AmountBase:    amountBase,
		TokenDecimals: decimals,
		Nonce:         nonce,
		GasPrice:      gasPrice,
		GasLimit:      uc.payment.GasLimit,
		ChainID:       uc.payment.ChainID,
		Data:          chain.EncodeTransfer(recipient, amountBase),
	}
	attempt.emit(ctx, types.StageDataEncoded, "encoded transfer call", "")

	signed, err := chain.SignTransfer(intent, uc.payment.PrivateKey)
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "failed to sign transfer"))
	}
	attempt.emit(ctx, types.StageSigned, "signed transaction", signed.Hash.Hex())

	txHash, err := uc.chain.SendRawTransaction(ctx, signed.Raw)
	if err != nil {
		return nil, attempt.fail(ctx, goerr.Wrap(err, "failed to broadcast transaction"))
	}
	attempt.emit(ctx, types.StageSubmitted, "transaction submitted", txHash.Hex())

	// The transaction is on the network now; track it to a terminal state
	// even if the caller goes away.
	receipt, err := uc.awaitReceipt(context.WithoutCancel(ctx), txHash)
	if err != nil {
		return nil, attempt.failWithHash(ctx, txHash, err)
	}
	if !receipt.Succeeded {
		return nil, attempt.failWithHash(ctx, txHash, goerr.Wrap(ErrReverted, "transfer reverted on-chain",
			goerr.V("tx_hash", txHash.Hex()),
			goerr.V("block", receipt.BlockNumber)))
	}

	attempt.emit(ctx, types.StageConfirmed, "payment confirmed", txHash.Hex())
	logger.Info("payment confirmed",
		"account_id", payer,
		"tx_hash", txHash.Hex(),
		"block", receipt.BlockNumber,
		"gas_used", receipt.GasUsed,
	)

	return &model.PaymentResult{
		AttemptID:   attempt.id,
		Stage:       types.StageConfirmed,
		TxHash:      txHash,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	}, nil
}

// resolvePayer identifies the paying account, either by face match or by a
// pre-matched account ID that must exist in the store.
func (uc *UseCases) resolvePayer(ctx context.Context, req *PayRequest) (types.AccountID, error) {
	if req.AccountID != "" {
		accountID := req.AccountID.Normalize()
		if err := accountID.Validate(); err != nil {
			return "", err
		}
		if _, err := uc.repo.Registration().Get(ctx, accountID); err != nil {
			return "", goerr.Wrap(err, "payer is not registered", goerr.V("account_id", accountID))
		}
		return accountID, nil
	}

	if len(req.Image) == 0 {
		return "", goerr.New("either a face image or an account ID is required")
	}

	result, err := uc.Match(ctx, req.Image)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", goerr.Wrap(ErrNotRecognized, "face match rejected payment")
	}
	return result.AccountID, nil
}

// awaitReceipt polls for the transaction receipt until it appears or the
// confirmation window closes.
func (uc *UseCases) awaitReceipt(ctx context.Context, txHash common.Hash) (*model.Receipt, error) {
	deadline := time.Now().Add(uc.payment.ConfirmTimeout)
	ticker := time.NewTicker(uc.payment.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := uc.chain.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, chain.ErrReceiptNotFound) {
			return nil, goerr.Wrap(err, "failed to fetch receipt", goerr.V("tx_hash", txHash.Hex()))
		}
		if time.Now().After(deadline) {
			return nil, goerr.Wrap(ErrConfirmTimeout, "no receipt within confirmation window",
				goerr.V("tx_hash", txHash.Hex()),
				goerr.V("timeout", uc.payment.ConfirmTimeout))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// payAttempt carries the attempt ID and the event sink through one payment.
type payAttempt struct {
	uc   *UseCases
	id   model.AttemptID
	sink interfaces.EventSink
}

func (a *payAttempt) emit(ctx context.Context, stage types.PaymentStage, msg, txHash string) {
	if a.sink == nil {
		return
	}
	a.sink.Publish(ctx, model.PaymentEvent{
		AttemptID: a.id,
		Stage:     stage,
		Message:   msg,
		TxHash:    txHash,
		Timestamp: time.Now().UTC(),
	})
}

// fail publishes the terminal failed event and returns the error. Outward
// messages stay generic; details go to the log only.
func (a *payAttempt) fail(ctx context.Context, err error) error {
	return a.failWithHash(ctx, common.Hash{}, err)
}

func (a *payAttempt) failWithHash(ctx context.Context, txHash common.Hash, err error) error {
	msg := "payment failed"
	if errors.Is(err, ErrNotRecognized) {
		msg = ErrNotRecognized.Error()
	}

	hashHex := ""
	if txHash != (common.Hash{}) {
		hashHex = txHash.Hex()
	}
	a.emit(ctx, types.StageFailed, msg, hashHex)
	logging.From(ctx).Error("payment attempt failed", "error", err)
	return err
}
