package usecase

import (
	"context"

	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/service/chain"
	"github.com/m-mizutani/goerr/v2"
)

// Balance is a read-only token balance in both base units and human units.
type Balance struct {
	AccountID types.AccountID
	BaseUnits string
	Amount    string
	Decimals  uint8
}

// Balance reads the token balance of the account.
func (uc *UseCases) Balance(ctx context.Context, accountID types.AccountID) (*Balance, error) {
	if uc.chain == nil || uc.payment == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "chain client is not configured")
	}

	accountID = accountID.Normalize()
	if err := accountID.Validate(); err != nil {
		return nil, err
	}

	decimals, err := uc.chain.TokenDecimals(ctx, uc.payment.Token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token decimals")
	}
	raw, err := uc.chain.TokenBalance(ctx, uc.payment.Token, accountID.Address())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token balance", goerr.V("account_id", accountID))
	}

	return &Balance{
		AccountID: accountID,
		BaseUnits: raw.String(),
		Amount:    chain.FormatUnits(raw, decimals),
		Decimals:  decimals,
	}, nil
}

// Allowance reads how much of the owner's balance the spender may transfer.
func (uc *UseCases) Allowance(ctx context.Context, owner, spender types.AccountID) (string, error) {
	if uc.chain == nil || uc.payment == nil {
		return "", goerr.Wrap(ErrNotConfigured, "chain client is not configured")
	}

	owner = owner.Normalize()
	if err := owner.Validate(); err != nil {
		return "", err
	}
	spender = spender.Normalize()
	if err := spender.Validate(); err != nil {
		return "", err
	}

	decimals, err := uc.chain.TokenDecimals(ctx, uc.payment.Token)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read token decimals")
	}
	raw, err := uc.chain.TokenAllowance(ctx, uc.payment.Token, owner.Address(), spender.Address())
	if err != nil {
		return "", goerr.Wrap(err, "failed to read allowance", goerr.V("owner", owner))
	}

	return chain.FormatUnits(raw, decimals), nil
}
