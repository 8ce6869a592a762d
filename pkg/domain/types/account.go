package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/m-mizutani/goerr/v2"
)

// AccountID is a wallet-style account identifier (0x-prefixed EVM address).
// Comparison is case-insensitive; the canonical form is lower case.
type AccountID string

// Normalize returns the canonical lower-case form of the account ID.
func (a AccountID) Normalize() AccountID {
	return AccountID(strings.ToLower(string(a)))
}

// Validate checks that the account ID is a well-formed EVM address.
func (a AccountID) Validate() error {
	if a == "" {
		return goerr.New("account ID is required")
	}
	if !common.IsHexAddress(string(a)) {
		return goerr.New("account ID is not a valid address", goerr.V("account_id", string(a)))
	}
	return nil
}

// Address converts the account ID to an EVM address. Validate first.
func (a AccountID) Address() common.Address {
	return common.HexToAddress(string(a))
}

func (a AccountID) String() string {
	return string(a)
}
