package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/m-mizutani/goerr/v2"
)

// First four bytes of keccak256 of the canonical ERC20 method signatures.
var (
	selectorTransfer  = []byte{0xa9, 0x05, 0x9c, 0xbb}
	selectorBalanceOf = []byte{0x70, 0xa0, 0x82, 0x31}
	selectorDecimals  = []byte{0x31, 0x3c, 0xe5, 0x67}
	selectorAllowance = []byte{0xdd, 0x62, 0xed, 0x3e}
)

func pad32(b []byte) []byte {
	return common.LeftPadBytes(b, 32)
}

// EncodeTransfer builds the calldata for transfer(address,uint256).
func EncodeTransfer(recipient common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, selectorTransfer...)
	data = append(data, pad32(recipient.Bytes())...)
	data = append(data, pad32(amount.Bytes())...)
	return data
}

// EncodeBalanceOf builds the calldata for balanceOf(address).
func EncodeBalanceOf(owner common.Address) []byte {
	data := make([]byte, 0, 4+32)
	data = append(data, selectorBalanceOf...)
	data = append(data, pad32(owner.Bytes())...)
	return data
}

// EncodeDecimals builds the calldata for decimals().
func EncodeDecimals() []byte {
	return append([]byte(nil), selectorDecimals...)
}

// EncodeAllowance builds the calldata for allowance(address,address).
func EncodeAllowance(owner, spender common.Address) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, selectorAllowance...)
	data = append(data, pad32(owner.Bytes())...)
	data = append(data, pad32(spender.Bytes())...)
	return data
}

// ParseUnits converts a human-unit decimal string into base units, e.g.
// ParseUnits("10.5", 6) = 10500000. More fractional digits than the token
// carries is an error, not a silent truncation.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, goerr.New("amount is empty")
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, goerr.New("amount has more precision than the token",
			goerr.V("amount", amount),
			goerr.V("decimals", decimals))
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	base, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, goerr.New("malformed amount", goerr.V("amount", amount))
	}
	if base.Sign() < 0 {
		return nil, goerr.New("amount must not be negative", goerr.V("amount", amount))
	}
	return base, nil
}

// FormatUnits converts base units back into a human-unit decimal string with
// trailing zeros trimmed.
func FormatUnits(base *big.Int, decimals uint8) string {
	if base == nil {
		return "0"
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(new(big.Int).Abs(base), scale, new(big.Int))

	sign := ""
	if base.Sign() < 0 {
		sign = "-"
	}
	if rem.Sign() == 0 {
		return sign + whole.String()
	}

	frac := strings.TrimRight(
		strings.Repeat("0", int(decimals)-len(rem.String()))+rem.String(),
		"0",
	)
	return sign + whole.String() + "." + frac
}
