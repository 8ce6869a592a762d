package chain

import (
	"math/big"
	"strings"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// EffectiveGasPrice returns min(suggested*1.2, cap). The 20% headroom keeps
// the transaction competitive against a moving base fee while the hard cap
// bounds the worst-case fee of a single payment.
func EffectiveGasPrice(suggested, cap *big.Int) *big.Int {
	bumped := new(big.Int).Mul(suggested, big.NewInt(12))
	bumped.Div(bumped, big.NewInt(10))
	if cap != nil && bumped.Cmp(cap) > 0 {
		return new(big.Int).Set(cap)
	}
	return bumped
}

// SignTransfer signs intent with the EIP-155 replay-protected scheme. The
// address derived from privateKeyHex must equal intent.Sender; a mismatch is
// rejected before anything is signed.
func SignTransfer(intent *model.TransactionIntent, privateKeyHex string) (*model.SignedTransaction, error) {
	if err := intent.Validate(); err != nil {
		return nil, goerr.Wrap(err, "incomplete transaction intent")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, goerr.Wrap(err, "malformed private key")
	}

	derived := crypto.PubkeyToAddress(key.PublicKey)
	if derived != intent.Sender {
		return nil, goerr.Wrap(ErrSignatureMismatch, "derived address differs from sender",
			goerr.V("sender", intent.Sender.Hex()),
			goerr.V("derived", derived.Hex()))
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    intent.Nonce,
		GasPrice: intent.GasPrice,
		Gas:      intent.GasLimit,
		To:       &intent.Token,
		Value:    big.NewInt(0),
		Data:     intent.Data,
	})

	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(intent.ChainID), key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign transaction")
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize signed transaction")
	}

	return &model.SignedTransaction{
		Raw:  raw,
		Hash: signed.Hash(),
	}, nil
}
