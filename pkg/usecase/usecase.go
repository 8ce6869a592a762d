// Package usecase wires the face pipeline, the embedding store, and the
// chain boundary into the application flows: register, match, pay, balance.
package usecase

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/service/matcher"
	"github.com/facepay-lab/facepay/pkg/service/recognizer"
	"github.com/m-mizutani/goerr/v2"
)

// PaymentConfig carries the chain-side parameters of a payment attempt.
type PaymentConfig struct {
	// Token is the ERC20 contract payments are denominated in.
	Token common.Address
	// Merchant is the default recipient when a request names none.
	Merchant common.Address
	ChainID  *big.Int
	GasLimit uint64
	// GasPriceCap bounds the effective gas price. Nil means uncapped.
	GasPriceCap *big.Int
	// PrivateKey signs transfers. Its derived address must match the paying
	// account; a mismatch aborts before signing.
	PrivateKey string

	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// Validate checks the config is complete enough to run payments.
func (c *PaymentConfig) Validate() error {
	if c.Token == (common.Address{}) {
		return goerr.New("token contract address is required")
	}
	if c.ChainID == nil || c.ChainID.Sign() <= 0 {
		return goerr.New("chain ID is required")
	}
	if c.GasLimit == 0 {
		return goerr.New("gas limit is required")
	}
	if c.PrivateKey == "" {
		return goerr.New("signing key is required")
	}
	return nil
}

type UseCases struct {
	repo       interfaces.Repository
	recognizer *recognizer.Service
	matcher    *matcher.Service
	chain      interfaces.ChainClient
	sink       interfaces.EventSink
	payment    *PaymentConfig
}

type Option func(*UseCases)

func WithRecognizer(svc *recognizer.Service) Option {
	return func(uc *UseCases) {
		uc.recognizer = svc
	}
}

func WithMatcher(svc *matcher.Service) Option {
	return func(uc *UseCases) {
		uc.matcher = svc
	}
}

func WithChainClient(client interfaces.ChainClient) Option {
	return func(uc *UseCases) {
		uc.chain = client
	}
}

func WithEventSink(sink interfaces.EventSink) Option {
	return func(uc *UseCases) {
		uc.sink = sink
	}
}

func WithPaymentConfig(cfg *PaymentConfig) Option {
	return func(uc *UseCases) {
		uc.payment = cfg
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.payment != nil {
		if uc.payment.PollInterval <= 0 {
			uc.payment.PollInterval = 3 * time.Second
		}
		if uc.payment.ConfirmTimeout <= 0 {
			uc.payment.ConfirmTimeout = 2 * time.Minute
		}
	}

	return uc
}
