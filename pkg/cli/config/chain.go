package config

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/service/chain"
	"github.com/facepay-lab/facepay/pkg/usecase"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// PYUSD on Sepolia, the default settlement token.
const defaultTokenAddress = "0xCaC524BcA292aaade2DF8A05cC58F0a65B1B3bB9"

// Chain holds CLI flags for the Ethereum JSON-RPC boundary and for payment
// parameters.
type Chain struct {
	rpcURL          string
	chainID         int
	tokenAddress    string
	merchantAddress string
	gasLimit        uint
	gasPriceCapGwei int
	privateKey      string
	pollInterval    time.Duration
	confirmTimeout  time.Duration
}

// Flags returns CLI flags for chain configuration
func (c *Chain) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rpc-url",
			Usage:       "Ethereum JSON-RPC endpoint",
			Sources:     cli.EnvVars("FACEPAY_RPC_URL"),
			Destination: &c.rpcURL,
		},
		&cli.IntFlag{
			Name:        "chain-id",
			Usage:       "Chain ID for transaction signing",
			Value:       11155111,
			Sources:     cli.EnvVars("FACEPAY_CHAIN_ID"),
			Destination: &c.chainID,
		},
		&cli.StringFlag{
			Name:        "token-address",
			Usage:       "ERC20 token contract address",
			Value:       defaultTokenAddress,
			Sources:     cli.EnvVars("FACEPAY_TOKEN_ADDRESS"),
			Destination: &c.tokenAddress,
		},
		&cli.StringFlag{
			Name:        "merchant-address",
			Usage:       "Default recipient for payments",
			Sources:     cli.EnvVars("FACEPAY_MERCHANT_ADDRESS"),
			Destination: &c.merchantAddress,
		},
		&cli.UintFlag{
			Name:        "gas-limit",
			Usage:       "Gas limit for ERC20 transfers",
			Value:       90000,
			Sources:     cli.EnvVars("FACEPAY_GAS_LIMIT"),
			Destination: &c.gasLimit,
		},
		&cli.IntFlag{
			Name:        "gas-price-cap-gwei",
			Usage:       "Upper bound on gas price in gwei (0 disables the cap)",
			Value:       20,
			Sources:     cli.EnvVars("FACEPAY_GAS_PRICE_CAP_GWEI"),
			Destination: &c.gasPriceCapGwei,
		},
		&cli.StringFlag{
			Name:        "private-key",
			Usage:       "Hex private key of the paying account",
			Sources:     cli.EnvVars("FACEPAY_PRIVATE_KEY"),
			Destination: &c.privateKey,
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Receipt polling interval",
			Value:       3 * time.Second,
			Sources:     cli.EnvVars("FACEPAY_POLL_INTERVAL"),
			Destination: &c.pollInterval,
		},
		&cli.DurationFlag{
			Name:        "confirm-timeout",
			Usage:       "How long to wait for transaction confirmation",
			Value:       2 * time.Minute,
			Sources:     cli.EnvVars("FACEPAY_CONFIRM_TIMEOUT"),
			Destination: &c.confirmTimeout,
		},
	}
}

// RPCURL returns the configured JSON-RPC endpoint
func (c *Chain) RPCURL() string {
	return c.rpcURL
}

// IsConfigured reports whether an RPC endpoint has been set. Without one the
// server still serves registration and matching.
func (c *Chain) IsConfigured() bool {
	return c.rpcURL != ""
}

// Configure builds the throttled RPC client and the payment configuration.
func (c *Chain) Configure() (*chain.Client, *usecase.PaymentConfig, error) {
	if !c.IsConfigured() {
		return nil, nil, goerr.New("rpc-url is required")
	}
	if !common.IsHexAddress(c.tokenAddress) {
		return nil, nil, goerr.New("invalid token address", goerr.V("address", c.tokenAddress))
	}
	if c.merchantAddress != "" && !common.IsHexAddress(c.merchantAddress) {
		return nil, nil, goerr.New("invalid merchant address", goerr.V("address", c.merchantAddress))
	}

	client, err := chain.New(c.rpcURL)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize rpc client")
	}

	var priceCap *big.Int
	if c.gasPriceCapGwei > 0 {
		priceCap = new(big.Int).Mul(big.NewInt(int64(c.gasPriceCapGwei)), big.NewInt(1_000_000_000))
	}

	cfg := &usecase.PaymentConfig{
		Token:          common.HexToAddress(c.tokenAddress),
		Merchant:       common.HexToAddress(c.merchantAddress),
		ChainID:        big.NewInt(int64(c.chainID)),
		GasLimit:       uint64(c.gasLimit),
		GasPriceCap:    priceCap,
		PrivateKey:     c.privateKey,
		PollInterval:   c.pollInterval,
		ConfirmTimeout: c.confirmTimeout,
	}

	logging.Default().Info("Chain client configured",
		"rpc_url", c.rpcURL,
		"chain_id", c.chainID,
		"token", c.tokenAddress,
		"gas_limit", c.gasLimit,
		"gas_price_cap_gwei", c.gasPriceCapGwei,
	)

	return client, cfg, nil
}
