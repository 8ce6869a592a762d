package config

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// AppConfig represents the optional TOML application configuration. It names
// known tokens and may override the match policy.
type AppConfig struct {
	Tokens []Token        `toml:"token"`
	Match  *MatchSettings `toml:"match"`
}

// Token maps a human-friendly symbol to an ERC20 contract.
type Token struct {
	Symbol   string `toml:"symbol"`
	Address  string `toml:"address"`
	Decimals int    `toml:"decimals"`
}

// Validate checks if the Token is valid
func (t *Token) Validate() error {
	if t.Symbol == "" {
		return goerr.New("token symbol is required")
	}
	if !common.IsHexAddress(t.Address) {
		return goerr.New("invalid token address",
			goerr.V("symbol", t.Symbol), goerr.V("address", t.Address))
	}
	if t.Decimals < 0 || t.Decimals > 36 {
		return goerr.New("token decimals out of range",
			goerr.V("symbol", t.Symbol), goerr.V("decimals", t.Decimals))
	}
	return nil
}

// MatchSettings overrides the match policy flags when present.
type MatchSettings struct {
	Metric            string  `toml:"metric"`
	Threshold         float64 `toml:"threshold"`
	FallbackThreshold float64 `toml:"fallback_threshold"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	symbols := make(map[string]bool)
	for _, tok := range a.Tokens {
		if err := tok.Validate(); err != nil {
			return goerr.Wrap(err, "invalid token entry")
		}
		key := strings.ToLower(tok.Symbol)
		if symbols[key] {
			return goerr.New("duplicate token symbol", goerr.V("symbol", tok.Symbol))
		}
		symbols[key] = true
	}

	if a.Match != nil {
		if a.Match.Metric != "" && !types.Metric(a.Match.Metric).IsValid() {
			return goerr.New("invalid match metric", goerr.V("metric", a.Match.Metric))
		}
		if a.Match.Threshold < 0 || a.Match.Threshold > 1 {
			return goerr.New("match threshold must be within [0, 1]",
				goerr.V("threshold", a.Match.Threshold))
		}
		if a.Match.FallbackThreshold < 0 || a.Match.FallbackThreshold > 1 {
			return goerr.New("fallback threshold must be within [0, 1]",
				goerr.V("threshold", a.Match.FallbackThreshold))
		}
	}

	return nil
}

// FindToken looks up a token entry by symbol, case-insensitively.
func (a *AppConfig) FindToken(symbol string) (*Token, bool) {
	for i := range a.Tokens {
		if strings.EqualFold(a.Tokens[i].Symbol, symbol) {
			return &a.Tokens[i], true
		}
	}
	return nil, false
}

// ApplyMatchPolicy overrides the recognizer's match policy flags with the
// values from the configuration file.
func (a *AppConfig) ApplyMatchPolicy(r *Recognizer) {
	if a.Match == nil {
		return
	}
	if a.Match.Metric != "" {
		r.metric = a.Match.Metric
	}
	if a.Match.Threshold > 0 {
		r.threshold = a.Match.Threshold
	}
	if a.Match.FallbackThreshold > 0 {
		r.fallbackThreshold = a.Match.FallbackThreshold
	}
}

// ResolveToken replaces a token symbol in the chain configuration with the
// contract address from the configuration file. A hex address passes through
// untouched.
func (a *AppConfig) ResolveToken(c *Chain) error {
	if c.tokenAddress == "" || common.IsHexAddress(c.tokenAddress) {
		return nil
	}
	tok, ok := a.FindToken(c.tokenAddress)
	if !ok {
		return goerr.New("unknown token symbol", goerr.V("symbol", c.tokenAddress))
	}
	logging.Default().Info("Resolved token symbol",
		"symbol", tok.Symbol, "address", tok.Address)
	c.tokenAddress = tok.Address
	return nil
}

// LoadAppConfiguration loads and validates a TOML configuration file.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "configuration file not found",
				goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V(ConfigPathKey, path))
	}

	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse configuration file",
			goerr.V(ConfigPathKey, path), goerr.V("parse_error", err.Error()))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V(ConfigPathKey, path))
	}

	return &cfg, nil
}

// App holds the CLI flag for the optional configuration file
type App struct {
	path string
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("FACEPAY_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the configuration file when one is set. Without a file it
// returns nil and defaults apply.
func (a *App) Configure() (*AppConfig, error) {
	if a.path == "" {
		return nil, nil
	}
	cfg, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Loaded application configuration",
		"path", a.path, "tokens", len(cfg.Tokens))
	return cfg, nil
}
