// Package config defines the client configuration and validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/oddslane/sportsbook/internal/networks"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SPORTSBOOK_* environment
// variables.
type Config struct {
	Wallet   WalletConfig    `toml:"wallet"`
	Markets  MarketsConfig   `toml:"markets"`
	Quote    QuoteConfig     `toml:"quote"`
	Trade    TradeConfig     `toml:"trade"`
	Networks []NetworkConfig `toml:"networks"`
	LogLevel string          `toml:"log_level"`
}

// WalletConfig holds the chain wallet credentials.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// MarketsConfig holds the market-data endpoint parameters.
type MarketsConfig struct {
	BaseURL           string   `toml:"base_url"`
	ProxyURL          string   `toml:"proxy_url"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	CacheTTL          duration `toml:"cache_ttl"`
}

// QuoteConfig holds the pricing endpoint parameters.
type QuoteConfig struct {
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// TradeConfig holds the trade execution parameters.
type TradeConfig struct {
	// SlippageTolerance is the fraction of the quoted payout given up as
	// the worst acceptable fill, e.g. 0.05.
	SlippageTolerance float64  `toml:"slippage_tolerance"`
	ConfirmInterval   duration `toml:"confirm_interval"`
	ConfirmTimeout    duration `toml:"confirm_timeout"`
}

// NetworkConfig describes one candidate network. List order in the TOML
// file is the market-discovery priority order.
type NetworkConfig struct {
	ID              uint64 `toml:"id"`
	Name            string `toml:"name"`
	SettlementToken string `toml:"settlement_token"`
	MarketMaker     string `toml:"market_maker"`
	TokenSymbol     string `toml:"token_symbol"`
	TokenDecimals   int    `toml:"token_decimals"`
	RPCURL          string `toml:"rpc_url"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	var nets []NetworkConfig
	for _, n := range networks.Defaults() {
		nets = append(nets, NetworkConfig{
			ID:              n.ID,
			Name:            n.Name,
			SettlementToken: n.SettlementToken.Hex(),
			MarketMaker:     n.MarketMaker.Hex(),
			TokenSymbol:     n.TokenSymbol,
			TokenDecimals:   n.TokenDecimals,
			RPCURL:          n.RPCURL,
		})
	}
	return Config{
		Markets: MarketsConfig{
			BaseURL:           "https://api.overtimemarkets.xyz/overtime",
			RequestsPerSecond: 5,
			CacheTTL:          duration{time.Minute},
		},
		Quote: QuoteConfig{
			BaseURL:           "https://api.overtimemarkets.xyz/overtime",
			RequestsPerSecond: 5,
		},
		Trade: TradeConfig{
			SlippageTolerance: 0.05,
			ConfirmInterval:   duration{2 * time.Second},
			ConfirmTimeout:    duration{2 * time.Minute},
		},
		Networks: nets,
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Markets.BaseURL == "" {
		errs = append(errs, "markets: base_url must not be empty")
	}
	if c.Markets.RequestsPerSecond <= 0 {
		errs = append(errs, "markets: requests_per_second must be > 0")
	}
	if c.Markets.CacheTTL.Duration <= 0 {
		errs = append(errs, "markets: cache_ttl must be > 0")
	}

	if c.Quote.BaseURL == "" {
		errs = append(errs, "quote: base_url must not be empty")
	}

	if c.Trade.SlippageTolerance < 0 || c.Trade.SlippageTolerance >= 1 {
		errs = append(errs, fmt.Sprintf("trade: slippage_tolerance must be in [0, 1), got %v", c.Trade.SlippageTolerance))
	}
	if c.Trade.ConfirmTimeout.Duration <= 0 {
		errs = append(errs, "trade: confirm_timeout must be > 0")
	}

	if len(c.Networks) == 0 {
		errs = append(errs, "networks: at least one network must be configured")
	}
	seen := map[uint64]bool{}
	for i, n := range c.Networks {
		if n.ID == 0 {
			errs = append(errs, fmt.Sprintf("networks[%d]: id must be set", i))
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Sprintf("networks[%d]: duplicate id %d", i, n.ID))
		}
		seen[n.ID] = true
		if !common.IsHexAddress(n.SettlementToken) {
			errs = append(errs, fmt.Sprintf("networks[%d]: settlement_token %q is not a valid address", i, n.SettlementToken))
		}
		if !common.IsHexAddress(n.MarketMaker) {
			errs = append(errs, fmt.Sprintf("networks[%d]: market_maker %q is not a valid address", i, n.MarketMaker))
		}
		if n.TokenDecimals <= 0 || n.TokenDecimals > 36 {
			errs = append(errs, fmt.Sprintf("networks[%d]: token_decimals must be 1-36, got %d", i, n.TokenDecimals))
		}
		if n.RPCURL == "" {
			errs = append(errs, fmt.Sprintf("networks[%d]: rpc_url must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ToNetworks converts the configured network list, preserving order.
func (c *Config) ToNetworks() []networks.Network {
	out := make([]networks.Network, 0, len(c.Networks))
	for _, n := range c.Networks {
		out = append(out, networks.Network{
			ID:              n.ID,
			Name:            n.Name,
			SettlementToken: common.HexToAddress(n.SettlementToken),
			MarketMaker:     common.HexToAddress(n.MarketMaker),
			TokenSymbol:     n.TokenSymbol,
			TokenDecimals:   n.TokenDecimals,
			RPCURL:          n.RPCURL,
		})
	}
	return out
}
