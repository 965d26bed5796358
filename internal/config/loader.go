package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SPORTSBOOK_* environment variable overrides,
// and returns the final Config. A missing file is not an error; the
// defaults plus environment are used. The returned Config has NOT been
// validated; call Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SPORTSBOOK_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "SPORTSBOOK_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "SPORTSBOOK_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "SPORTSBOOK_WALLET_KEY_PASSWORD")

	// ── Markets ──
	setStr(&cfg.Markets.BaseURL, "SPORTSBOOK_MARKETS_BASE_URL")
	setStr(&cfg.Markets.ProxyURL, "SPORTSBOOK_MARKETS_PROXY_URL")
	setFloat64(&cfg.Markets.RequestsPerSecond, "SPORTSBOOK_MARKETS_REQUESTS_PER_SECOND")
	setDuration(&cfg.Markets.CacheTTL, "SPORTSBOOK_MARKETS_CACHE_TTL")

	// ── Quote ──
	setStr(&cfg.Quote.BaseURL, "SPORTSBOOK_QUOTE_BASE_URL")
	setFloat64(&cfg.Quote.RequestsPerSecond, "SPORTSBOOK_QUOTE_REQUESTS_PER_SECOND")

	// ── Trade ──
	setFloat64(&cfg.Trade.SlippageTolerance, "SPORTSBOOK_TRADE_SLIPPAGE_TOLERANCE")
	setDuration(&cfg.Trade.ConfirmInterval, "SPORTSBOOK_TRADE_CONFIRM_INTERVAL")
	setDuration(&cfg.Trade.ConfirmTimeout, "SPORTSBOOK_TRADE_CONFIRM_TIMEOUT")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SPORTSBOOK_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
