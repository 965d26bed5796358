package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Networks, 3)
	assert.Equal(t, uint64(10), cfg.Networks[0].ID, "Optimism is the highest-priority network")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Markets.CacheTTL.Duration)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"

[markets]
base_url = "https://example.test/overtime"
cache_ttl = "30s"

[trade]
slippage_tolerance = 0.02
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://example.test/overtime", cfg.Markets.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Markets.CacheTTL.Duration)
	assert.Equal(t, 0.02, cfg.Trade.SlippageTolerance)
	// Untouched sections keep defaults.
	assert.Equal(t, 0.05, Defaults().Trade.SlippageTolerance)
	assert.Len(t, cfg.Networks, 3)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPORTSBOOK_MARKETS_CACHE_TTL", "90s")
	t.Setenv("SPORTSBOOK_TRADE_SLIPPAGE_TOLERANCE", "0.1")
	t.Setenv("SPORTSBOOK_WALLET_PRIVATE_KEY", "0xdeadbeef")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Markets.CacheTTL.Duration)
	assert.Equal(t, 0.1, cfg.Trade.SlippageTolerance)
	assert.Equal(t, "0xdeadbeef", cfg.Wallet.PrivateKey)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Markets.BaseURL = ""
	cfg.Trade.SlippageTolerance = 1.5
	cfg.Networks[1].SettlementToken = "not-an-address"
	cfg.Networks[2].ID = cfg.Networks[0].ID

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "slippage_tolerance")
	assert.Contains(t, err.Error(), "settlement_token")
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestValidate_NoNetworks(t *testing.T) {
	cfg := Defaults()
	cfg.Networks = nil
	assert.Error(t, cfg.Validate())
}

func TestToNetworks_PreservesPriorityOrder(t *testing.T) {
	cfg := Defaults()
	nets := cfg.ToNetworks()
	require.Len(t, nets, 3)
	assert.Equal(t, uint64(10), nets[0].ID)
	assert.Equal(t, uint64(42161), nets[1].ID)
	assert.Equal(t, uint64(8453), nets[2].ID)
}
