package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// No config file in the test working directory, so defaults apply.
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "SPY", cfg.Scan.Symbol)
	assert.Equal(t, int64(5), cfg.Scan.MinVolume)
	assert.Equal(t, 0.50, cfg.Scan.MoneyRangePct)
	assert.Equal(t, "2028-01", cfg.Scan.ExpiryFilter)
	assert.Equal(t, 0.045, cfg.Scan.RiskFreeRate)
	assert.Equal(t, 10, cfg.Scan.TopN)
	assert.Equal(t, "https://query2.finance.yahoo.com", cfg.Provider.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.GCP.UseSecrets)
	assert.Equal(t, "leapscan-market-data-api-key", cfg.GCP.SecretNames.MarketDataAPIKey)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := []byte(`
scan:
  symbol: QQQ
  min_volume: 25
  money_range_pct: 0.25
  expiry_filter: "2027-06"
provider:
  base_url: http://localhost:9999
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "QQQ", cfg.Scan.Symbol)
	assert.Equal(t, int64(25), cfg.Scan.MinVolume)
	assert.Equal(t, 0.25, cfg.Scan.MoneyRangePct)
	assert.Equal(t, "2027-06", cfg.Scan.ExpiryFilter)
	assert.Equal(t, "http://localhost:9999", cfg.Provider.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadRejectsInvalidScanConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := []byte(`
scan:
  money_range_pct: -0.5
`)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MARKETDATA_API_KEY", "from-env")
	t.Setenv("MARKETDATA_BASE_URL", "http://env.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Provider.APIKey)
	assert.Equal(t, "http://env.example", cfg.Provider.BaseURL)
}

func TestParamsMapping(t *testing.T) {
	sc := ScanConfig{
		Symbol:          "NVDA",
		MinVolume:       10,
		MoneyRangePct:   0.3,
		ExpiryFilter:    "2028-01",
		ATMTolerancePct: 0.01,
		RiskFreeRate:    0.05,
		TopN:            15,
	}

	p := sc.Params()
	assert.Equal(t, "NVDA", p.Symbol)
	assert.Equal(t, int64(10), p.MinVolume)
	assert.Equal(t, 0.3, p.MoneyRangePct)
	assert.Equal(t, "2028-01", p.ExpiryFilter)
	assert.Equal(t, 0.01, p.ATMTolerancePct)
	assert.Equal(t, 0.05, p.RiskFreeRate)
	assert.Equal(t, 15, p.TopN)
	assert.NoError(t, p.Validate())
}
