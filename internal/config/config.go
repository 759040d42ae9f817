package config

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/quantscan/leapscan/pkg/scanner"
	"github.com/quantscan/leapscan/pkg/secrets"
)

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	GCP      GCPConfig      `mapstructure:"gcp"`
}

type ProviderConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
}

type ScanConfig struct {
	Symbol          string  `mapstructure:"symbol"`
	MinVolume       int64   `mapstructure:"min_volume"`
	MoneyRangePct   float64 `mapstructure:"money_range_pct"`
	ExpiryFilter    string  `mapstructure:"expiry_filter"`
	MinDaysToExpiry int     `mapstructure:"min_days_to_expiry"`
	ATMTolerancePct float64 `mapstructure:"atm_tolerance_pct"`
	RiskFreeRate    float64 `mapstructure:"risk_free_rate"`
	TopN            int     `mapstructure:"top_n"`
}

type MonitorConfig struct {
	Tickers           []string `mapstructure:"tickers"`
	IntervalSeconds   int      `mapstructure:"interval_seconds"`
	DiscountThreshold float64  `mapstructure:"discount_threshold"`
	MinDaysToExpiry   int      `mapstructure:"min_days_to_expiry"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GCPConfig struct {
	ProjectID       string              `mapstructure:"project_id"`
	UseSecrets      bool                `mapstructure:"use_secrets"`
	CredentialsFile string              `mapstructure:"credentials_file"`
	SecretNames     secrets.SecretNames `mapstructure:"secret_names"`
}

// Params maps the scan section onto scanner parameters.
func (c ScanConfig) Params() scanner.Params {
	return scanner.Params{
		Symbol:          c.Symbol,
		MinVolume:       c.MinVolume,
		MoneyRangePct:   c.MoneyRangePct,
		ExpiryFilter:    c.ExpiryFilter,
		MinDaysToExpiry: c.MinDaysToExpiry,
		ATMTolerancePct: c.ATMTolerancePct,
		RiskFreeRate:    c.RiskFreeRate,
		TopN:            c.TopN,
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/leapscan")
	}

	v.SetEnvPrefix("LEAPSCAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&config)

	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	if err := config.Scan.Params().Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("provider.timeout_seconds", 30)
	v.SetDefault("provider.requests_per_sec", 4)

	// Scan defaults: 2028 January LEAPS with a wide band to reach deep ITM
	v.SetDefault("scan.symbol", "SPY")
	v.SetDefault("scan.min_volume", 5)
	v.SetDefault("scan.money_range_pct", 0.50)
	v.SetDefault("scan.expiry_filter", "2028-01")
	v.SetDefault("scan.atm_tolerance_pct", 0.005)
	v.SetDefault("scan.risk_free_rate", 0.045)
	v.SetDefault("scan.top_n", 10)

	// Monitor defaults
	v.SetDefault("monitor.tickers", []string{"SPY", "QQQ", "SOXX", "NVDA", "AAPL"})
	v.SetDefault("monitor.interval_seconds", 60)
	v.SetDefault("monitor.discount_threshold", 15.0)
	v.SetDefault("monitor.min_days_to_expiry", 365)

	// Server defaults
	v.SetDefault("server.port", 8080)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// GCP defaults
	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")

	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.market_data_api_key", secretNames.MarketDataAPIKey)
}

func overrideFromEnv(config *Config) {
	if apiKey := os.Getenv("MARKETDATA_API_KEY"); apiKey != "" {
		config.Provider.APIKey = apiKey
	}
	if baseURL := os.Getenv("MARKETDATA_BASE_URL"); baseURL != "" {
		config.Provider.BaseURL = baseURL
	}

	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, config.GCP.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets that aren't already set
	if config.Provider.APIKey == "" {
		config.Provider.APIKey = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.MarketDataAPIKey, "")
	}

	return nil
}
