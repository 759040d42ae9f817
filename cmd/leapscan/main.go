package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantscan/leapscan/api"
	"github.com/quantscan/leapscan/internal/config"
	"github.com/quantscan/leapscan/pkg/marketdata"
	"github.com/quantscan/leapscan/pkg/report"
	"github.com/quantscan/leapscan/pkg/scanner"
)

var (
	cfgFile string
	symbol  string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leapscan",
		Short: "ITM LEAPS call scanner",
		Long: `Scans an options chain for in-the-money LEAPS calls, values each contract
with Black-Scholes at the averaged at-the-money implied volatility, and
reports the cheapest contracts and the largest discounts to model value`,
		RunE:          runScan,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.Flags().StringVar(&symbol, "symbol", "", "underlying symbol (overrides config)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scans over an HTTP API",
		RunE:  runServe,
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Periodically rescan a ticker list and report bargains",
		RunE:  runMonitor,
	}

	rootCmd.AddCommand(serveCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup loads the environment, configuration and logger shared by every
// subcommand, and wires the provider client into a scanner.
func setup() (*config.Config, *scanner.Scanner, error) {
	if err := godotenv.Load(".env"); err == nil {
		logrus.Debug(".env loaded")
	}

	logger = logrus.New()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	client := marketdata.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
		cfg.Provider.RequestsPerSec,
		logger,
	)

	return cfg, scanner.New(client, logger), nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, sc, err := setup()
	if err != nil {
		return err
	}

	params := cfg.Scan.Params()
	if symbol != "" {
		params.Symbol = symbol
	}

	logger.WithFields(logrus.Fields{
		"symbol":        params.Symbol,
		"min_volume":    params.MinVolume,
		"money_range":   params.MoneyRangePct,
		"expiry_filter": params.ExpiryFilter,
	}).Info("Starting scan")

	result, err := sc.Scan(cmd.Context(), params)
	if err != nil {
		logger.WithError(err).Error("Scan failed")
		return err
	}

	report.WriteScan(os.Stdout, result)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, sc, err := setup()
	if err != nil {
		return err
	}

	server := api.NewServer(sc, cfg.Scan.Params(), logger, fmt.Sprintf("%d", cfg.Server.Port))
	return server.Start()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, sc, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	interval := time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
	logger.WithFields(logrus.Fields{
		"tickers":   cfg.Monitor.Tickers,
		"interval":  interval,
		"threshold": cfg.Monitor.DiscountThreshold,
	}).Info("Monitor started. Press Ctrl+C to stop.")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	monitorPass(ctx, sc, cfg)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Monitor stopped")
			return nil
		case <-ticker.C:
			monitorPass(ctx, sc, cfg)
		}
	}
}

// monitorPass scans every ticker once, sequentially, and prints either the
// bargains above the alert threshold or the best five across the board.
func monitorPass(ctx context.Context, sc *scanner.Scanner, cfg *config.Config) {
	var all []report.Bargain

	for _, ticker := range cfg.Monitor.Tickers {
		params := cfg.Scan.Params()
		params.Symbol = ticker
		params.MinVolume = 0
		params.ExpiryFilter = ""
		params.MinDaysToExpiry = cfg.Monitor.MinDaysToExpiry

		result, err := sc.Scan(ctx, params)
		if err != nil {
			logger.WithError(err).WithField("symbol", ticker).Error("Scan failed")
			continue
		}
		for _, row := range result.ByDiscount {
			all = append(all, report.Bargain{Symbol: ticker, RankedOption: row})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].DiscountPct > all[j].DiscountPct
	})

	var alerts []report.Bargain
	for _, b := range all {
		if b.DiscountPct > cfg.Monitor.DiscountThreshold {
			alerts = append(alerts, b)
		}
	}

	switch {
	case len(alerts) > 0:
		fmt.Printf("\nFound %d bargains above %.1f%% discount:\n", len(alerts), cfg.Monitor.DiscountThreshold)
		report.WriteBargains(os.Stdout, alerts)
	case len(all) > 0:
		if len(all) > 5 {
			all = all[:5]
		}
		fmt.Printf("\nNo alerts above %.1f%%. Best bargains across the board:\n", cfg.Monitor.DiscountThreshold)
		report.WriteBargains(os.Stdout, all)
	default:
		fmt.Println("\nNo bargains found across any ticker.")
	}
}
