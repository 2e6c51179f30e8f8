package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stratlab/internal/backtest"
	"github.com/yourusername/stratlab/internal/config"
	"github.com/yourusername/stratlab/internal/database"
	"github.com/yourusername/stratlab/internal/logger"
	"github.com/yourusername/stratlab/internal/marketdata"
	"github.com/yourusername/stratlab/internal/metrics"
	"github.com/yourusername/stratlab/internal/models"
	"github.com/yourusername/stratlab/internal/report"
	"github.com/yourusername/stratlab/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	startDate  string
	endDate    string
	persist    bool
	appLogger  *logrus.Logger
	cfg        *config.Config
	db         *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&startDate, "start", "", "Override back-test start date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&endDate, "end", "", "Override back-test end date (YYYY-MM-DD)")
	rootCmd.Flags().BoolVar(&persist, "persist", false, "Persist results even if the config disables it")
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run trading strategies against historical market data",
	Long:  `Simulates every configured strategy over the requested interval and reports the outcomes ranked by final portfolio value.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backtest %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if startDate != "" {
		cfg.Backtest.StartDate = startDate
	}
	if endDate != "" {
		cfg.Backtest.EndDate = endDate
	}
	if persist {
		cfg.Backtest.Persist = true
	}

	if region, secret := os.Getenv("STRATLAB_AWS_REGION"), os.Getenv("STRATLAB_AWS_SECRET_NAME"); region != "" && secret != "" {
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secret); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLogger = logger.NewLogger(cfg.App.LogLevel)

	if cfg.Backtest.Persist && cfg.Database.Host != "" {
		var err error
		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	return nil
}

func runBacktest() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Warn("Shutdown signal received, cancelling run")
		cancel()
	}()

	if cfg.Metrics.Enabled {
		go serveMetrics()
	}

	provider, closeProvider := buildProvider()
	defer closeProvider()

	writer, err := buildWriter()
	if err != nil {
		return err
	}

	orchestrator, err := backtest.NewOrchestrator(provider, writer, cfg.Backtest.PoolSize, appLogger)
	if err != nil {
		return err
	}

	from, to, err := cfg.BacktestInterval()
	if err != nil {
		return err
	}

	results, err := orchestrator.RunBackTest(ctx,
		botConfigs(),
		balanceConfig(),
		backtest.Interval{From: from, To: to},
		cfg.Backtest.Persist,
	)
	if err != nil {
		return err
	}

	console := report.NewConsoleWriter(os.Stdout)
	if err := console.WriteBackTestResults(ctx, results); err != nil {
		return err
	}

	if db != nil {
		db.Close()
	}
	return nil
}

func buildProvider() (marketdata.Provider, func()) {
	httpCfg := marketdata.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.GatewayTimeout()
	httpCfg.MaxRetries = cfg.Gateway.RetryMax
	httpCfg.RateLimit = cfg.Gateway.RateLimitPerSecond
	httpCfg.RateBurst = cfg.Gateway.RateLimitBurst

	httpClient := marketdata.NewRateLimitedHTTPClient(httpCfg, appLogger)
	client := marketdata.NewClient(httpClient, cfg.Gateway.BaseURL, cfg.Gateway.Token, appLogger)

	var provider marketdata.Provider = client
	if cfg.Gateway.CacheTTLSeconds > 0 {
		provider = marketdata.NewCachedProvider(client, time.Duration(cfg.Gateway.CacheTTLSeconds)*time.Second)
	}
	return provider, func() { _ = httpClient.Close() }
}

func buildWriter() (backtest.ResultWriter, error) {
	var writers []backtest.ResultWriter
	if cfg.Backtest.ReportDir != "" {
		csvWriter, err := report.NewCSVWriter(cfg.Backtest.ReportDir, appLogger)
		if err != nil {
			return nil, err
		}
		writers = append(writers, csvWriter)
	}
	if db != nil {
		repo := repository.NewPostgresResultRepository(db)
		writers = append(writers, report.NewPostgresWriter(repo, appLogger))
	}
	if len(writers) == 0 {
		return nil, nil
	}
	return report.NewMultiWriter(writers...), nil
}

func botConfigs() []backtest.BotConfig {
	configs := make([]backtest.BotConfig, 0, len(cfg.Backtest.Bots))
	for _, spec := range cfg.Backtest.Bots {
		configs = append(configs, backtest.BotConfig{
			AccountID:      spec.AccountID,
			Figi:           spec.Figi,
			Granularity:    models.CandleInterval(spec.Granularity),
			CommissionRate: decimal.NewFromFloat(spec.CommissionRate),
			StrategyType:   spec.Strategy,
			StrategyParams: spec.Params,
		})
	}
	return configs
}

func balanceConfig() backtest.BalanceConfig {
	return backtest.BalanceConfig{
		Currency:       cfg.Backtest.Balance.Currency,
		InitialBalance: decimal.NewFromFloat(cfg.Backtest.Balance.InitialBalance),
		Increment:      decimal.NewFromFloat(cfg.Backtest.Balance.Increment),
		Schedule:       cfg.Backtest.Balance.Schedule,
	}
}

func serveMetrics() {
	metrics.InitRegistry()
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	appLogger.WithField("addr", addr).Info("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		appLogger.WithError(err).Warn("Metrics server stopped")
	}
}
