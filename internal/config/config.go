// Package config provides configuration management for the stratlab engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Gateway  GatewayConfig  `mapstructure:"gateway" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. It is only
// required when results are persisted to PostgreSQL.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// GatewayConfig represents the market data gateway configuration
type GatewayConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	Token              string  `mapstructure:"token"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryMax           int     `mapstructure:"retry_max" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// BacktestConfig represents one back-test invocation: the interval, the
// shared balance settings and the configurations to simulate.
type BacktestConfig struct {
	StartDate string      `mapstructure:"start_date" validate:"required,dateonly"`
	EndDate   string      `mapstructure:"end_date" validate:"required,dateonly"`
	PoolSize  int         `mapstructure:"pool_size" validate:"required,gt=1"`
	Persist   bool        `mapstructure:"persist"`
	ReportDir string      `mapstructure:"report_dir"`
	Balance   BalanceSpec `mapstructure:"balance" validate:"required"`
	Bots      []BotSpec   `mapstructure:"bots" validate:"required,min=1,dive"`
}

// BalanceSpec represents the cash seeded into every simulated account
type BalanceSpec struct {
	Currency       string  `mapstructure:"currency" validate:"required"`
	InitialBalance float64 `mapstructure:"initial_balance" validate:"required,gt=0"`
	Increment      float64 `mapstructure:"increment" validate:"gte=0"`
	Schedule       string  `mapstructure:"schedule" validate:"omitempty,cronexpr"`
}

// BotSpec represents one strategy configuration to back-test
type BotSpec struct {
	AccountID      string         `mapstructure:"account_id" validate:"required"`
	Figi           string         `mapstructure:"figi" validate:"required"`
	Granularity    string         `mapstructure:"granularity" validate:"required,granularity"`
	CommissionRate float64        `mapstructure:"commission_rate" validate:"gte=0,lte=0.1"`
	Strategy       string         `mapstructure:"strategy" validate:"required"`
	Params         map[string]any `mapstructure:"params"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GatewayTimeout returns the gateway request timeout as a duration
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// BacktestInterval parses the configured start and end dates
func (c *Config) BacktestInterval() (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, c.Backtest.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid backtest start_date: %w", err)
	}
	to, err := time.Parse(time.DateOnly, c.Backtest.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid backtest end_date: %w", err)
	}
	return from, to, nil
}
