// Package metrics provides the centralized Prometheus metrics registry for
// the back-testing engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratlab",
		Name:      "backtest_runs_total",
		Help:      "Total number of back-test configuration runs by status",
	}, []string{"status"})
	StrategyDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratlab",
		Name:      "strategy_decisions_total",
		Help:      "Total number of strategy decisions by strategy and action",
	}, []string{"strategy", "action"})
	SimulatedTradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratlab",
		Name:      "simulated_trades_total",
		Help:      "Total number of simulated trades by direction",
	}, []string{"direction"})
	GatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratlab",
		Name:      "gateway_requests_total",
		Help:      "Total number of market data gateway requests by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	ActiveBacktests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stratlab",
		Name:      "active_backtests",
		Help:      "Number of configurations currently being simulated",
	})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stratlab",
		Name:      "backtest_duration_seconds",
		Help:      "Wall-clock duration of single configuration runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	GatewayRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stratlab",
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of market data gateway requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(StrategyDecisionsTotal)
		registry.MustRegister(SimulatedTradesTotal)
		registry.MustRegister(GatewayRequestsTotal)

		registry.MustRegister(ActiveBacktests)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(GatewayRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBacktestRun records a finished configuration run.
// status should be one of: "success", "failure"
func RecordBacktestRun(status string) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
}

// RecordBacktestDuration records the wall-clock duration of one run.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}

// RecordStrategyDecision records a strategy decision event.
func RecordStrategyDecision(strategy, action string) {
	StrategyDecisionsTotal.WithLabelValues(strategy, action).Inc()
}

// RecordSimulatedTrade records an executed simulated trade.
func RecordSimulatedTrade(direction string) {
	SimulatedTradesTotal.WithLabelValues(direction).Inc()
}

// RecordGatewayRequest records a market data gateway request outcome.
func RecordGatewayRequest(status string, durationSeconds float64) {
	GatewayRequestsTotal.WithLabelValues(status).Inc()
	GatewayRequestDuration.Observe(durationSeconds)
}
