package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stratlab/internal/metrics"
	"github.com/yourusername/stratlab/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.MaxRetries = 0
	httpCfg.RateLimit = 1000
	httpClient := NewRateLimitedHTTPClient(httpCfg, nil)
	client := NewClient(httpClient, server.URL, "test-token", nil)
	return client, func() {
		server.Close()
		_ = httpClient.Close()
	}
}

func TestClientGetInstrument(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instruments/BBG000000001", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"figi":"BBG000000001","ticker":"TEST","currency":"RUB","lot":10}`)
	})
	defer teardown()

	instrument, err := client.GetInstrument(context.Background(), "BBG000000001")
	require.NoError(t, err)
	assert.Equal(t, "TEST", instrument.Ticker)
	assert.Equal(t, int64(10), instrument.Lot)
}

func TestClientGetInstrumentNotFound(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer teardown()

	_, err := client.GetInstrument(context.Background(), "BBG_GHOST")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInstrumentNotFound)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeNotFound, providerErr.Code)
}

func TestClientGetInstrumentUnauthorized(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer teardown()

	_, err := client.GetInstrument(context.Background(), "BBG000000001")
	require.Error(t, err)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeAuthenticationFailed, providerErr.Code)
}

func TestClientGetCandles(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/candles", r.URL.Path)
		assert.Equal(t, "BBG000000001", r.URL.Query().Get("figi"))
		assert.Equal(t, "1min", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `[
			{"o":"100","h":"101","l":"99.5","c":"100.5","time":"2024-01-10T10:00:00Z","complete":true},
			{"o":"100.5","h":"102","l":"100","c":"101.75","time":"2024-01-10T10:01:00Z","complete":true}
		]`)
	})
	defer teardown()

	from := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	candles, err := client.GetCandles(context.Background(), "BBG000000001", from, from.Add(5*time.Minute), models.Interval1Min)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.True(t, candles[0].Close.Equal(decimal.NewFromFloat(100.5)))
	assert.True(t, candles[1].Close.Equal(decimal.NewFromFloat(101.75)))
	assert.True(t, candles[1].Complete)
}

func TestClientGetCandlesClipsWindow(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The gateway over-delivers; the client keeps only [from, to).
		fmt.Fprint(w, `[
			{"o":"99","h":"99","l":"99","c":"99","time":"2024-01-10T09:59:00Z","complete":true},
			{"o":"100","h":"100","l":"100","c":"100","time":"2024-01-10T10:00:00Z","complete":true},
			{"o":"101","h":"101","l":"101","c":"101","time":"2024-01-10T10:05:00Z","complete":true}
		]`)
	})
	defer teardown()

	from := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	candles, err := client.GetCandles(context.Background(), "BBG000000001", from, from.Add(5*time.Minute), models.Interval1Min)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.True(t, candles[0].Close.Equal(decimal.NewFromInt(100)))
}

func TestClientGetCandlesInvalidPrice(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"o":"oops","h":"1","l":"1","c":"1","time":"2024-01-10T10:00:00Z","complete":true}]`)
	})
	defer teardown()

	from := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	_, err := client.GetCandles(context.Background(), "BBG000000001", from, from.Add(time.Minute), models.Interval1Min)
	require.Error(t, err)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeInvalidData, providerErr.Code)
}

func TestClientGetTradingSchedule(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedules", r.URL.Path)
		fmt.Fprint(w, `[
			{"date":"2024-01-10T00:00:00Z","is_trading_day":true,"start_time":"2024-01-10T07:00:00Z","end_time":"2024-01-10T15:40:00Z"},
			{"date":"2024-01-11T00:00:00Z","is_trading_day":false,"start_time":"0001-01-01T00:00:00Z","end_time":"0001-01-01T00:00:00Z"}
		]`)
	})
	defer teardown()

	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	days, err := client.GetTradingSchedule(context.Background(), "BBG000000001", from, from.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, days[0].IsTradingDay)
	assert.False(t, days[1].IsTradingDay)
}

func TestClientRecordsGatewayMetrics(t *testing.T) {
	successBefore := testutil.ToFloat64(metrics.GatewayRequestsTotal.WithLabelValues("success"))
	errorBefore := testutil.ToFloat64(metrics.GatewayRequestsTotal.WithLabelValues("error"))

	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"figi":"BBG000000001","ticker":"TEST","currency":"RUB","lot":1}`)
	})
	_, err := client.GetInstrument(context.Background(), "BBG000000001")
	require.NoError(t, err)
	teardown()

	client, teardown = testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err = client.GetInstrument(context.Background(), "BBG_GHOST")
	require.Error(t, err)
	teardown()

	assert.Equal(t, successBefore+1, testutil.ToFloat64(metrics.GatewayRequestsTotal.WithLabelValues("success")))
	assert.Equal(t, errorBefore+1, testutil.ToFloat64(metrics.GatewayRequestsTotal.WithLabelValues("error")))
}

func TestClientServerError(t *testing.T) {
	client, teardown := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})
	defer teardown()

	_, err := client.GetInstrument(context.Background(), "BBG000000001")
	require.Error(t, err)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeServerError, providerErr.Code)
}
