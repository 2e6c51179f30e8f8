package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stratlab/internal/metrics"
	"github.com/yourusername/stratlab/internal/models"
)

const clientSource = "exchange_gateway"

// Client implements Provider against the exchange gateway REST API.
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	token      string
	logger     *logrus.Logger
}

// gatewayInstrument is an instrument record from the gateway API.
type gatewayInstrument struct {
	Figi     string `json:"figi"`
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
	Lot      int64  `json:"lot"`
}

// gatewayCandle is a candle record from the gateway API. Prices arrive as
// strings and are parsed into exact decimals.
type gatewayCandle struct {
	Open     string    `json:"o"`
	High     string    `json:"h"`
	Low      string    `json:"l"`
	Close    string    `json:"c"`
	Time     time.Time `json:"time"`
	Complete bool      `json:"complete"`
}

// gatewayTradingDay is one schedule entry from the gateway API.
type gatewayTradingDay struct {
	Date         time.Time `json:"date"`
	IsTradingDay bool      `json:"is_trading_day"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// NewClient creates a new exchange gateway client.
func NewClient(httpClient *RateLimitedHTTPClient, baseURL, token string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
}

// GetInstrument retrieves instrument reference data by figi.
func (c *Client) GetInstrument(ctx context.Context, figi string) (models.Instrument, error) {
	var raw gatewayInstrument
	endpoint := fmt.Sprintf("%s/instruments/%s", c.baseURL, url.PathEscape(figi))
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return models.Instrument{}, err
	}
	if raw.Figi == "" {
		return models.Instrument{}, NewProviderError(clientSource, ErrCodeNotFound, fmt.Sprintf("instrument %s", figi), models.ErrInstrumentNotFound)
	}
	return models.Instrument{Figi: raw.Figi, Ticker: raw.Ticker, Currency: raw.Currency, Lot: raw.Lot}, nil
}

// GetCandles retrieves candles ordered by time for [from, to).
func (c *Client) GetCandles(ctx context.Context, figi string, from, to time.Time, interval models.CandleInterval) ([]models.Candle, error) {
	endpoint := fmt.Sprintf("%s/candles?figi=%s&from=%s&to=%s&interval=%s",
		c.baseURL,
		url.QueryEscape(figi),
		url.QueryEscape(from.Format(time.RFC3339)),
		url.QueryEscape(to.Format(time.RFC3339)),
		url.QueryEscape(string(interval)),
	)

	var raw []gatewayCandle
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, rc := range raw {
		candle, err := parseCandle(rc)
		if err != nil {
			return nil, NewProviderError(clientSource, ErrCodeInvalidData, "failed to parse candle", err)
		}
		if rc.Time.Before(from) || !rc.Time.Before(to) {
			continue
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// GetTradingSchedule retrieves the venue trading schedule for the interval.
func (c *Client) GetTradingSchedule(ctx context.Context, figi string, from, to time.Time) ([]models.TradingDay, error) {
	endpoint := fmt.Sprintf("%s/schedules?figi=%s&from=%s&to=%s",
		c.baseURL,
		url.QueryEscape(figi),
		url.QueryEscape(from.Format(time.RFC3339)),
		url.QueryEscape(to.Format(time.RFC3339)),
	)

	var raw []gatewayTradingDay
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	days := make([]models.TradingDay, 0, len(raw))
	for _, rd := range raw {
		days = append(days, models.TradingDay{
			Date:         rd.Date,
			IsTradingDay: rd.IsTradingDay,
			StartTime:    rd.StartTime,
			EndTime:      rd.EndTime,
		})
	}
	return days, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	start := time.Now()
	err := c.fetchJSON(ctx, endpoint, out)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordGatewayRequest(status, time.Since(start).Seconds())
	return err
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewProviderError(clientSource, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewProviderError(clientSource, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewProviderError(clientSource, ErrCodeAuthenticationFailed, "invalid API token", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewProviderError(clientSource, ErrCodeNotFound, endpoint, models.ErrInstrumentNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(clientSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewProviderError(clientSource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(clientSource, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

func parseCandle(raw gatewayCandle) (models.Candle, error) {
	open, err := decimal.NewFromString(raw.Open)
	if err != nil {
		return models.Candle{}, fmt.Errorf("invalid open %q: %w", raw.Open, err)
	}
	high, err := decimal.NewFromString(raw.High)
	if err != nil {
		return models.Candle{}, fmt.Errorf("invalid high %q: %w", raw.High, err)
	}
	low, err := decimal.NewFromString(raw.Low)
	if err != nil {
		return models.Candle{}, fmt.Errorf("invalid low %q: %w", raw.Low, err)
	}
	closePrice, err := decimal.NewFromString(raw.Close)
	if err != nil {
		return models.Candle{}, fmt.Errorf("invalid close %q: %w", raw.Close, err)
	}
	return models.Candle{
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Time:     raw.Time,
		Complete: raw.Complete,
	}, nil
}
