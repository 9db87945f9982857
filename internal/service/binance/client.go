package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"CandlePull/internal/domain/models"
	"CandlePull/internal/service/ratelimit"
	xhttp "CandlePull/pkg/http"
	"CandlePull/pkg/logger"
)

const (
	klinePath     = "/api/v3/klines"
	klineInterval = "1m"
	maxPageLimit  = 1000
)

// Kline array positions as documented by the exchange.
const (
	idxOpenTime = iota
	idxOpen
	idxHigh
	idxLow
	idxClose
	idxVolume
	idxCloseTime
	idxQuoteAssetVolume
	idxNumTrades
	idxTakerBuyBase
	idxTakerBuyQuote
)

// minKlineArity is the number of positions we decode from each element.
const minKlineArity = idxTakerBuyQuote + 1

// Client fetches minute klines from the Binance REST API. It implements
// repository.KlineSource.
type Client struct {
	http    *xhttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	rate    float64
	burst   float64
	l       *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit sets the request budget toward the exchange.
func WithRateLimit(perSec, burst float64) Option {
	return func(c *Client) {
		c.rate = perSec
		c.burst = burst
	}
}

// WithRequestTimeout sets the per-request HTTP timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
}

// NewClient creates a Binance kline client.
func NewClient(l *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		baseURL: "https://api.binance.com",
		limiter: ratelimit.New(),
		rate:    10,
		burst:   20,
		l:       l,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchKlines returns the last `minutes` 1-minute candles for symbol, oldest
// first. Windows wider than one API page are fetched in successive pages
// keyed by start time.
func (c *Client) FetchKlines(ctx context.Context, symbol string, minutes int) ([]models.Candle, error) {
	if minutes < 1 {
		minutes = 1
	}

	if minutes <= maxPageLimit {
		return c.fetchPage(ctx, symbol, nil, minutes)
	}

	start := time.Now().Add(-time.Duration(minutes) * time.Minute).Truncate(time.Minute)
	out := make([]models.Candle, 0, minutes)
	for {
		batch, err := c.fetchPage(ctx, symbol, &start, maxPageLimit)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		out = append(out, batch...)
		c.l.Debug("kline page fetched",
			logger.String("symbol", symbol),
			logger.Int("rows", len(batch)),
			logger.Int("total", len(out)),
		)
		if len(batch) < maxPageLimit {
			break
		}
		start = batch[len(batch)-1].OpenTime.Add(time.Minute)
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, symbol string, startTime *time.Time, limit int) ([]models.Candle, error) {
	if err := c.waitForToken(ctx); err != nil {
		return nil, err
	}

	params := map[string][]string{
		"symbol":   {symbol},
		"interval": {klineInterval},
		"limit":    {strconv.Itoa(limit)},
	}
	if startTime != nil {
		params["startTime"] = []string{strconv.FormatInt(startTime.UnixMilli(), 10)}
	}

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      http.MethodGet,
		URL:         c.baseURL + klinePath,
		QueryParams: params,
	})
	if err != nil {
		return nil, &models.UpstreamError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.UpstreamError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	return parseKlines(symbol, body)
}

// waitForToken blocks until the limiter grants a token or ctx expires.
func (c *Client) waitForToken(ctx context.Context) error {
	for !c.limiter.Allow("binance", c.burst, c.rate) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

func parseKlines(symbol string, body []byte) ([]models.Candle, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &models.MalformedKlineError{Index: -1, Reason: fmt.Sprintf("response is not a kline array: %v", err)}
	}

	candles := make([]models.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < minKlineArity {
			return nil, &models.MalformedKlineError{Index: i, Reason: fmt.Sprintf("expected %d fields, got %d", minKlineArity, len(row))}
		}

		openMs, err := parseMillis(row[idxOpenTime])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "open time: " + err.Error()}
		}
		closeMs, err := parseMillis(row[idxCloseTime])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "close time: " + err.Error()}
		}

		open, err := parsePrice(row[idxOpen])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "open: " + err.Error()}
		}
		high, err := parsePrice(row[idxHigh])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "high: " + err.Error()}
		}
		low, err := parsePrice(row[idxLow])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "low: " + err.Error()}
		}
		cls, err := parsePrice(row[idxClose])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "close: " + err.Error()}
		}
		vol, err := parsePrice(row[idxVolume])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "volume: " + err.Error()}
		}
		quoteVol, err := parsePrice(row[idxQuoteAssetVolume])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "quote volume: " + err.Error()}
		}
		trades, err := parseMillis(row[idxNumTrades])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "trade count: " + err.Error()}
		}
		takerBase, err := parsePrice(row[idxTakerBuyBase])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "taker base volume: " + err.Error()}
		}
		takerQuote, err := parsePrice(row[idxTakerBuyQuote])
		if err != nil {
			return nil, &models.MalformedKlineError{Index: i, Reason: "taker quote volume: " + err.Error()}
		}

		candles = append(candles, models.Candle{
			Symbol:              symbol,
			OpenTime:            time.UnixMilli(openMs),
			Open:                open,
			High:                high,
			Low:                 low,
			Close:               cls,
			BaseVolume:          vol,
			CloseTime:           time.UnixMilli(closeMs),
			QuoteAssetVolume:    quoteVol,
			NumTrades:           trades,
			TakerBuyBaseVolume:  takerBase,
			TakerBuyQuoteVolume: takerQuote,
		})
	}
	return candles, nil
}

// parseMillis decodes a JSON integer position (timestamps, trade counts).
func parseMillis(raw json.RawMessage) (int64, error) {
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("not an integer: %s", string(raw))
	}
	return v, nil
}

// parsePrice decodes a decimal the exchange serializes as a JSON string.
func parsePrice(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a string: %s", string(raw))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a decimal: %q", s)
	}
	return v, nil
}
