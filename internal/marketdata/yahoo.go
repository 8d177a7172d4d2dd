package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/signal-trader/internal/models"
)

const yahooProviderName = "yahoo"

// YahooClient implements BarSource against the Yahoo Finance chart API
type YahooClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     *log.Logger
}

// yahooChartResponse mirrors the chart API envelope
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger *log.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &YahooClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the provider name
func (c *YahooClient) Name() string {
	return yahooProviderName
}

// IsEnabled returns whether the provider is enabled
func (c *YahooClient) IsEnabled() bool {
	return c.enabled
}

// FetchBars retrieves daily bars for a symbol within the date range
func (c *YahooClient) FetchBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	if !c.enabled {
		return nil, NewProviderError(yahooProviderName, ErrCodeNetworkError, "provider is disabled", nil)
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.baseURL, symbol, startDate.Unix(), endDate.Unix())

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewProviderError(yahooProviderName, ErrCodeNetworkError, "failed to fetch bars", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewProviderError(yahooProviderName, ErrCodeAuthenticationFailed, "request rejected", nil)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(yahooProviderName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, NewProviderError(yahooProviderName, ErrCodeNotFound, fmt.Sprintf("symbol %s not found", symbol), nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(yahooProviderName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, NewProviderError(yahooProviderName, ErrCodeInvalidData, "failed to parse response", err)
	}
	if chart.Chart.Error != nil {
		return nil, NewProviderError(yahooProviderName, ErrCodeInvalidData, chart.Chart.Error.Description, nil)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, NewProviderError(yahooProviderName, ErrCodeNotFound, "no data in response", nil)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) {
			// Ragged payloads have been observed; never index past a short array.
			continue
		}
		if quote.Close[i] == nil || quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil {
			// Holidays and halts come through as null entries.
			continue
		}

		bar := models.Bar{
			Timestamp: time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}

		// Scale to split/dividend adjusted prices, rounding with decimal
		// so repeated fetches produce identical series.
		if i < len(adjClose) && adjClose[i] != nil && *quote.Close[i] != 0 {
			factor := decimal.NewFromFloat(*adjClose[i]).Div(decimal.NewFromFloat(*quote.Close[i]))
			bar.Open = roundPrice(decimal.NewFromFloat(bar.Open).Mul(factor))
			bar.High = roundPrice(decimal.NewFromFloat(bar.High).Mul(factor))
			bar.Low = roundPrice(decimal.NewFromFloat(bar.Low).Mul(factor))
			bar.Close = roundPrice(decimal.NewFromFloat(bar.Close).Mul(factor))
		}

		bars = append(bars, bar)
	}

	if err := models.ValidateBars(bars); err != nil {
		return nil, NewProviderError(yahooProviderName, ErrCodeInvalidData, "provider returned unusable series", err)
	}

	c.logger.Printf("Fetched %d bars for %s", len(bars), symbol)
	return bars, nil
}

func roundPrice(d decimal.Decimal) float64 {
	f, _ := d.Round(4).Float64()
	return f
}
