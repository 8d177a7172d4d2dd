package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/signal-trader/internal/config"
	"github.com/yourusername/signal-trader/internal/models"
)

func testDate(day int) time.Time {
	return time.Date(2023, 6, day, 0, 0, 0, 0, time.UTC)
}

func testBars() []models.Bar {
	bars := make([]models.Bar, 5)
	price := 100.0
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: testDate(i + 1),
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price * 1.005,
			Volume:    1000000,
		}
		price = bars[i].Close
	}
	return bars
}

func TestCSVSource_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AAPL.csv")
	original := testBars()

	require.NoError(t, SaveBarsCSV(path, original))

	source := NewCSVSource(dir)
	loaded, err := source.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))

	require.NoError(t, err)
	require.Len(t, loaded, 5)
	for i, bar := range loaded {
		assert.True(t, bar.Timestamp.Equal(original[i].Timestamp))
		assert.InDelta(t, original[i].Close, bar.Close, 1e-4)
		assert.InDelta(t, original[i].Volume, bar.Volume, 1)
	}
}

func TestCSVSource_FiltersDateRange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveBarsCSV(filepath.Join(dir, "AAPL.csv"), testBars()))

	source := NewCSVSource(dir)
	loaded, err := source.FetchBars(context.Background(), "AAPL", testDate(2), testDate(4))

	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestCSVSource_MissingFileIsNotFound(t *testing.T) {
	source := NewCSVSource(t.TempDir())

	_, err := source.FetchBars(context.Background(), "MISSING", testDate(1), testDate(5))

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeNotFound, provErr.Code)
}

func TestCSVSource_EmptyRangeIsNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveBarsCSV(filepath.Join(dir, "AAPL.csv"), testBars()))

	source := NewCSVSource(dir)
	_, err := source.FetchBars(context.Background(), "AAPL", testDate(20), testDate(25))

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeNotFound, provErr.Code)
}

func TestLoadBarsCSV_RejectsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BAD.csv")
	content := "date,open,high,low,close,volume\n2023-06-01,abc,101,99,100,1000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadBarsCSV(path)

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeInvalidData, provErr.Code)
}

func TestLoadBarsCSV_RejectsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "EMPTY.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,open,high,low,close,volume\n"), 0o644))

	_, err := LoadBarsCSV(path)

	assert.Error(t, err)
}

// countingSource wraps a source counting upstream fetches.
type countingSource struct {
	bars    []models.Bar
	fetches int
	err     error
}

func (s *countingSource) FetchBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.bars, nil
}

func (s *countingSource) Name() string    { return "counting" }
func (s *countingSource) IsEnabled() bool { return true }

func TestCachingSource_ServesFromCache(t *testing.T) {
	upstream := &countingSource{bars: testBars()}
	cached := NewCachingSource(upstream, time.Minute)

	first, err := cached.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))
	require.NoError(t, err)
	second, err := cached.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.fetches)
}

func TestCachingSource_DistinctRangesMiss(t *testing.T) {
	upstream := &countingSource{bars: testBars()}
	cached := NewCachingSource(upstream, time.Minute)

	_, err := cached.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))
	require.NoError(t, err)
	_, err = cached.FetchBars(context.Background(), "AAPL", testDate(1), testDate(4))
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.fetches)
}

func TestCachingSource_ErrorsNotCached(t *testing.T) {
	upstream := &countingSource{err: errors.New("upstream down")}
	cached := NewCachingSource(upstream, time.Minute)

	_, err := cached.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))
	require.Error(t, err)
	_, err = cached.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))
	require.Error(t, err)

	assert.Equal(t, 2, upstream.fetches)
}

func yahooChartJSON(timestamps []int64, closes []float64) string {
	ts := ""
	quote := struct{ open, high, low, close, volume string }{}
	for i, t := range timestamps {
		sep := ""
		if i > 0 {
			sep = ","
		}
		ts += fmt.Sprintf("%s%d", sep, t)
		quote.open += fmt.Sprintf("%s%.2f", sep, closes[i]*0.995)
		quote.high += fmt.Sprintf("%s%.2f", sep, closes[i]*1.01)
		quote.low += fmt.Sprintf("%s%.2f", sep, closes[i]*0.99)
		quote.close += fmt.Sprintf("%s%.2f", sep, closes[i])
		quote.volume += fmt.Sprintf("%s%d", sep, 1000000)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}],"adjclose":[{"adjclose":[%s]}]}}],"error":null}}`,
		ts, quote.open, quote.high, quote.low, quote.close, quote.volume, quote.close)
}

func newTestYahooClient(serverURL string) *YahooClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.MaxRetries = 0
	httpCfg.RateLimit = 1000
	httpClient := NewRateLimitedHTTPClient(httpCfg, log.New(io.Discard, "", 0))
	return NewYahooClient(httpClient, serverURL, true, log.New(io.Discard, "", 0))
}

func TestYahooClient_FetchBars(t *testing.T) {
	start := testDate(1)
	timestamps := []int64{start.Unix(), start.AddDate(0, 0, 1).Unix(), start.AddDate(0, 0, 2).Unix()}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		fmt.Fprint(w, yahooChartJSON(timestamps, []float64{100, 101, 102}))
	}))
	defer server.Close()

	client := newTestYahooClient(server.URL)
	bars, err := client.FetchBars(context.Background(), "AAPL", start, start.AddDate(0, 0, 3))

	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.InDelta(t, 100.0, bars[0].Close, 1e-9)
	assert.InDelta(t, 102.0, bars[2].Close, 1e-9)
	assert.Equal(t, 1000000.0, bars[0].Volume)
}

func TestYahooClient_RaggedPayloadSkipsShortRows(t *testing.T) {
	start := testDate(1)
	timestamps := []int64{start.Unix(), start.AddDate(0, 0, 1).Unix(), start.AddDate(0, 0, 2).Unix()}
	// Sibling arrays shorter than the timestamp list: only the first row is
	// fully populated, and volume is missing entirely.
	payload := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d,%d,%d],"indicators":{"quote":[{"open":[99.5],"high":[101,102],"low":[99,100,101],"close":[100,101,102],"volume":[]}]}}],"error":null}}`,
		timestamps[0], timestamps[1], timestamps[2])
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	client := newTestYahooClient(server.URL)
	bars, err := client.FetchBars(context.Background(), "AAPL", start, start.AddDate(0, 0, 3))

	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.InDelta(t, 100.0, bars[0].Close, 1e-9)
	assert.Zero(t, bars[0].Volume)
}

func TestYahooClient_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestYahooClient(server.URL)
	_, err := client.FetchBars(context.Background(), "NOPE", testDate(1), testDate(5))

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeNotFound, provErr.Code)
}

func TestYahooClient_APIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer server.Close()

	client := newTestYahooClient(server.URL)
	_, err := client.FetchBars(context.Background(), "NOPE", testDate(1), testDate(5))

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeInvalidData, provErr.Code)
}

func TestYahooClient_DisabledProvider(t *testing.T) {
	client := NewYahooClient(nil, "", false, nil)

	_, err := client.FetchBars(context.Background(), "AAPL", testDate(1), testDate(5))

	assert.Error(t, err)
}

func TestNewSource_CSV(t *testing.T) {
	source, err := NewSource(config.MarketDataConfig{Provider: "csv", CSVDirectory: t.TempDir()}, log.New(io.Discard, "", 0))

	require.NoError(t, err)
	assert.Equal(t, "csv", source.Name())
}

func TestNewSource_CSVRequiresDirectory(t *testing.T) {
	_, err := NewSource(config.MarketDataConfig{Provider: "csv"}, log.New(io.Discard, "", 0))

	assert.Error(t, err)
}

func TestNewSource_Yahoo(t *testing.T) {
	source, err := NewSource(config.MarketDataConfig{Provider: "yahoo"}, log.New(io.Discard, "", 0))

	require.NoError(t, err)
	assert.Equal(t, "yahoo", source.Name())
}

func TestNewSource_UnknownProvider(t *testing.T) {
	_, err := NewSource(config.MarketDataConfig{Provider: "bloomberg"}, log.New(io.Discard, "", 0))

	assert.Error(t, err)
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewProviderError("yahoo", ErrCodeNetworkError, "fetch failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "yahoo")
	assert.Contains(t, err.Error(), "fetch failed")
}
