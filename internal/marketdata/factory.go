package marketdata

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/signal-trader/internal/config"
)

// NewSource creates a BarSource from the market data configuration,
// wrapping HTTP providers with the TTL cache.
func NewSource(cfg config.MarketDataConfig, logger *log.Logger) (BarSource, error) {
	switch cfg.Provider {
	case "yahoo":
		httpCfg := DefaultHTTPClientConfig()
		if cfg.TimeoutSeconds > 0 {
			httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.RetryAttempts > 0 {
			httpCfg.MaxRetries = cfg.RetryAttempts
		}
		if cfg.RateLimitPerSecond > 0 {
			httpCfg.RateLimit = cfg.RateLimitPerSecond
		}

		httpClient := NewRateLimitedHTTPClient(httpCfg, logger)
		client := NewYahooClient(httpClient, cfg.BaseURL, true, logger)

		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		return NewCachingSource(client, ttl), nil

	case "csv":
		if cfg.CSVDirectory == "" {
			return nil, fmt.Errorf("csv provider requires csv_directory")
		}
		return NewCSVSource(cfg.CSVDirectory), nil

	default:
		return nil, fmt.Errorf("unknown market data provider: %s", cfg.Provider)
	}
}
