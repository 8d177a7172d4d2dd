package marketdata

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/signal-trader/internal/models"
)

// CachingSource wraps a BarSource with an in-memory TTL cache keyed by
// symbol and date range.
type CachingSource struct {
	source BarSource
	cache  *cache.Cache
	ttl    time.Duration
}

// NewCachingSource creates a caching wrapper around a provider
func NewCachingSource(source BarSource, ttl time.Duration) *CachingSource {
	return &CachingSource{
		source: source,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
	}
}

// Name returns the wrapped provider's name
func (c *CachingSource) Name() string {
	return c.source.Name()
}

// IsEnabled returns whether the wrapped provider is enabled
func (c *CachingSource) IsEnabled() bool {
	return c.source.IsEnabled()
}

// FetchBars returns cached bars when present, delegating to the provider
// on a miss.
func (c *CachingSource) FetchBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	key := cacheKey(symbol, startDate, endDate)
	if cached, found := c.cache.Get(key); found {
		if bars, ok := cached.([]models.Bar); ok {
			return bars, nil
		}
	}

	bars, err := c.source.FetchBars(ctx, symbol, startDate, endDate)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, bars, c.ttl)
	return bars, nil
}

// Flush clears all cached entries
func (c *CachingSource) Flush() {
	c.cache.Flush()
}

func cacheKey(symbol string, startDate, endDate time.Time) string {
	return fmt.Sprintf("%s:%s:%s", symbol, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
}
