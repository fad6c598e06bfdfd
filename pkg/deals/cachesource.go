package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/cache"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
)

// CachedSource decorates a FlightPriceSource with a short-TTL response
// cache so that repeated searches for the same route/date/cabin within a
// narrow window (e.g. several strategies probing the same alternate
// airport) don't all hit the upstream provider.
type CachedSource struct {
	source FlightPriceSource
	cache  *cache.CacheManager
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedSource wraps source with cm, caching responses for ttl.
func NewCachedSource(source FlightPriceSource, cm *cache.CacheManager, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{source: source, cache: cm, ttl: ttl, log: log}
}

func searchCacheKey(origin, destination string, departure time.Time, ret *time.Time, cabin CabinClass) string {
	retKey := "oneway"
	if ret != nil {
		retKey = ret.Format("2006-01-02")
	}
	return fmt.Sprintf("deals:search:%s:%s:%s:%s:%s", origin, destination, departure.Format("2006-01-02"), retKey, cabin)
}

// Search implements FlightPriceSource, consulting the cache before
// falling through to the wrapped source.
func (c *CachedSource) Search(ctx context.Context, origin, destination string, departure time.Time, ret *time.Time, cabin CabinClass) ([]Itinerary, error) {
	key := searchCacheKey(origin, destination, departure, ret, cabin)

	var cached []Itinerary
	if err := c.cache.GetJSON(ctx, key, &cached); err == nil {
		if c.log != nil {
			c.log.Debug("deal search cache hit", "key", key)
		}
		return cached, nil
	} else if err != cache.ErrCacheMiss && c.log != nil {
		c.log.Warn("deal search cache read error", "key", key, "error", err.Error())
	}

	itins, err := c.source.Search(ctx, origin, destination, departure, ret, cabin)
	if err != nil {
		return nil, err
	}

	if setErr := c.cache.SetJSON(ctx, key, itins, c.ttl); setErr != nil && c.log != nil {
		c.log.Warn("deal search cache write error", "key", key, "error", setErr.Error())
	}
	return itins, nil
}
