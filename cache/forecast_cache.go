package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

// CachedForecastSource wraps a ForecastSource and adds caching functionality.
type CachedForecastSource struct {
	source         datasource.ForecastSource
	cache          map[string]forecastEntry // key is lat,lon:days
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
}

// forecastEntry represents a cached forecast with its timestamp.
type forecastEntry struct {
	Days      []models.ForecastDay
	Timestamp time.Time
}

// NewCachedForecastSource creates a new cached wrapper around a forecast source.
func NewCachedForecastSource(source datasource.ForecastSource, cacheDuration time.Duration) *CachedForecastSource {
	return &CachedForecastSource{
		source:        source,
		cache:         make(map[string]forecastEntry),
		cacheDuration: cacheDuration,
	}
}

// Name returns the name of the underlying forecast source with [Cached] suffix.
func (c *CachedForecastSource) Name() string {
	return c.source.Name() + " [Cached]"
}

// FetchForecast fetches forecast data, using the cache when available.
func (c *CachedForecastSource) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	cacheKey := fmt.Sprintf("%s:%d", coordKey(lat, lon), days)

	c.mutex.RLock()
	entry, found := c.cache[cacheKey]
	c.mutex.RUnlock()

	if found && time.Since(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		slog.Debug("forecast cache hit", "key", cacheKey, "source", c.source.Name(),
			"age", time.Since(entry.Timestamp).Round(time.Second))
		return entry.Days, nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	forecast, err := c.source.FetchForecast(ctx, lat, lon, days)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.cache[cacheKey] = forecastEntry{
		Days:      forecast,
		Timestamp: time.Now(),
	}
	c.mutex.Unlock()

	return forecast, nil
}

// CacheStats returns statistics about cache hits and misses.
func (c *CachedForecastSource) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedForecastSource implements ForecastSource
var _ datasource.ForecastSource = (*CachedForecastSource)(nil)
