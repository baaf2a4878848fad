// Package cache wraps the weather sources with short-lived in-memory caching.
// Cached answers carry the advisory cache metadata so the views can say how
// stale a reading is.
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

// CachedCurrentSource wraps a CurrentSource and adds caching functionality.
type CachedCurrentSource struct {
	source         datasource.CurrentSource
	cache          map[string]currentEntry
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
}

// currentEntry represents a cached reading with its timestamp.
type currentEntry struct {
	Result    models.CurrentResult
	Timestamp time.Time
}

// NewCachedCurrentSource creates a new cached wrapper around a current
// conditions source.
func NewCachedCurrentSource(source datasource.CurrentSource, cacheDuration time.Duration) *CachedCurrentSource {
	return &CachedCurrentSource{
		source:        source,
		cache:         make(map[string]currentEntry),
		cacheDuration: cacheDuration,
	}
}

// Name returns the name of the underlying source with [Cached] suffix.
func (c *CachedCurrentSource) Name() string {
	return c.source.Name() + " [Cached]"
}

// coordKey buckets coordinates so nearby lookups share a cache slot.
func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// humanizeAge renders a cache entry's age for display.
func humanizeAge(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		m := int(age.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	default:
		h := int(age.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	}
}

// FetchCurrent fetches current conditions, using the cache when available.
// A cache hit is reported to the caller through the cached/cache_age fields.
func (c *CachedCurrentSource) FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	key := coordKey(lat, lon)

	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	if found && time.Since(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		age := time.Since(entry.Timestamp)
		slog.Debug("current conditions cache hit", "key", key, "source", c.source.Name(), "age", age.Round(time.Second))

		result := entry.Result
		result.Cached = true
		result.CacheAge = humanizeAge(age)
		return result, nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	result, err := c.source.FetchCurrent(ctx, lat, lon)
	if err != nil {
		return models.CurrentResult{}, err
	}

	c.mutex.Lock()
	c.cache[key] = currentEntry{
		Result:    result,
		Timestamp: time.Now(),
	}
	c.mutex.Unlock()

	return result, nil
}

// CacheStats returns statistics about cache hits and misses.
func (c *CachedCurrentSource) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedCurrentSource implements the CurrentSource interface
var _ datasource.CurrentSource = (*CachedCurrentSource)(nil)
