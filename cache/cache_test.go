package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
)

func f64(v float64) *float64 { return &v }

type countingCurrentSource struct {
	calls  int
	result models.CurrentResult
}

func (c *countingCurrentSource) FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	c.calls++
	return c.result, nil
}

func (c *countingCurrentSource) Name() string { return "counting" }

type countingForecastSource struct {
	calls int
	days  []models.ForecastDay
}

func (c *countingForecastSource) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	c.calls++
	return c.days, nil
}

func (c *countingForecastSource) Name() string { return "counting" }

func TestCachedCurrentSourceHit(t *testing.T) {
	src := &countingCurrentSource{result: models.CurrentResult{
		Data:     models.CurrentWeather{Temperature: f64(12.5)},
		CacheAge: "just now",
	}}
	cached := NewCachedCurrentSource(src, time.Minute)

	first, err := cached.FetchCurrent(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.False(t, first.Cached, "first fetch is fresh")
	assert.Equal(t, 1, src.calls)

	second, err := cached.FetchCurrent(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second fetch is served from cache")
	assert.True(t, second.Cached, "cache hits announce themselves")
	assert.Equal(t, "just now", second.CacheAge)
	require.NotNil(t, second.Data.Temperature)
	assert.InDelta(t, 12.5, *second.Data.Temperature, 1e-9)

	hits, misses := cached.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestCachedCurrentSourceKeysByCoordinates(t *testing.T) {
	src := &countingCurrentSource{}
	cached := NewCachedCurrentSource(src, time.Minute)

	_, err := cached.FetchCurrent(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	_, err = cached.FetchCurrent(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "different coordinates do not share a slot")

	// Sub-bucket jitter maps to the same slot.
	_, err = cached.FetchCurrent(context.Background(), 51.50741, -0.12781)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedCurrentSourceExpiry(t *testing.T) {
	src := &countingCurrentSource{}
	cached := NewCachedCurrentSource(src, 10*time.Millisecond)

	_, err := cached.FetchCurrent(context.Background(), 51.5, 0)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = cached.FetchCurrent(context.Background(), 51.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entries are refetched")
}

func TestCachedForecastSourceKeysByDays(t *testing.T) {
	src := &countingForecastSource{days: []models.ForecastDay{{Date: "2024-06-01"}}}
	cached := NewCachedForecastSource(src, time.Minute)

	_, err := cached.FetchForecast(context.Background(), 51.5, 0, 3)
	require.NoError(t, err)
	_, err = cached.FetchForecast(context.Background(), 51.5, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	_, err = cached.FetchForecast(context.Background(), 51.5, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "a different day count is a different entry")
}

func TestHumanizeAge(t *testing.T) {
	assert.Equal(t, "just now", humanizeAge(5*time.Second))
	assert.Equal(t, "1 minute ago", humanizeAge(90*time.Second))
	assert.Equal(t, "5 minutes ago", humanizeAge(5*time.Minute))
	assert.Equal(t, "1 hour ago", humanizeAge(time.Hour))
	assert.Equal(t, "3 hours ago", humanizeAge(3*time.Hour+20*time.Minute))
}
