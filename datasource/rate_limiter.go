package datasource

import (
	"context"
	"fmt"

	"weather-dashboard/models"

	"golang.org/x/time/rate"
)

// RateLimitedGeocoder wraps a FullGeocoder with rate limiting. The public
// geocoding services enforce usage etiquette (Nominatim allows at most one
// request per second), so the limiter gates both directions.
type RateLimitedGeocoder struct {
	geocoder FullGeocoder
	limiter  *rate.Limiter
	name     string
}

// NewRateLimitedGeocoder creates a new rate limited geocoder
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedGeocoder(geocoder FullGeocoder, rps float64, burst int) *RateLimitedGeocoder {
	return &RateLimitedGeocoder{
		geocoder: geocoder,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [Rate Limited]", geocoder.Name()),
	}
}

// Search forwards a search, respecting rate limits.
func (r *RateLimitedGeocoder) Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.geocoder.Search(ctx, query, limit)
}

// Reverse forwards a reverse lookup, respecting rate limits.
func (r *RateLimitedGeocoder) Reverse(ctx context.Context, lat, lon float64) (models.GeocodeResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.GeocodeResult{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.geocoder.Reverse(ctx, lat, lon)
}

// Name returns the geocoder name
func (r *RateLimitedGeocoder) Name() string {
	return r.name
}

// RateLimitedProvider wraps a WeatherSource with separate limiters for the
// current-conditions and forecast calls.
type RateLimitedProvider struct {
	provider        WeatherSource
	currentLimiter  *rate.Limiter
	forecastLimiter *rate.Limiter
	name            string
}

// NewRateLimitedProvider creates a weather source that implements both
// interfaces with rate limiting. currentRPS and forecastRPS are the maximum
// requests per second for the two call kinds.
func NewRateLimitedProvider(provider WeatherSource, currentRPS, forecastRPS float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider:        provider,
		currentLimiter:  rate.NewLimiter(rate.Limit(currentRPS), burst),
		forecastLimiter: rate.NewLimiter(rate.Limit(forecastRPS), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// FetchCurrent implements CurrentSource with rate limiting.
func (r *RateLimitedProvider) FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	if err := r.currentLimiter.Wait(ctx); err != nil {
		return models.CurrentResult{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.FetchCurrent(ctx, lat, lon)
}

// FetchForecast implements ForecastSource with rate limiting.
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.FetchForecast(ctx, lat, lon, days)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

// Verify that our rate limited types implement the required interfaces
var (
	_ FullGeocoder   = (*RateLimitedGeocoder)(nil)
	_ CurrentSource  = (*RateLimitedProvider)(nil)
	_ ForecastSource = (*RateLimitedProvider)(nil)
)
