package datasource

import (
	"context"

	"weather-dashboard/models"
)

// CurrentSource is an interface for services that can fetch current weather
// conditions for a pair of coordinates.
type CurrentSource interface {
	// FetchCurrent fetches current conditions for the given coordinates.
	FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error)

	// Name returns the source's name
	Name() string
}

// ForecastSource is an interface for services that can fetch weather forecasts.
type ForecastSource interface {
	// FetchForecast fetches up to days of daily forecast for the coordinates.
	FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error)

	// Name returns the source's name
	Name() string
}

// Geocoder is an interface for services that resolve free-text place queries
// to coordinates.
type Geocoder interface {
	// Search returns ranked matches for a free-text query, at most limit.
	Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error)

	// Name returns the geocoder's name
	Name() string
}

// ReverseGeocoder is an interface for services that resolve coordinates back
// to place names. Not every geocoder supports it; the primary backend does not.
type ReverseGeocoder interface {
	// Reverse returns the best place match for the given coordinates.
	Reverse(ctx context.Context, lat, lon float64) (models.GeocodeResult, error)

	// Name returns the geocoder's name
	Name() string
}

// FullGeocoder combines forward and reverse geocoding.
type FullGeocoder interface {
	Geocoder
	ReverseGeocoder
}

// WeatherSource combines current conditions and forecasts, for providers that
// serve both from one service.
type WeatherSource interface {
	CurrentSource
	ForecastSource
}
