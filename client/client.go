// Package client orchestrates the data sources behind the dashboard. Each
// operation walks an ordered provider chain: the primary backend first, then
// the public fallbacks, so the dashboard stays usable when the backend is
// down.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

// DefaultSearchLimit caps geocoding results when the caller does not ask for
// a specific count.
const DefaultSearchLimit = 5

// Client fans requests out across provider chains. Saved locations and
// preferences have no fallback; they live only on the primary backend.
type Client struct {
	backend  *datasource.Backend
	current  []datasource.CurrentSource
	forecast []datasource.ForecastSource
	search   []datasource.Geocoder
	reverse  []datasource.ReverseGeocoder
	logger   *slog.Logger
}

// Config lists the provider chains in priority order. The first entry of each
// chain is tried first.
type Config struct {
	Backend  *datasource.Backend
	Current  []datasource.CurrentSource
	Forecast []datasource.ForecastSource
	Search   []datasource.Geocoder
	Reverse  []datasource.ReverseGeocoder
	Logger   *slog.Logger
}

// New creates a client from the given provider chains.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backend:  cfg.Backend,
		current:  cfg.Current,
		forecast: cfg.Forecast,
		search:   cfg.Search,
		reverse:  cfg.Reverse,
		logger:   logger,
	}
}

// validateCoords rejects non-finite or out-of-range coordinates before any
// network call happens.
func validateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("invalid coordinates: not finite")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid coordinates: lat=%v lon=%v out of range", lat, lon)
	}
	return nil
}

// GetCurrentWeather returns current conditions from the first provider in the
// chain that answers. Results from fallbacks carry cached=false; the advisory
// cache metadata only means something coming from the primary backend.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	if err := validateCoords(lat, lon); err != nil {
		return models.CurrentResult{}, err
	}

	var errs []error
	for i, src := range c.current {
		result, err := src.FetchCurrent(ctx, lat, lon)
		if err == nil {
			if i > 0 {
				c.logger.Info("current conditions served by fallback", "provider", src.Name())
			}
			return result, nil
		}
		c.logger.Warn("current conditions provider failed", "provider", src.Name(), "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return models.CurrentResult{}, fmt.Errorf("no current conditions providers configured")
	}
	return models.CurrentResult{}, fmt.Errorf("all current conditions providers failed: %w", errors.Join(errs...))
}

// GetForecast returns up to days of daily forecast, clamped to the 1..7 range
// every provider supports.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	if err := validateCoords(lat, lon); err != nil {
		return nil, err
	}
	if days < 1 {
		days = 1
	}
	if days > 7 {
		days = 7
	}

	var errs []error
	for i, src := range c.forecast {
		forecast, err := src.FetchForecast(ctx, lat, lon, days)
		if err == nil {
			if i > 0 {
				c.logger.Info("forecast served by fallback", "provider", src.Name())
			}
			return forecast, nil
		}
		c.logger.Warn("forecast provider failed", "provider", src.Name(), "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no forecast providers configured")
	}
	return nil, fmt.Errorf("all forecast providers failed: %w", errors.Join(errs...))
}

// SearchLocation resolves a free-text place query. A blank query returns an
// empty result without touching the network. A provider answering with zero
// matches is not trusted as final; the next provider in the chain still gets
// a chance, since the primary backend sometimes reports an empty set for
// queries the public geocoders resolve fine.
func (c *Client) SearchLocation(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.GeocodeResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var errs []error
	emptyOK := false
	for _, g := range c.search {
		results, err := g.Search(ctx, query, limit)
		if err != nil {
			c.logger.Warn("geocoder failed", "provider", g.Name(), "query", query, "error", err)
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
		emptyOK = true
	}

	if emptyOK {
		return []models.GeocodeResult{}, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no geocoders configured")
	}
	return nil, fmt.Errorf("all geocoders failed: %w", errors.Join(errs...))
}

// ReverseGeocode names the place at the given coordinates.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (models.GeocodeResult, error) {
	if err := validateCoords(lat, lon); err != nil {
		return models.GeocodeResult{}, err
	}

	var errs []error
	for _, g := range c.reverse {
		result, err := g.Reverse(ctx, lat, lon)
		if err == nil {
			return result, nil
		}
		c.logger.Warn("reverse geocoder failed", "provider", g.Name(), "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return models.GeocodeResult{}, fmt.Errorf("no reverse geocoders configured")
	}
	return models.GeocodeResult{}, fmt.Errorf("all reverse geocoders failed: %w", errors.Join(errs...))
}

// SaveLocation stores a location on the primary backend. There is no fallback
// for writes.
func (c *Client) SaveLocation(ctx context.Context, req datasource.SaveLocationRequest) (models.SavedLocation, bool, error) {
	if err := validateCoords(req.Lat, req.Lon); err != nil {
		return models.SavedLocation{}, false, err
	}
	return c.backend.SaveLocation(ctx, req)
}

// Locations lists the session's saved locations.
func (c *Client) Locations(ctx context.Context) ([]models.SavedLocation, error) {
	return c.backend.Locations(ctx)
}

// DeleteLocation removes a saved location.
func (c *Client) DeleteLocation(ctx context.Context, id int64) error {
	return c.backend.DeleteLocation(ctx, id)
}

// ToggleFavorite flips a saved location's favorite flag.
func (c *Client) ToggleFavorite(ctx context.Context, id int64) (models.SavedLocation, error) {
	return c.backend.ToggleFavorite(ctx, id)
}

// Preferences fetches the session's preferences.
func (c *Client) Preferences(ctx context.Context) (models.Preferences, error) {
	return c.backend.Preferences(ctx)
}

// UpdatePreferences applies a partial preferences update.
func (c *Client) UpdatePreferences(ctx context.Context, update datasource.PreferencesUpdate) (models.Preferences, error) {
	return c.backend.UpdatePreferences(ctx, update)
}

// Health reports backend reachability.
func (c *Client) Health(ctx context.Context) error {
	return c.backend.Health(ctx)
}
