// Package dashboard assembles display-ready view models from the provider
// client. It owns the page-level concerns: concurrent fan-out, the location
// resolution timeout and the search debounce.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"weather-dashboard/client"
	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/normalize"
)

// locationTimeout bounds how long a locator may take before the dashboard
// falls back to the default location.
const locationTimeout = 10 * time.Second

// Locator resolves the viewer's position. Implementations may use IP lookup
// or anything else; the dashboard only needs coordinates.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (float64, float64, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (float64, float64, error) {
	return f(ctx)
}

// Enricher provides the optional dashboard extras. The bool reports whether
// the provider had a reading; absence is not a zero reading.
type Enricher interface {
	UVIndex(ctx context.Context, lat, lon float64) (int, bool, error)
	AirQuality(ctx context.Context, lat, lon float64) (int, bool, error)
}

var _ Enricher = (*datasource.EnrichmentClient)(nil)

// Dashboard builds page view models.
type Dashboard struct {
	client *client.Client
	enrich Enricher
	logger *slog.Logger

	defaultCity string
	defaultLat  float64
	defaultLon  float64
}

// New creates a dashboard. The defaults come from configuration and are used
// whenever a location cannot be resolved. A nil enricher disables the extras.
func New(c *client.Client, enrich Enricher, cfg datasource.Config, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		client:      c,
		enrich:      enrich,
		logger:      logger,
		defaultCity: cfg.DefaultCity,
		defaultLat:  cfg.DefaultLat,
		defaultLon:  cfg.DefaultLon,
	}
}

// ResolveLocation asks the locator for a position, giving it a bounded amount
// of time. Timeout, error or a nil locator all fall back to the configured
// default location. The returned city name is best effort: a reverse geocode
// of the resolved coordinates, or the default city name.
func (d *Dashboard) ResolveLocation(ctx context.Context, loc Locator) (city string, lat, lon float64) {
	city, lat, lon = d.defaultCity, d.defaultLat, d.defaultLon
	if loc == nil {
		return city, lat, lon
	}

	lctx, cancel := context.WithTimeout(ctx, locationTimeout)
	defer cancel()

	gotLat, gotLon, err := loc.Locate(lctx)
	if err != nil {
		d.logger.Warn("location lookup failed, using default", "error", err)
		return city, lat, lon
	}
	lat, lon = gotLat, gotLon

	if place, err := d.client.ReverseGeocode(lctx, lat, lon); err == nil && place.Name != "" {
		city = place.Name
	} else if err != nil {
		d.logger.Warn("reverse geocode failed, keeping default city name", "error", err)
	}
	return city, lat, lon
}

// Home builds the main dashboard page for a location. Current conditions and
// the forecast are required; the UV index and air quality are fetched
// alongside them but degrade to zero values when their providers fail.
func (d *Dashboard) Home(ctx context.Context, city string, lat, lon float64, unit models.Unit) (models.HomeView, error) {
	var (
		wg sync.WaitGroup

		current     models.CurrentResult
		currentErr  error
		forecast    []models.ForecastDay
		forecastErr error
		uv          int
		uvOK        bool
		uvErr       error
		aqi         int
		aqiOK       bool
		aqiErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = d.client.GetCurrentWeather(ctx, lat, lon)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = d.client.GetForecast(ctx, lat, lon, 7)
	}()

	if d.enrich != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			uv, uvOK, uvErr = d.enrich.UVIndex(ctx, lat, lon)
		}()
		go func() {
			defer wg.Done()
			aqi, aqiOK, aqiErr = d.enrich.AirQuality(ctx, lat, lon)
		}()
	}
	wg.Wait()

	if currentErr != nil {
		return models.HomeView{}, currentErr
	}
	if forecastErr != nil {
		return models.HomeView{}, forecastErr
	}

	opts := normalize.Options{Unit: unit}
	now := time.Now()

	view := models.HomeView{
		City:      city,
		Latitude:  lat,
		Longitude: lon,
		Current:   normalize.Current(current, opts),
		Forecast:  normalize.Forecast(forecast, opts, now),
		MoonPhase: normalize.MoonPhase(now),
	}
	view.Unit = view.Current.Unit

	// The extras only appear when a fetch actually ran and found a reading;
	// anything else stays at the zero value with an empty label.
	if uvErr != nil {
		d.logger.Warn("uv index unavailable", "error", uvErr)
	} else if uvOK {
		view.UVIndex = uv
	}
	if aqiErr != nil {
		d.logger.Warn("air quality unavailable", "error", aqiErr)
	} else if aqiOK {
		view.AQI = aqi
		view.AirQuality = normalize.AQICategory(aqi)
	}

	return view, nil
}

// Locations fetches the session's saved locations and shapes them for list
// rendering.
func (d *Dashboard) Locations(ctx context.Context) ([]models.LocationView, error) {
	list, err := d.client.Locations(ctx)
	if err != nil {
		return nil, err
	}
	return normalize.Locations(list), nil
}
