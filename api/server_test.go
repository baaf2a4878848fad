package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/client"
	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

func f64(v float64) *float64 { return &v }

type stubCurrent struct {
	result models.CurrentResult
	err    error
}

func (s stubCurrent) FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	return s.result, s.err
}

func (s stubCurrent) Name() string { return "stubCurrent" }

type stubGeocoder struct {
	results []models.GeocodeResult
}

func (s stubGeocoder) Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	return s.results, nil
}

func (s stubGeocoder) Name() string { return "stubGeocoder" }

func newTestAPI(t *testing.T, cfg client.Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Backend == nil {
		// A backend that answers nothing, for handlers that touch it.
		unreachable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(unreachable.Close)
		cfg.Backend = datasource.NewBackend(unreachable.URL, "test-session", time.Second)
	}

	cli := client.New(cfg)
	dash := dashboard.New(cli, nil, datasource.Config{
		DefaultCity: "London",
		DefaultLat:  51.5074,
		DefaultLon:  -0.1278,
	}, nil)
	s := NewServer(cli, dash, nil, nil, 0)

	srv := httptest.NewServer(s.server.Handler)
	t.Cleanup(srv.Close)
	return s, srv
}

func newTestServer(t *testing.T, cfg client.Config) *httptest.Server {
	t.Helper()
	_, srv := newTestAPI(t, cfg)
	return srv
}

func decodeEnvelope(t *testing.T, resp *http.Response) (bool, json.RawMessage, string) {
	t.Helper()
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Success, env.Data, env.Error
}

func TestCurrentEndpoint(t *testing.T) {
	srv := newTestServer(t, client.Config{
		Current: []datasource.CurrentSource{stubCurrent{result: models.CurrentResult{
			Data:     models.CurrentWeather{Temperature: f64(21.0), Description: "clear sky"},
			CacheAge: "just now",
		}}},
	})

	resp, err := http.Get(srv.URL + "/api/weather/current?lat=51.5&lon=-0.12")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var view models.CurrentView
	require.NoError(t, json.Unmarshal(data, &view))
	require.NotNil(t, view.Temperature)
	assert.InDelta(t, 21.0, *view.Temperature, 1e-9)
	assert.Equal(t, models.UnitCelsius, view.Unit)
}

func TestCurrentEndpointConvertsUnit(t *testing.T) {
	srv := newTestServer(t, client.Config{
		Current: []datasource.CurrentSource{stubCurrent{result: models.CurrentResult{
			Data: models.CurrentWeather{Temperature: f64(0)},
		}}},
	})

	resp, err := http.Get(srv.URL + "/api/weather/current?lat=51.5&lon=-0.12&unit=F")
	require.NoError(t, err)

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var view models.CurrentView
	require.NoError(t, json.Unmarshal(data, &view))
	require.NotNil(t, view.Temperature)
	assert.InDelta(t, 32.0, *view.Temperature, 1e-9)
	assert.Equal(t, models.UnitFahrenheit, view.Unit)
}

func TestCurrentEndpointMissingCoords(t *testing.T) {
	srv := newTestServer(t, client.Config{
		Current: []datasource.CurrentSource{stubCurrent{}},
	})

	resp, err := http.Get(srv.URL + "/api/weather/current")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ok, _, msg := decodeEnvelope(t, resp)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestCurrentEndpointProviderFailure(t *testing.T) {
	srv := newTestServer(t, client.Config{
		Current: []datasource.CurrentSource{stubCurrent{err: errors.New("connection refused")}},
	})

	resp, err := http.Get(srv.URL + "/api/weather/current?lat=51.5&lon=0")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	ok, _, msg := decodeEnvelope(t, resp)
	assert.False(t, ok)
	assert.Contains(t, msg, "Network error")
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, client.Config{
		Search: []datasource.Geocoder{stubGeocoder{results: []models.GeocodeResult{
			{Name: "Tokyo", Country: "JP", Lat: 35.68, Lon: 139.69},
		}}},
	})

	resp, err := http.Get(srv.URL + "/api/locations/search?q=tokyo")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var payload struct {
		Results []models.GeocodeResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "Tokyo", payload.Results[0].Name)
}

func TestSearchEndpointBlankQuery(t *testing.T) {
	srv := newTestServer(t, client.Config{
		Search: []datasource.Geocoder{stubGeocoder{results: []models.GeocodeResult{
			{Name: "should never appear", Lat: 1, Lon: 1},
		}}},
	})

	resp, err := http.Get(srv.URL + "/api/locations/search?q=")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok, "a blank query is an empty success, not an error")

	var payload struct {
		Results []models.GeocodeResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Empty(t, payload.Results)
}

type stubForecast struct {
	days []models.ForecastDay
}

func (s stubForecast) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	return s.days, nil
}

func (s stubForecast) Name() string { return "stubForecast" }

type stubReverse struct {
	name string
}

func (s stubReverse) Reverse(ctx context.Context, lat, lon float64) (models.GeocodeResult, error) {
	return models.GeocodeResult{Name: s.name, Lat: lat, Lon: lon}, nil
}

func (s stubReverse) Name() string { return "stubReverse" }

func homeTestConfig() client.Config {
	return client.Config{
		Current: []datasource.CurrentSource{stubCurrent{result: models.CurrentResult{
			Data: models.CurrentWeather{Temperature: f64(16.0)},
		}}},
		Forecast: []datasource.ForecastSource{stubForecast{days: []models.ForecastDay{{Date: "2024-06-01"}}}},
	}
}

func TestHomeEndpointWithoutCoordsUsesDefaultLocation(t *testing.T) {
	srv := newTestServer(t, homeTestConfig())

	resp, err := http.Get(srv.URL + "/api/dashboard/home")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a coordinate-less request resolves instead of failing")

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var view models.HomeView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "London", view.City)
	assert.InDelta(t, 51.5074, view.Latitude, 1e-9)
	assert.InDelta(t, -0.1278, view.Longitude, 1e-9)
	require.NotNil(t, view.Current.Temperature)
}

func TestHomeEndpointWithoutCoordsUsesLocator(t *testing.T) {
	cfg := homeTestConfig()
	cfg.Reverse = []datasource.ReverseGeocoder{stubReverse{name: "Paris"}}

	s, srv := newTestAPI(t, cfg)
	s.SetLocator(dashboard.LocatorFunc(func(ctx context.Context) (float64, float64, error) {
		return 48.8566, 2.3522, nil
	}))

	resp, err := http.Get(srv.URL + "/api/dashboard/home")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var view models.HomeView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "Paris", view.City, "the locator's position is reverse geocoded")
	assert.InDelta(t, 48.8566, view.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, view.Longitude, 1e-9)
}

func TestHomeEndpointExplicitCoordsStillValidated(t *testing.T) {
	srv := newTestServer(t, homeTestConfig())

	resp, err := http.Get(srv.URL + "/api/dashboard/home?lat=abc&lon=2.35")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "malformed explicit coordinates do not silently fall back")

	ok, _, msg := decodeEnvelope(t, resp)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestHealthEndpointReportsBackendState(t *testing.T) {
	srv := newTestServer(t, client.Config{})

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health itself is fine even with the backend down")

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "unreachable", payload["backend"])
}

func TestRecentSearchesWithoutStore(t *testing.T) {
	srv := newTestServer(t, client.Config{})

	resp, err := http.Get(srv.URL + "/api/searches/recent")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, data, _ := decodeEnvelope(t, resp)
	require.True(t, ok)

	var payload struct {
		Searches []string `json:"searches"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Empty(t, payload.Searches)
}
