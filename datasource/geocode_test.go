package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMeteoGeocoderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "berlin", r.URL.Query().Get("name"))
		w.Write([]byte(`{"results": [
			{"name": "Berlin", "country": "Germany", "admin1": "Berlin", "latitude": 52.52, "longitude": 13.41},
			{"name": "Broken", "country": "Nowhere", "latitude": 95.0, "longitude": 0},
			{"name": "Berlin", "country": "United States", "admin1": "New Hampshire", "latitude": 44.47, "longitude": -71.19}
		]}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(5 * time.Second)
	g.baseURL = srv.URL

	results, err := g.Search(context.Background(), "berlin", 5)
	require.NoError(t, err)
	require.Len(t, results, 2, "entries with out-of-range coordinates are dropped")
	assert.Equal(t, "Berlin", results[0].Name)
	assert.Equal(t, "Germany", results[0].Country)
	assert.Equal(t, "Berlin", results[0].State)
	assert.Equal(t, "New Hampshire", results[1].State)
}

func TestOpenMeteoGeocoderEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(5 * time.Second)
	g.baseURL = srv.URL

	results, err := g.Search(context.Background(), "xyzzy", 5)
	require.NoError(t, err, "no matches is a success with an empty set")
	assert.Empty(t, results)
}

func TestNominatimSearchAddressPrecedence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[
			{"name": "Springfield", "display_name": "Springfield, Illinois, USA",
			 "lat": "39.78", "lon": "-89.65",
			 "address": {"town": "Springfield", "state": "Illinois", "country_code": "us"}},
			{"name": "", "display_name": "Springfield Township, Ohio, USA",
			 "lat": "nope", "lon": "-84.0",
			 "address": {"country": "United States"}}
		]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder("weather-dashboard-test", 5*time.Second)
	g.baseURL = srv.URL

	results, err := g.Search(context.Background(), "springfield", 5)
	require.NoError(t, err)
	require.Len(t, results, 1, "entries with unparseable coordinates are dropped")
	assert.Equal(t, "Springfield", results[0].Name)
	assert.Equal(t, "Illinois", results[0].State)
	assert.Equal(t, "US", results[0].Country, "country falls back to the upper-cased code")
	assert.InDelta(t, 39.78, results[0].Lat, 1e-9)
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("zoom"))
		w.Write([]byte(`{
			"display_name": "Lyon, Rhone, France",
			"address": {"city": "Lyon", "state": "Auvergne-Rhone-Alpes", "country": "France", "country_code": "fr"}
		}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder("weather-dashboard-test", 5*time.Second)
	g.baseURL = srv.URL

	result, err := g.Reverse(context.Background(), 45.76, 4.83)
	require.NoError(t, err)
	assert.Equal(t, "Lyon", result.Name)
	assert.Equal(t, "France", result.Country)
	assert.InDelta(t, 45.76, result.Lat, 1e-9)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, clampLimit(0))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, 10, clampLimit(50))
}
