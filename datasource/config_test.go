package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://api.example.com/api", sanitizeBaseURL("http://api.example.com/api/"))
	assert.Equal(t, "https://x.test", sanitizeBaseURL("  https://x.test  "))
	assert.Empty(t, sanitizeBaseURL(""))
	assert.Empty(t, sanitizeBaseURL("not a url"))
	assert.Empty(t, sanitizeBaseURL("/relative/path"))
	assert.Empty(t, sanitizeBaseURL("http://"))
}

func TestResolveBaseURLPrefersEnv(t *testing.T) {
	assert.Equal(t, "http://backend:9000/api", resolveBaseURL("http://backend:9000/api"))

	// A garbage value falls through to a derived or local default; either way
	// the result is a usable absolute URL.
	got := resolveBaseURL("%%%")
	assert.NotEmpty(t, sanitizeBaseURL(got))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WEATHER_API_URL", "http://backend:8000/api")
	t.Setenv("GEOCODER_USER_AGENT", "")
	t.Setenv("DEFAULT_CITY", "")
	t.Setenv("DEFAULT_LAT", "")
	t.Setenv("DEFAULT_LON", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg := LoadConfig()
	assert.Equal(t, "http://backend:8000/api", cfg.BaseURL)
	assert.Equal(t, "London", cfg.DefaultCity)
	assert.InDelta(t, 51.5074, cfg.DefaultLat, 1e-9)
	assert.InDelta(t, -0.1278, cfg.DefaultLon, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("WEATHER_API_URL", "https://api.prod.example.com/api")
	t.Setenv("GEOCODER_USER_AGENT", "my-dashboard/2.0")
	t.Setenv("DEFAULT_CITY", "Oslo")
	t.Setenv("DEFAULT_LAT", "59.91")
	t.Setenv("DEFAULT_LON", "10.75")
	t.Setenv("HTTP_TIMEOUT", "3s")

	cfg := LoadConfig()
	assert.Equal(t, "https://api.prod.example.com/api", cfg.BaseURL)
	assert.Equal(t, "my-dashboard/2.0", cfg.UserAgent)
	assert.Equal(t, "Oslo", cfg.DefaultCity)
	assert.InDelta(t, 59.91, cfg.DefaultLat, 1e-9)
	assert.InDelta(t, 10.75, cfg.DefaultLon, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}
