package datasource

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration.
type Config struct {
	// BaseURL of the primary backend API, e.g. http://localhost:8000/api.
	BaseURL string

	// UserAgent sent to public providers that require an identifying header.
	UserAgent string

	// Default location used when no location can be resolved.
	DefaultCity string
	DefaultLat  float64
	DefaultLon  float64

	// HTTPTimeout applies to every upstream request.
	HTTPTimeout time.Duration
}

const (
	defaultBackendPort = 8000
	fallbackBaseURL    = "http://localhost:8000/api"
	defaultUserAgent   = "weather-dashboard/1.0 (+https://example.com)"
)

// LoadConfig builds the configuration from the environment. The backend base
// URL is taken from WEATHER_API_URL when it parses as a well-formed absolute
// URL; otherwise it is derived from the host's own name with the fixed
// backend port, and as a last resort a hardcoded local default is used.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:     resolveBaseURL(os.Getenv("WEATHER_API_URL")),
		UserAgent:   defaultUserAgent,
		DefaultCity: "London",
		DefaultLat:  51.5074,
		DefaultLon:  -0.1278,
		HTTPTimeout: 10 * time.Second,
	}

	if ua := os.Getenv("GEOCODER_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}
	if city := os.Getenv("DEFAULT_CITY"); city != "" {
		cfg.DefaultCity = city
	}
	if lat, ok := parseFloatEnv("DEFAULT_LAT"); ok {
		cfg.DefaultLat = lat
	}
	if lon, ok := parseFloatEnv("DEFAULT_LON"); ok {
		cfg.DefaultLon = lon
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}
	return cfg
}

func parseFloatEnv(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func resolveBaseURL(fromEnv string) string {
	if u := sanitizeBaseURL(fromEnv); u != "" {
		return u
	}

	// Derive from the host's own name, mirroring origin-based resolution.
	if host, err := os.Hostname(); err == nil {
		host = strings.TrimSpace(host)
		if host != "" && host != "0.0.0.0" && !strings.ContainsAny(host, "<>[]") {
			candidate := fmt.Sprintf("http://%s:%d/api", host, defaultBackendPort)
			if u := sanitizeBaseURL(candidate); u != "" {
				return u
			}
		}
	}
	return fallbackBaseURL
}

// sanitizeBaseURL returns the trimmed URL when it is well-formed and
// absolute, or an empty string when it is unusable.
func sanitizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.TrimRight(raw, "/")
}
