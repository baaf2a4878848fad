package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/models"
)

// NominatimGeocoder is the secondary geocoding/reverse-geocoding fallback.
// The service requires an identifying User-Agent header on every request.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim client.
func NewNominatimGeocoder(userAgent string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   "https://nominatim.openstreetmap.org",
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the geocoder name
func (g *NominatimGeocoder) Name() string {
	return "Nominatim"
}

type nominatimAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Suburb       string `json:"suburb"`
	County       string `json:"county"`
	State        string `json:"state"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

// place returns the most specific populated-place field.
func (a nominatimAddress) place() string {
	for _, v := range []string{a.City, a.Town, a.Village, a.Municipality, a.Suburb, a.County} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (a nominatimAddress) state() string {
	if a.State != "" {
		return a.State
	}
	return a.Region
}

func (a nominatimAddress) country() string {
	if a.Country != "" {
		return a.Country
	}
	return strings.ToUpper(a.CountryCode)
}

func (g *NominatimGeocoder) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Status: resp.StatusCode, Message: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Search returns matches for a free-text query. Entries without parseable
// in-range coordinates are dropped rather than surfaced.
func (g *NominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var items []struct {
		Name        string           `json:"name"`
		DisplayName string           `json:"display_name"`
		Lat         string           `json:"lat"`
		Lon         string           `json:"lon"`
		Address     nominatimAddress `json:"address"`
	}
	if err := g.get(ctx, "/search", params, &items); err != nil {
		return nil, err
	}

	out := make([]models.GeocodeResult, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = strings.SplitN(item.DisplayName, ",", 2)[0]
		}
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lon, lonErr := strconv.ParseFloat(item.Lon, 64)
		if name == "" || latErr != nil || lonErr != nil || !validCoords(lat, lon) {
			continue
		}
		out = append(out, models.GeocodeResult{
			Name:    name,
			Country: item.Address.country(),
			State:   item.Address.state(),
			Lat:     lat,
			Lon:     lon,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Reverse composes a friendly place name for the given coordinates.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("zoom", "10")
	params.Set("addressdetails", "1")

	var item struct {
		DisplayName string           `json:"display_name"`
		Address     nominatimAddress `json:"address"`
	}
	if err := g.get(ctx, "/reverse", params, &item); err != nil {
		return models.GeocodeResult{}, err
	}

	name := item.Address.place()
	if name == "" {
		name = strings.SplitN(item.DisplayName, ",", 2)[0]
	}
	if name == "" {
		return models.GeocodeResult{}, fmt.Errorf("location not found")
	}
	return models.GeocodeResult{
		Name:    name,
		Country: item.Address.country(),
		State:   item.Address.state(),
		Lat:     lat,
		Lon:     lon,
	}, nil
}

var (
	_ Geocoder        = (*NominatimGeocoder)(nil)
	_ ReverseGeocoder = (*NominatimGeocoder)(nil)
)
