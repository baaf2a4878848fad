package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather-dashboard/models"
)

// OpenMeteoGeocoder is the name-based public geocoding fallback.
type OpenMeteoGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenMeteoGeocoder creates a new Open-Meteo geocoding client.
func NewOpenMeteoGeocoder(timeout time.Duration) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		baseURL: "https://geocoding-api.open-meteo.com/v1",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the geocoder name
func (g *OpenMeteoGeocoder) Name() string {
	return "OpenMeteoGeocoding"
}

type openMeteoGeoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

func (g *OpenMeteoGeocoder) get(ctx context.Context, endpoint string, params url.Values) (*openMeteoGeoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Message: string(body)}
	}

	var payload openMeteoGeoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &payload, nil
}

func (g *OpenMeteoGeocoder) mapResults(payload *openMeteoGeoResponse, limit int) []models.GeocodeResult {
	out := make([]models.GeocodeResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		if !validCoords(r.Latitude, r.Longitude) {
			continue
		}
		out = append(out, models.GeocodeResult{
			Name:    r.Name,
			Country: r.Country,
			State:   r.Admin1,
			Lat:     r.Latitude,
			Lon:     r.Longitude,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Search returns ranked matches for a free-text place query.
func (g *OpenMeteoGeocoder) Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(clampLimit(limit)))
	params.Set("language", "en")
	params.Set("format", "json")

	payload, err := g.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}
	return g.mapResults(payload, limit), nil
}

// Reverse returns the closest place for the given coordinates.
func (g *OpenMeteoGeocoder) Reverse(ctx context.Context, lat, lon float64) (models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("language", "en")
	params.Set("format", "json")

	payload, err := g.get(ctx, "/reverse", params)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	results := g.mapResults(payload, 1)
	if len(results) == 0 {
		return models.GeocodeResult{}, fmt.Errorf("location not found")
	}
	return results[0], nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 10 {
		return 10
	}
	return limit
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

var (
	_ Geocoder        = (*OpenMeteoGeocoder)(nil)
	_ ReverseGeocoder = (*OpenMeteoGeocoder)(nil)
)
