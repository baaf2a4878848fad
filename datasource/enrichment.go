package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// EnrichmentClient fetches the optional dashboard extras: daily UV index and
// the current air quality index. Callers treat both as best-effort; a failure
// here degrades to a default value instead of aborting the page.
type EnrichmentClient struct {
	forecastBaseURL   string
	airQualityBaseURL string
	httpClient        *http.Client
}

// NewEnrichmentClient creates a client for the public UV and air-quality
// endpoints.
func NewEnrichmentClient(timeout time.Duration) *EnrichmentClient {
	return &EnrichmentClient{
		forecastBaseURL:   "https://api.open-meteo.com/v1",
		airQualityBaseURL: "https://air-quality-api.open-meteo.com/v1",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *EnrichmentClient) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
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

func enrichmentQuery(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("timezone", "auto")
	return params
}

// UVIndex returns today's maximum UV index, rounded for display. The second
// return value reports whether the provider had a reading at all; an empty or
// null series is absence, not a zero reading.
func (c *EnrichmentClient) UVIndex(ctx context.Context, lat, lon float64) (int, bool, error) {
	params := enrichmentQuery(lat, lon)
	params.Set("daily", "uv_index_max")

	var payload struct {
		Daily struct {
			UVIndexMax []*float64 `json:"uv_index_max"`
		} `json:"daily"`
	}
	if err := c.get(ctx, c.forecastBaseURL+"/forecast?"+params.Encode(), &payload); err != nil {
		return 0, false, err
	}
	return firstReading(payload.Daily.UVIndexMax)
}

// AirQuality returns the current US AQI value, with the same absence
// reporting as UVIndex.
func (c *EnrichmentClient) AirQuality(ctx context.Context, lat, lon float64) (int, bool, error) {
	params := enrichmentQuery(lat, lon)
	params.Set("hourly", "us_aqi")

	var payload struct {
		Hourly struct {
			USAQI []*float64 `json:"us_aqi"`
		} `json:"hourly"`
	}
	if err := c.get(ctx, c.airQualityBaseURL+"/air-quality?"+params.Encode(), &payload); err != nil {
		return 0, false, err
	}
	return firstReading(payload.Hourly.USAQI)
}

func firstReading(series []*float64) (int, bool, error) {
	if len(series) == 0 || series[0] == nil {
		return 0, false, nil
	}
	v := *series[0]
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return int(math.Round(v)), true, nil
}
