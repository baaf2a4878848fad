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

// openMeteoTimeLayout is the provider-local timestamp format returned when
// requesting timezone=auto. It carries no offset; the response's
// utc_offset_seconds converts it to an absolute instant.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider is the coordinate-based public fallback for current
// weather and forecasts. It requires no API key.
type OpenMeteoProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenMeteoProvider creates a new Open-Meteo forecast provider.
func NewOpenMeteoProvider(timeout time.Duration) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		baseURL: "https://api.open-meteo.com/v1",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (p *OpenMeteoProvider) Name() string {
	return "OpenMeteo"
}

// openMeteoResponse is the raw forecast payload: hourly arrays aligned by the
// time array, plus daily aggregates.
type openMeteoResponse struct {
	UTCOffsetSeconds int64 `json:"utc_offset_seconds"`
	Hourly           struct {
		Time             []string   `json:"time"`
		Temperature      []*float64 `json:"temperature_2m"`
		ApparentTemp     []*float64 `json:"apparent_temperature"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
		SurfacePressure  []*float64 `json:"surface_pressure"`
		WeatherCode      []*float64 `json:"weather_code"`
		WindSpeed        []*float64 `json:"wind_speed_10m"`
		WindDirection    []*float64 `json:"wind_direction_10m"`
		Visibility       []*float64 `json:"visibility"`
		CloudCover       []*float64 `json:"cloudcover"`
	} `json:"hourly"`
	Daily struct {
		Time    []string   `json:"time"`
		TempMax []*float64 `json:"temperature_2m_max"`
		TempMin []*float64 `json:"temperature_2m_min"`
		Sunrise []string   `json:"sunrise"`
		Sunset  []string   `json:"sunset"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, lat, lon float64, days int) (*openMeteoResponse, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("timezone", "auto")
	params.Set("hourly", "temperature_2m,apparent_temperature,relative_humidity_2m,surface_pressure,weather_code,wind_speed_10m,wind_direction_10m,visibility,cloudcover")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,sunrise,sunset")
	params.Set("forecast_days", strconv.Itoa(clampDays(days)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
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

	var payload openMeteoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &payload, nil
}

func clampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > 7 {
		return 7
	}
	return days
}

// localUnix converts a provider-local timestamp to unix seconds.
func localUnix(s string, offsetSeconds int64) *int64 {
	t, err := time.Parse(openMeteoTimeLayout, s)
	if err != nil {
		return nil
	}
	ts := t.Unix() - offsetSeconds
	return &ts
}

func at(arr []*float64, i int) *float64 {
	if i < 0 || i >= len(arr) {
		return nil
	}
	return arr[i]
}

func codeAt(arr []*float64, i int) int {
	v := at(arr, i)
	if v == nil {
		return 0
	}
	return int(*v)
}

// FetchCurrent maps the first hourly slot of a one-day forecast into a
// current-conditions record. The advisory cache metadata always reports a
// fresh fetch.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	payload, err := p.fetch(ctx, lat, lon, 1)
	if err != nil {
		return models.CurrentResult{}, err
	}

	cond := ConditionForCode(codeAt(payload.Hourly.WeatherCode, 0))
	offset := payload.UTCOffsetSeconds
	now := time.Now().Unix()

	var sunrise, sunset *int64
	if len(payload.Daily.Sunrise) > 0 {
		sunrise = localUnix(payload.Daily.Sunrise[0], offset)
	}
	if len(payload.Daily.Sunset) > 0 {
		sunset = localUnix(payload.Daily.Sunset[0], offset)
	}

	return models.CurrentResult{
		Data: models.CurrentWeather{
			Temperature:   at(payload.Hourly.Temperature, 0),
			FeelsLike:     at(payload.Hourly.ApparentTemp, 0),
			Humidity:      at(payload.Hourly.RelativeHumidity, 0),
			Pressure:      at(payload.Hourly.SurfacePressure, 0),
			Description:   cond.Description,
			Main:          cond.Main,
			Icon:          cond.Icon,
			WindSpeed:     at(payload.Hourly.WindSpeed, 0),
			WindDirection: at(payload.Hourly.WindDirection, 0),
			Visibility:    at(payload.Hourly.Visibility, 0),
			Clouds:        at(payload.Hourly.CloudCover, 0),
			Sunrise:       sunrise,
			Sunset:        sunset,
			Timezone:      &offset,
			ObservedAt:    &now,
		},
		Cached:   false,
		CacheAge: "just now",
	}, nil
}

// FetchForecast groups the hourly series into calendar days using the
// provider's local timezone dates, so a day never straddles a UTC boundary.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	payload, err := p.fetch(ctx, lat, lon, days)
	if err != nil {
		return nil, err
	}

	offset := payload.UTCOffsetSeconds

	// Hourly times arrive in chronological order; first-seen order of their
	// local date prefixes preserves it.
	byDate := make(map[string][]models.ForecastHour)
	var dates []string
	for i, raw := range payload.Hourly.Time {
		if len(raw) < len("2006-01-02") {
			continue
		}
		date := raw[:len("2006-01-02")]
		if _, seen := byDate[date]; !seen {
			dates = append(dates, date)
		}

		cond := ConditionForCode(codeAt(payload.Hourly.WeatherCode, i))
		byDate[date] = append(byDate[date], models.ForecastHour{
			Timestamp:     localUnix(raw, offset),
			TimeText:      raw,
			Temperature:   at(payload.Hourly.Temperature, i),
			FeelsLike:     at(payload.Hourly.ApparentTemp, i),
			Description:   cond.Description,
			Main:          cond.Main,
			Icon:          cond.Icon,
			WindSpeed:     at(payload.Hourly.WindSpeed, i),
			WindDirection: at(payload.Hourly.WindDirection, i),
			Humidity:      at(payload.Hourly.RelativeHumidity, i),
			Pressure:      at(payload.Hourly.SurfacePressure, i),
			Clouds:        at(payload.Hourly.CloudCover, i),
		})
	}

	// Daily min/max are aligned by the daily time array.
	minByDate := make(map[string]*float64)
	maxByDate := make(map[string]*float64)
	for i, d := range payload.Daily.Time {
		minByDate[d] = at(payload.Daily.TempMin, i)
		maxByDate[d] = at(payload.Daily.TempMax, i)
	}

	out := make([]models.ForecastDay, 0, len(dates))
	for _, date := range dates {
		out = append(out, models.ForecastDay{
			Date:    date,
			MinTemp: minByDate[date],
			MaxTemp: maxByDate[date],
			Hours:   byDate[date],
		})
	}
	return out, nil
}

// Verify OpenMeteoProvider implements both capability interfaces.
var (
	_ CurrentSource  = (*OpenMeteoProvider)(nil)
	_ ForecastSource = (*OpenMeteoProvider)(nil)
)
