package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"weather-dashboard/models"
)

// Backend is the client for the primary backend API, the source of truth for
// saved locations and preferences. Every response uses the
// {success, data, message, error} envelope; success=false or a non-2xx status
// is treated as failure regardless of payload shape.
type Backend struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// NewBackend creates a primary backend client. The session identity is
// threaded through explicitly; it is generated once at startup and reused for
// every authenticated call.
func NewBackend(baseURL, sessionID string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL:   baseURL,
		sessionID: sessionID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (b *Backend) Name() string {
	return "PrimaryBackend"
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// errorMessage extracts the upstream error, which may be a plain string or an
// object with a message field.
func (e *envelope) errorMessage() string {
	if len(e.Error) == 0 || string(e.Error) == "null" {
		return e.Message
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return e.Message
}

const (
	backendRetries   = 3
	backendRetryBase = 300 * time.Millisecond
)

// getJSON issues a GET and decodes the envelope's data field into out.
// Transport failures are retried with exponential backoff; upstream status
// and envelope failures are not, they surface immediately.
func (b *Backend) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return retry.Do(
		func() error {
			return b.do(ctx, http.MethodGet, path, query, nil, out)
		},
		retry.Context(ctx),
		retry.Attempts(backendRetries),
		retry.Delay(backendRetryBase),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *StatusError
			return !errors.As(err, &se)
		}),
	)
}

// postJSON issues a POST without retries; write calls are not assumed to be
// idempotent.
func (b *Backend) postJSON(ctx context.Context, path string, body, out any) error {
	return b.do(ctx, http.MethodPost, path, nil, body, out)
}

func (b *Backend) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	parseErr := json.Unmarshal(raw, &env)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || parseErr != nil || !env.Success {
		msg := ""
		if parseErr == nil {
			msg = env.errorMessage()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &StatusError{Status: resp.StatusCode, Message: "malformed response payload"}
	}
	return nil
}

func coordQuery(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return q
}

// FetchCurrent fetches current conditions from the backend, including the
// advisory cache metadata the backend reports.
func (b *Backend) FetchCurrent(ctx context.Context, lat, lon float64) (models.CurrentResult, error) {
	var result models.CurrentResult
	if err := b.getJSON(ctx, "/weather/current/", coordQuery(lat, lon), &result); err != nil {
		return models.CurrentResult{}, err
	}
	return result, nil
}

// FetchForecast fetches the daily forecast from the backend. The backend's
// own cache metadata is dropped here; only the days survive.
func (b *Backend) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	q := coordQuery(lat, lon)
	q.Set("days", strconv.Itoa(days))

	var wrapped struct {
		Data []models.ForecastDay `json:"data"`
	}
	if err := b.getJSON(ctx, "/weather/forecast/", q, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

// Search queries the backend geocoder.
func (b *Backend) Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	q := url.Values{}
	q.Set("q", query)

	var data struct {
		Results []models.GeocodeResult `json:"results"`
	}
	if err := b.getJSON(ctx, "/locations/search/", q, &data); err != nil {
		return nil, err
	}
	results := data.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SaveLocationRequest is the payload for saving a location against the
// caller's session.
type SaveLocationRequest struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	SessionID string  `json:"session_id"`
}

// SaveLocation stores a location for the session. The second return value
// reports whether the backend created a new record.
func (b *Backend) SaveLocation(ctx context.Context, req SaveLocationRequest) (models.SavedLocation, bool, error) {
	if req.SessionID == "" {
		req.SessionID = b.sessionID
	}

	var data struct {
		Location models.SavedLocation `json:"location"`
		Created  bool                 `json:"created"`
	}
	if err := b.postJSON(ctx, "/locations/save/", req, &data); err != nil {
		return models.SavedLocation{}, false, err
	}
	return data.Location, data.Created, nil
}

// Locations lists the session's saved locations.
func (b *Backend) Locations(ctx context.Context) ([]models.SavedLocation, error) {
	q := url.Values{}
	q.Set("session_id", b.sessionID)

	var data struct {
		Locations []models.SavedLocation `json:"locations"`
	}
	if err := b.getJSON(ctx, "/locations/", q, &data); err != nil {
		return nil, err
	}
	return data.Locations, nil
}

// DeleteLocation removes a saved location.
func (b *Backend) DeleteLocation(ctx context.Context, id int64) error {
	q := url.Values{}
	q.Set("session_id", b.sessionID)
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/locations/%d/", id), q, nil, nil)
}

// ToggleFavorite flips the favorite flag of a saved location and returns the
// updated record.
func (b *Backend) ToggleFavorite(ctx context.Context, id int64) (models.SavedLocation, error) {
	body := map[string]string{"session_id": b.sessionID}

	var data struct {
		Location models.SavedLocation `json:"location"`
	}
	if err := b.postJSON(ctx, fmt.Sprintf("/locations/%d/favorite/", id), body, &data); err != nil {
		return models.SavedLocation{}, err
	}
	return data.Location, nil
}

// Preferences fetches the session's preferences.
func (b *Backend) Preferences(ctx context.Context) (models.Preferences, error) {
	q := url.Values{}
	q.Set("session_id", b.sessionID)

	var data struct {
		Preferences models.Preferences `json:"preferences"`
	}
	if err := b.getJSON(ctx, "/preferences/", q, &data); err != nil {
		return models.Preferences{}, err
	}
	return data.Preferences, nil
}

// PreferencesUpdate carries the fields to change; zero-valued fields are
// omitted from the request so the backend keeps their current values.
type PreferencesUpdate struct {
	TemperatureUnit models.Unit `json:"temperature_unit,omitempty"`
	Theme           string      `json:"theme,omitempty"`
	DefaultLocation *int64      `json:"default_location,omitempty"`
	SessionID       string      `json:"session_id"`
}

// UpdatePreferences applies a partial preferences update.
func (b *Backend) UpdatePreferences(ctx context.Context, update PreferencesUpdate) (models.Preferences, error) {
	if update.SessionID == "" {
		update.SessionID = b.sessionID
	}

	var data struct {
		Preferences models.Preferences `json:"preferences"`
	}
	if err := b.postJSON(ctx, "/preferences/update/", update, &data); err != nil {
		return models.Preferences{}, err
	}
	return data.Preferences, nil
}

// Health reports whether the backend answers its health endpoint.
func (b *Backend) Health(ctx context.Context) error {
	return b.getJSON(ctx, "/health/", nil, nil)
}

// Verify the backend satisfies the capability interfaces it claims.
var (
	_ CurrentSource  = (*Backend)(nil)
	_ ForecastSource = (*Backend)(nil)
	_ Geocoder       = (*Backend)(nil)
)
