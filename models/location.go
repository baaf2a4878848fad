package models

// GeocodeResult is one ranked geocoding match. A result without valid
// coordinates is never produced; adapters drop such entries at the boundary.
type GeocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country,omitempty"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// SavedLocation mirrors a location record owned by the primary backend.
// The client only holds it transiently for the duration of a page view.
type SavedLocation struct {
	ID         int64           `json:"id"`
	CityName   string          `json:"city_name"`
	Country    string          `json:"country"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	IsFavorite bool            `json:"is_favorite"`
	CreatedAt  string          `json:"created_at"` // ISO instant from the backend
	Weather    *CurrentWeather `json:"weather,omitempty"`
}

// Preferences mirrors the per-session settings record owned by the backend.
type Preferences struct {
	SessionID       string `json:"session_id"`
	TemperatureUnit Unit   `json:"temperature_unit"`
	Theme           string `json:"theme"`
	DefaultLocation *int64 `json:"default_location"`
	UpdatedAt       string `json:"updated_at"`
}
