package models

// Unit identifies a temperature unit for display conversion.
type Unit string

const (
	UnitCelsius    Unit = "C"
	UnitFahrenheit Unit = "F"
)

// CurrentWeather is the canonical current-conditions record. Every provider
// adapter maps its raw payload into this shape; consumers never branch on
// provider-specific field names. Nullable readings are pointers so a missing
// value stays null instead of collapsing to zero.
type CurrentWeather struct {
	Temperature   *float64 `json:"temperature"`    // in Celsius
	FeelsLike     *float64 `json:"feels_like"`     // in Celsius
	Humidity      *float64 `json:"humidity"`       // percentage 0-100
	Pressure      *float64 `json:"pressure"`       // in hPa
	Description   string   `json:"weather"`        // textual condition
	Main          string   `json:"weather_main"`   // condition category
	Icon          string   `json:"icon"`           // icon token
	WindSpeed     *float64 `json:"wind_speed"`     // in m/s
	WindDirection *float64 `json:"wind_direction"` // degrees
	Visibility    *float64 `json:"visibility"`     // in meters
	Clouds        *float64 `json:"clouds"`         // cloud cover 0-100
	Sunrise       *int64   `json:"sunrise"`        // unix seconds
	Sunset        *int64   `json:"sunset"`         // unix seconds
	Timezone      *int64   `json:"timezone"`       // UTC offset in seconds
	ObservedAt    *int64   `json:"dt"`             // observation instant, unix seconds
}

// CurrentResult wraps a CurrentWeather with the advisory cache metadata
// passed through verbatim from whichever provider answered. The client never
// verifies it.
type CurrentResult struct {
	Data     CurrentWeather `json:"data"`
	Cached   bool           `json:"cached"`
	CacheAge string         `json:"cache_age"`
}
