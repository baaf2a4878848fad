package models

// ForecastHour is a single hourly forecast point in canonical form.
type ForecastHour struct {
	Timestamp     *int64   `json:"dt"`               // unix seconds, nil when the source had no absolute instant
	TimeText      string   `json:"dt_txt,omitempty"` // provider-local time text when available
	Temperature   *float64 `json:"temperature"`      // in Celsius
	FeelsLike     *float64 `json:"feels_like"`       // in Celsius
	Description   string   `json:"weather"`
	Main          string   `json:"weather_main"`
	Icon          string   `json:"icon"`
	WindSpeed     *float64 `json:"wind_speed"` // in m/s
	WindDirection *float64 `json:"wind_direction"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	Clouds        *float64 `json:"clouds"`
}

// ForecastDay groups the hourly points of one local calendar date.
// Hours are in non-decreasing time order and all share the day's date.
type ForecastDay struct {
	Date    string         `json:"date"` // ISO calendar date, no time component
	MinTemp *float64       `json:"min_temp"`
	MaxTemp *float64       `json:"max_temp"`
	Hours   []ForecastHour `json:"hours"`
}
