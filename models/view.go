package models

// Display-ready records produced by the normalize package. Temperatures are
// already converted to the view's unit; clock strings are already localized.

// CurrentView is the normalized current-conditions card.
type CurrentView struct {
	Temperature   *float64 `json:"temperature"`
	FeelsLike     *float64 `json:"feels_like"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	Description   string   `json:"description"`
	Main          string   `json:"main"`
	Icon          string   `json:"icon"`
	WindSpeed     *float64 `json:"wind_speed"`
	WindDirection *float64 `json:"wind_direction"`
	Visibility    *float64 `json:"visibility"`
	Clouds        *float64 `json:"clouds"`
	SunriseLocal  string   `json:"sunrise_local"`
	SunsetLocal   string   `json:"sunset_local"`
	ObservedLocal string   `json:"observed_local"`
	Cached        bool     `json:"cached"`
	CacheAge      string   `json:"cache_age"`
	Unit          Unit     `json:"unit"`
}

// HourView is one normalized hourly entry.
type HourView struct {
	Timestamp   *int64   `json:"dt"`
	Time        string   `json:"time"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like"`
	Description string   `json:"weather"`
	Main        string   `json:"main"`
	Icon        string   `json:"icon"`
	WindSpeed   *float64 `json:"wind_speed"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
	Clouds      *float64 `json:"clouds"`
}

// DayView is one normalized forecast day.
type DayView struct {
	Date      string     `json:"date"`
	Label     string     `json:"label"`      // "Today", "Tomorrow" or weekday name
	DateLabel string     `json:"date_label"` // short month + day
	MinTemp   *float64   `json:"min_temp"`
	MaxTemp   *float64   `json:"max_temp"`
	Condition string     `json:"condition"`
	Icon      string     `json:"icon"`
	WindMPH   int        `json:"wind_mph"` // day average, rounded for display
	Hours     []HourView `json:"hours"`
	Unit      Unit       `json:"unit"`
}

// LocationView is a saved location decorated for list rendering.
type LocationView struct {
	SavedLocation
	DisplayName string `json:"display_name"`
}

// HomeView is the assembled view-model for the dashboard's main page.
// Enrichment fields degrade to zero values when their fetch fails.
type HomeView struct {
	City       string      `json:"city"`
	Latitude   float64     `json:"latitude"`
	Longitude  float64     `json:"longitude"`
	Current    CurrentView `json:"current"`
	Forecast   []DayView   `json:"forecast"`
	UVIndex    int         `json:"uv_index"`
	AirQuality string      `json:"air_quality"` // category label, empty on failure
	AQI        int         `json:"aqi"`
	MoonPhase  string      `json:"moon_phase"`
	Unit       Unit        `json:"unit"`
}
