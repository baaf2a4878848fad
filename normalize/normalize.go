// Package normalize holds the pure response-shaping functions: unit
// conversion, time localization and display labeling. It is the only place
// conversions happen; callers apply it exactly once per fetched payload.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"time"

	"weather-dashboard/models"
)

// Options controls how a raw record is shaped for display.
type Options struct {
	Unit models.Unit
}

func (o Options) unit() models.Unit {
	if o.Unit == models.UnitFahrenheit {
		return models.UnitFahrenheit
	}
	return models.UnitCelsius
}

// CelsiusToFahrenheit converts a nullable Celsius reading. Null propagates as
// null; the result keeps full precision, rounding is a display concern.
func CelsiusToFahrenheit(c *float64) *float64 {
	if c == nil {
		return nil
	}
	f := *c*9/5 + 32
	return &f
}

// FahrenheitToCelsius is the inverse conversion.
func FahrenheitToCelsius(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := (*f - 32) * 5 / 9
	return &c
}

// MetersPerSecondToMPH converts a wind speed for display.
func MetersPerSecondToMPH(ms float64) float64 {
	return ms * 2.237
}

func convertTemp(c *float64, unit models.Unit) *float64 {
	if unit == models.UnitFahrenheit {
		return CelsiusToFahrenheit(c)
	}
	return c
}

// Clock renders an instant plus a timezone offset as a clock string. A nil
// instant yields an empty string, never a fabricated time.
func Clock(seconds *int64, tzOffsetSeconds int64) string {
	if seconds == nil {
		return ""
	}
	return time.Unix(*seconds+tzOffsetSeconds, 0).UTC().Format("15:04")
}

// DayLabel labels a forecast day: "Today" when it matches the current UTC
// calendar date, "Tomorrow" at index 1, otherwise the weekday name.
func DayLabel(date string, index int, now time.Time) string {
	if date == now.UTC().Format("2006-01-02") {
		return "Today"
	}
	if index == 1 {
		return "Tomorrow"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Weekday().String()
}

// DateLabel renders a calendar date as a short month + day string.
func DateLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02")
}

// Current shapes a fetched current-conditions result for display. Temperature
// fields are converted at most once here; everything else passes through with
// nulls preserved.
func Current(result models.CurrentResult, opts Options) models.CurrentView {
	unit := opts.unit()
	w := result.Data

	var tz int64
	if w.Timezone != nil {
		tz = *w.Timezone
	}

	return models.CurrentView{
		Temperature:   convertTemp(w.Temperature, unit),
		FeelsLike:     convertTemp(w.FeelsLike, unit),
		Humidity:      w.Humidity,
		Pressure:      w.Pressure,
		Description:   w.Description,
		Main:          w.Main,
		Icon:          w.Icon,
		WindSpeed:     w.WindSpeed,
		WindDirection: w.WindDirection,
		Visibility:    w.Visibility,
		Clouds:        w.Clouds,
		SunriseLocal:  Clock(w.Sunrise, tz),
		SunsetLocal:   Clock(w.Sunset, tz),
		ObservedLocal: Clock(w.ObservedAt, tz),
		Cached:        result.Cached,
		CacheAge:      result.CacheAge,
		Unit:          unit,
	}
}

// hourTime renders an hour's time-of-day. The provider-local time text wins
// when present; otherwise the absolute instant is used as a best effort.
func hourTime(h models.ForecastHour) string {
	if len(h.TimeText) >= len("2006-01-02T15:04") {
		if t, err := time.Parse("2006-01-02T15:04", h.TimeText[:len("2006-01-02T15:04")]); err == nil {
			return t.Format("15:04")
		}
	}
	return Clock(h.Timestamp, 0)
}

// Forecast shapes fetched forecast days for display relative to now.
func Forecast(days []models.ForecastDay, opts Options, now time.Time) []models.DayView {
	unit := opts.unit()

	out := make([]models.DayView, 0, len(days))
	for idx, d := range days {
		hours := make([]models.HourView, 0, len(d.Hours))
		var windSum float64
		var windN int
		for _, h := range d.Hours {
			hours = append(hours, models.HourView{
				Timestamp:   h.Timestamp,
				Time:        hourTime(h),
				Temperature: convertTemp(h.Temperature, unit),
				FeelsLike:   convertTemp(h.FeelsLike, unit),
				Description: h.Description,
				Main:        h.Main,
				Icon:        h.Icon,
				WindSpeed:   h.WindSpeed,
				Humidity:    h.Humidity,
				Pressure:    h.Pressure,
				Clouds:      h.Clouds,
			})
			if h.WindSpeed != nil {
				windSum += MetersPerSecondToMPH(*h.WindSpeed)
				windN++
			}
		}

		windMPH := 0
		if windN > 0 {
			windMPH = int(math.Round(windSum / float64(windN)))
		}

		condition, icon := "", ""
		if len(d.Hours) > 0 {
			// A midday-ish hour stands in for the whole day's condition.
			mid := len(d.Hours)/2 - 1
			if mid < 0 {
				mid = 0
			}
			if mid > 12 {
				mid = 12
			}
			condition = d.Hours[mid].Description
			icon = d.Hours[mid].Icon
		}

		out = append(out, models.DayView{
			Date:      d.Date,
			Label:     DayLabel(d.Date, idx, now),
			DateLabel: DateLabel(d.Date),
			MinTemp:   convertTemp(d.MinTemp, unit),
			MaxTemp:   convertTemp(d.MaxTemp, unit),
			Condition: condition,
			Icon:      icon,
			WindMPH:   windMPH,
			Hours:     hours,
			Unit:      unit,
		})
	}
	return out
}

// Locations orders saved locations for list rendering: favorites first, then
// newest created, and attaches a display name.
func Locations(list []models.SavedLocation) []models.LocationView {
	sorted := make([]models.SavedLocation, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsFavorite != sorted[j].IsFavorite {
			return sorted[i].IsFavorite
		}
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})

	out := make([]models.LocationView, 0, len(sorted))
	for _, loc := range sorted {
		name := loc.CityName
		if loc.Country != "" {
			if name != "" {
				name = fmt.Sprintf("%s, %s", name, loc.Country)
			} else {
				name = loc.Country
			}
		}
		out = append(out, models.LocationView{SavedLocation: loc, DisplayName: name})
	}
	return out
}

// AQICategory maps a US AQI value onto its category label.
func AQICategory(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// moonPhaseNames in order across one synodic month.
var moonPhaseNames = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// MoonPhase names the lunar phase at the given instant, counted from the
// 2000-01-06 new moon.
func MoonPhase(t time.Time) string {
	const synodic = 29.53058867
	ref := time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)
	days := t.Sub(ref).Hours() / 24
	phase := days / synodic
	frac := phase - math.Floor(phase)
	idx := int(math.Floor(frac*8+0.5)) & 7
	return moonPhaseNames[idx]
}
