package datasource

// Condition is the display triple a WMO weather code maps to.
type Condition struct {
	Description string
	Main        string
	Icon        string
}

// wmoConditions maps the WMO interpretation codes used by the coordinate
// fallback provider to display conditions. This table is the single source of
// truth for fallback condition semantics; codes it does not list resolve to
// the clear-sky default.
var wmoConditions = map[int]Condition{
	0:  {"clear sky", "Clear", "01d"},
	1:  {"mainly clear", "Clear", "02d"},
	2:  {"partly cloudy", "Clouds", "03d"},
	3:  {"overcast", "Clouds", "04d"},
	45: {"fog", "Fog", "50d"},
	48: {"depositing rime fog", "Fog", "50d"},
	51: {"light drizzle", "Drizzle", "09d"},
	53: {"moderate drizzle", "Drizzle", "09d"},
	55: {"dense drizzle", "Drizzle", "09d"},
	56: {"freezing drizzle", "Drizzle", "09d"},
	57: {"dense freezing drizzle", "Drizzle", "09d"},
	61: {"slight rain", "Rain", "10d"},
	63: {"moderate rain", "Rain", "10d"},
	65: {"heavy rain", "Rain", "10d"},
	66: {"light freezing rain", "Rain", "10d"},
	67: {"heavy freezing rain", "Rain", "10d"},
	71: {"slight snow fall", "Snow", "13d"},
	73: {"moderate snow fall", "Snow", "13d"},
	75: {"heavy snow fall", "Snow", "13d"},
	77: {"snow grains", "Snow", "13d"},
	80: {"slight rain showers", "Rain", "09d"},
	81: {"moderate rain showers", "Rain", "09d"},
	82: {"violent rain showers", "Rain", "09d"},
	85: {"slight snow showers", "Snow", "13d"},
	86: {"heavy snow showers", "Snow", "13d"},
	95: {"thunderstorm", "Thunderstorm", "11d"},
	96: {"thunderstorm with hail", "Thunderstorm", "11d"},
	99: {"thunderstorm with heavy hail", "Thunderstorm", "11d"},
}

// defaultCondition is returned for any unmapped code.
var defaultCondition = Condition{Description: "clear sky", Main: "Clear", Icon: "01d"}

// ConditionForCode looks up the display condition for a WMO weather code.
func ConditionForCode(code int) Condition {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return defaultCondition
}
