package repositories

type weatherVisual struct {
	description string
	iconBase    string
}

var defaultWeatherVisual = weatherVisual{description: "clear sky", iconBase: "01"}

// WMO weather interpretation codes.
var openMeteoWeatherCodes = map[int]weatherVisual{
	0:  {"clear sky", "01"},
	1:  {"mainly clear", "02"},
	2:  {"partly cloudy", "02"},
	3:  {"overcast", "04"},
	45: {"fog", "50"},
	48: {"rime fog", "50"},
	51: {"light drizzle", "09"},
	53: {"drizzle", "09"},
	55: {"dense drizzle", "09"},
	56: {"light freezing drizzle", "09"},
	57: {"freezing drizzle", "09"},
	61: {"light rain", "10"},
	63: {"rain", "10"},
	65: {"heavy rain", "10"},
	66: {"light freezing rain", "10"},
	67: {"freezing rain", "10"},
	71: {"light snow", "13"},
	73: {"snow", "13"},
	75: {"heavy snow", "13"},
	77: {"snow grains", "13"},
	80: {"light rain showers", "10"},
	81: {"rain showers", "10"},
	82: {"heavy rain showers", "10"},
	85: {"light snow showers", "13"},
	86: {"snow showers", "13"},
	95: {"thunderstorm", "11"},
	96: {"thunderstorm with hail", "11"},
	99: {"severe thunderstorm with hail", "11"},
}

// mapWeatherCode returns the description and the day or night icon for a code.
// Unknown codes map to clear sky.
func mapWeatherCode(code int, isDaylight bool) (description, icon string) {
	visual, ok := openMeteoWeatherCodes[code]
	if !ok {
		visual = defaultWeatherVisual
	}

	suffix := "n"
	if isDaylight {
		suffix = "d"
	}

	return visual.description, visual.iconBase + suffix
}
