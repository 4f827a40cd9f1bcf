package models

// WeatherView is the normalized weather response returned to callers and cached.
type WeatherView struct {
	Location      ViewLocation   `json:"location"`
	Units         Units          `json:"units" example:"metric"`
	Current       CurrentWeather `json:"current"`
	ForecastDaily []ForecastDay  `json:"forecastDaily"`
}

type ViewLocation struct {
	Name    string  `json:"name" example:"Berlin"`
	Country string  `json:"country" example:"DE"`
	Lat     float64 `json:"lat" example:"52.52"`
	Lon     float64 `json:"lon" example:"13.41"`
}

type CurrentWeather struct {
	Temperature int     `json:"temperature" example:"18"`
	Min         int     `json:"min" example:"12"`
	Max         int     `json:"max" example:"21"`
	Description string  `json:"description" example:"partly cloudy"`
	Icon        string  `json:"icon" example:"02d"`
	Humidity    float64 `json:"humidity" example:"64"`
	WindSpeed   float64 `json:"windSpeed" example:"11.2"`
}

// ForecastDay is one aggregated forecast day in the location's local calendar.
type ForecastDay struct {
	Date        string `json:"date" example:"2026-02-20"`
	Label       string `json:"label" example:"Today"`
	Min         int    `json:"min" example:"7"`
	Max         int    `json:"max" example:"18"`
	Icon        string `json:"icon" example:"01d"`
	Description string `json:"description" example:"clear sky"`
}

// WithLocationHint returns a copy of the view whose location name and country are
// replaced by the non-blank parts of the hint. The forecast slice is copied so the
// result can be handed out without sharing backing arrays.
func (v WeatherView) WithLocationHint(hint *LocationHint) WeatherView {
	out := v
	out.ForecastDaily = append([]ForecastDay(nil), v.ForecastDaily...)

	if name := hint.TrimmedName(); name != "" {
		out.Location.Name = name
	}
	if country := hint.TrimmedCountry(); country != "" {
		out.Location.Country = country
	}

	return out
}
