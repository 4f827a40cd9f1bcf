package models

import "strings"

// LocationHint carries the name the user actually picked for a set of coordinates.
type LocationHint struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// TrimmedName returns the hint name without surrounding whitespace. A nil hint yields "".
func (h *LocationHint) TrimmedName() string {
	if h == nil {
		return ""
	}
	return strings.TrimSpace(h.Name)
}

// TrimmedCountry returns the hint country without surrounding whitespace. A nil hint yields "".
func (h *LocationHint) TrimmedCountry() string {
	if h == nil {
		return ""
	}
	return strings.TrimSpace(h.Country)
}

// WeatherRequest is the input of a coordinates lookup against a repository.
type WeatherRequest struct {
	Lat          float64
	Lon          float64
	Units        Units
	LocationHint *LocationHint
}

// ForecastSample is one upstream forecast granule (hourly or 3-hourly).
type ForecastSample struct {
	TimestampSeconds int64
	MinTemperature   float64
	MaxTemperature   float64
	Description      string
	Icon             string
	IsDaylight       bool
}

type ProviderLocation struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

type ProviderCurrent struct {
	Temperature float64
	Min         float64
	Max         float64
	Description string
	Icon        string
	Humidity    float64
	WindSpeed   float64
}

// ProviderWeather is the normalized result of a repository weather fetch, before
// aggregation and rounding.
type ProviderWeather struct {
	Location              ProviderLocation
	TimezoneOffsetSeconds int64
	Current               ProviderCurrent
	ForecastSamples       []ForecastSample
}
