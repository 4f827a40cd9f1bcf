package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"weather-lookup/internal/forecast"
	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

const (
	OpenMeteoName           = "open-meteo"
	OpenMeteoBaseURL        = "https://api.open-meteo.com"
	OpenMeteoGeoBaseURL     = "https://geocoding-api.open-meteo.com"
	openMeteoMaxSearchCount = 10
)

type OpenMeteoRepository struct {
	forecastURL string
	searchURL   string
	client      *upstreamClient
	l           *logger.Logger
}

// NewOpenMeteoRepository builds the open-meteo adapter. Empty base URLs fall back
// to the public endpoints.
func NewOpenMeteoRepository(baseURL, geoBaseURL string, opts UpstreamOptions, l *logger.Logger) *OpenMeteoRepository {
	return &OpenMeteoRepository{
		forecastURL: joinURL(baseURL, OpenMeteoBaseURL, "/v1/forecast"),
		searchURL:   joinURL(geoBaseURL, OpenMeteoGeoBaseURL, "/v1/search"),
		client:      newUpstreamClient(OpenMeteoName, opts, l),
		l:           l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return OpenMeteoName
}

type openMeteoSearchResponse struct {
	Results []struct {
		Name      string   `json:"name" validate:"required"`
		Country   string   `json:"country"`
		Admin1    string   `json:"admin1"`
		Latitude  *float64 `json:"latitude" validate:"required"`
		Longitude *float64 `json:"longitude" validate:"required"`
	} `json:"results" validate:"dive"`
}

type openMeteoForecastResponse struct {
	Latitude         *float64 `json:"latitude" validate:"required"`
	Longitude        *float64 `json:"longitude" validate:"required"`
	UTCOffsetSeconds *int64   `json:"utc_offset_seconds" validate:"required"`
	Current          struct {
		Time        string   `json:"time" validate:"required"`
		Temperature *float64 `json:"temperature_2m" validate:"required"`
		Humidity    *float64 `json:"relative_humidity_2m" validate:"required"`
		WindSpeed   *float64 `json:"wind_speed_10m" validate:"required"`
		WeatherCode *float64 `json:"weather_code" validate:"required"`
		IsDay       *float64 `json:"is_day" validate:"required"`
	} `json:"current"`
	Hourly struct {
		Time        []string   `json:"time" validate:"required"`
		Temperature []*float64 `json:"temperature_2m" validate:"required"`
		WeatherCode []*float64 `json:"weather_code" validate:"required"`
		IsDay       []*float64 `json:"is_day" validate:"required"`
	} `json:"hourly"`
}

func (o *OpenMeteoRepository) SearchCities(ctx context.Context, query string, limit int) ([]models.ProviderCity, error) {
	count := max(1, min(limit, openMeteoMaxSearchCount))

	var response openMeteoSearchResponse
	err := o.client.getJSON(ctx, o.searchURL, map[string]string{
		"name":     query,
		"count":    strconv.Itoa(count),
		"language": "en",
		"format":   "json",
	}, &response)
	if err != nil {
		return nil, err
	}

	cities := make([]models.ProviderCity, 0, len(response.Results))
	for _, result := range response.Results {
		cities = append(cities, models.ProviderCity{
			Name:    result.Name,
			State:   result.Admin1,
			Country: result.Country,
			Lat:     *result.Latitude,
			Lon:     *result.Longitude,
		})
	}

	return cities, nil
}

func (o *OpenMeteoRepository) FetchWeatherByCoordinates(ctx context.Context, req models.WeatherRequest) (models.ProviderWeather, error) {
	temperatureUnit, windSpeedUnit := "celsius", "kmh"
	if req.Units == models.UnitsImperial {
		temperatureUnit, windSpeedUnit = "fahrenheit", "mph"
	}

	o.l.Debug("making open-meteo forecast request", map[string]any{
		"lat":   req.Lat,
		"lon":   req.Lon,
		"units": req.Units,
	})

	var response openMeteoForecastResponse
	err := o.client.getJSON(ctx, o.forecastURL, map[string]string{
		"latitude":         formatFloat(req.Lat),
		"longitude":        formatFloat(req.Lon),
		"current":          "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code,is_day",
		"hourly":           "temperature_2m,weather_code,is_day",
		"forecast_days":    strconv.Itoa(forecast.DefaultDays),
		"temperature_unit": temperatureUnit,
		"wind_speed_unit":  windSpeedUnit,
		"timezone":         "auto",
	}, &response)
	if err != nil {
		return models.ProviderWeather{}, err
	}

	offset := *response.UTCOffsetSeconds

	samples, err := o.hourlySamples(response, offset)
	if err != nil {
		return models.ProviderWeather{}, err
	}

	currentTimestamp, err := o.parseLocalTime(response.Current.Time, offset)
	if err != nil {
		return models.ProviderWeather{}, err
	}

	current := response.Current
	temperature := *current.Temperature
	description, icon := mapWeatherCode(int(*current.WeatherCode), *current.IsDay == 1)
	dayMin, dayMax := sameDayRange(currentTimestamp, samples, offset, temperature)

	lat, lon := *response.Latitude, *response.Longitude

	name := req.LocationHint.TrimmedName()
	if name == "" {
		name = fmt.Sprintf("Lat %.2f, Lon %.2f", lat, lon)
	}
	country := req.LocationHint.TrimmedCountry()
	if country == "" {
		country = "--"
	}

	return models.ProviderWeather{
		Location: models.ProviderLocation{
			Name:    name,
			Country: country,
			Lat:     lat,
			Lon:     lon,
		},
		TimezoneOffsetSeconds: offset,
		Current: models.ProviderCurrent{
			Temperature: temperature,
			Min:         dayMin,
			Max:         dayMax,
			Description: description,
			Icon:        icon,
			Humidity:    *current.Humidity,
			WindSpeed:   *current.WindSpeed,
		},
		ForecastSamples: samples,
	}, nil
}

// hourlySamples zips the hourly columns into samples, skipping rows with a null value.
func (o *OpenMeteoRepository) hourlySamples(response openMeteoForecastResponse, offset int64) ([]models.ForecastSample, error) {
	hourly := response.Hourly
	size := min(len(hourly.Time), len(hourly.Temperature), len(hourly.WeatherCode), len(hourly.IsDay))

	samples := make([]models.ForecastSample, 0, size)
	for i := 0; i < size; i++ {
		temperature, code, isDay := hourly.Temperature[i], hourly.WeatherCode[i], hourly.IsDay[i]
		if temperature == nil || code == nil || isDay == nil {
			continue
		}

		timestamp, err := o.parseLocalTime(hourly.Time[i], offset)
		if err != nil {
			return nil, err
		}

		isDaylight := *isDay == 1
		description, icon := mapWeatherCode(int(*code), isDaylight)

		samples = append(samples, models.ForecastSample{
			TimestampSeconds: timestamp,
			MinTemperature:   *temperature,
			MaxTemperature:   *temperature,
			Description:      description,
			Icon:             icon,
			IsDaylight:       isDaylight,
		})
	}

	return samples, nil
}

// parseLocalTime converts a local ISO time without zone into unix seconds.
func (o *OpenMeteoRepository) parseLocalTime(value string, offset int64) (int64, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if naive, err := time.Parse(layout, value); err == nil {
			return naive.Unix() - offset, nil
		}
	}

	return 0, newMalformedPayloadError(OpenMeteoName, fmt.Errorf("invalid local time %q", value))
}

// sameDayRange folds the samples sharing the local date of the current timestamp.
// Without any, both bounds are the current temperature.
func sameDayRange(currentTimestamp int64, samples []models.ForecastSample, offset int64, fallback float64) (float64, float64) {
	today := forecast.LocalDateKey(currentTimestamp, offset)

	found := false
	dayMin, dayMax := fallback, fallback
	for _, s := range samples {
		if forecast.LocalDateKey(s.TimestampSeconds, offset) != today {
			continue
		}
		if !found {
			dayMin, dayMax = s.MinTemperature, s.MaxTemperature
			found = true
			continue
		}
		dayMin = min(dayMin, s.MinTemperature)
		dayMax = max(dayMax, s.MaxTemperature)
	}

	return dayMin, dayMax
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
