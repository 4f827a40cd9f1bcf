package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

const (
	OpenWeatherName           = "open-weather"
	OpenWeatherBaseURL        = "https://api.openweathermap.org"
	openWeatherMaxSearchLimit = 5
	openWeatherForecastCount  = "40"
)

type OpenWeatherRepository struct {
	apiKey      string
	currentURL  string
	forecastURL string
	geocodeURL  string
	client      *upstreamClient
	l           *logger.Logger
}

// NewOpenWeatherRepository builds the OpenWeather adapter. A blank key is a
// *ConfigurationError.
func NewOpenWeatherRepository(apiKey, baseURL, geoBaseURL string, opts UpstreamOptions, l *logger.Logger) (*OpenWeatherRepository, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &ConfigurationError{Provider: OpenWeatherName, Message: "OpenWeather API key is required"}
	}

	return &OpenWeatherRepository{
		apiKey:      apiKey,
		currentURL:  joinURL(baseURL, OpenWeatherBaseURL, "/data/2.5/weather"),
		forecastURL: joinURL(baseURL, OpenWeatherBaseURL, "/data/2.5/forecast"),
		geocodeURL:  joinURL(geoBaseURL, OpenWeatherBaseURL, "/geo/1.0/direct"),
		client:      newUpstreamClient(OpenWeatherName, opts, l),
		l:           l,
	}, nil
}

func (w *OpenWeatherRepository) Name() string {
	return OpenWeatherName
}

type openWeatherGeocodeEntry struct {
	Name    string   `json:"name" validate:"required"`
	State   string   `json:"state"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"required"`
	Lon     *float64 `json:"lon" validate:"required"`
}

type openWeatherCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type openWeatherCurrentResponse struct {
	Coord struct {
		Lat *float64 `json:"lat" validate:"required"`
		Lon *float64 `json:"lon" validate:"required"`
	} `json:"coord"`
	Weather []openWeatherCondition `json:"weather" validate:"required"`
	Main    struct {
		Temp     *float64 `json:"temp" validate:"required"`
		TempMin  *float64 `json:"temp_min" validate:"required"`
		TempMax  *float64 `json:"temp_max" validate:"required"`
		Humidity *float64 `json:"humidity" validate:"required"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed" validate:"required"`
	} `json:"wind"`
	Timezone *int64 `json:"timezone" validate:"required"`
	Name     string `json:"name"`
	Sys      struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt *int64 `json:"dt" validate:"required"`
}

type openWeatherForecastResponse struct {
	List []struct {
		Dt   *int64 `json:"dt" validate:"required"`
		Main struct {
			TempMin *float64 `json:"temp_min" validate:"required"`
			TempMax *float64 `json:"temp_max" validate:"required"`
		} `json:"main"`
		Weather []openWeatherCondition `json:"weather" validate:"required"`
		Sys     struct {
			Pod string `json:"pod" validate:"required,oneof=d n"`
		} `json:"sys"`
	} `json:"list" validate:"required,dive"`
}

func (w *OpenWeatherRepository) SearchCities(ctx context.Context, query string, limit int) ([]models.ProviderCity, error) {
	body, err := w.client.get(ctx, w.geocodeURL, map[string]string{
		"q":     query,
		"limit": strconv.Itoa(max(1, min(limit, openWeatherMaxSearchLimit))),
		"appid": w.apiKey,
	})
	if err != nil {
		return nil, err
	}

	var entries []openWeatherGeocodeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, newMalformedPayloadError(OpenWeatherName, fmt.Errorf("decode payload: %w", err))
	}

	cities := make([]models.ProviderCity, 0, len(entries))
	for _, entry := range entries {
		if err := validate.Struct(entry); err != nil {
			return nil, newMalformedPayloadError(OpenWeatherName, fmt.Errorf("unexpected payload: %w", err))
		}

		cities = append(cities, models.ProviderCity{
			Name:    entry.Name,
			State:   entry.State,
			Country: entry.Country,
			Lat:     *entry.Lat,
			Lon:     *entry.Lon,
		})
	}

	return cities, nil
}

func (w *OpenWeatherRepository) FetchWeatherByCoordinates(ctx context.Context, req models.WeatherRequest) (models.ProviderWeather, error) {
	units := string(models.UnitsMetric)
	if req.Units == models.UnitsImperial {
		units = string(models.UnitsImperial)
	}

	params := map[string]string{
		"lat":   formatFloat(req.Lat),
		"lon":   formatFloat(req.Lon),
		"units": units,
		"appid": w.apiKey,
	}
	forecastParams := map[string]string{"cnt": openWeatherForecastCount}
	for k, v := range params {
		forecastParams[k] = v
	}

	w.l.Debug("making open-weather requests", map[string]any{
		"lat":   req.Lat,
		"lon":   req.Lon,
		"units": units,
	})

	var (
		current  openWeatherCurrentResponse
		forecast openWeatherForecastResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.client.getJSON(gctx, w.currentURL, params, &current)
	})
	g.Go(func() error {
		return w.client.getJSON(gctx, w.forecastURL, forecastParams, &forecast)
	})
	if err := g.Wait(); err != nil {
		return models.ProviderWeather{}, err
	}

	samples := make([]models.ForecastSample, 0, len(forecast.List))
	for _, item := range forecast.List {
		isDaylight := item.Sys.Pod == "d"
		fallbackIcon := "01n"
		if isDaylight {
			fallbackIcon = "01d"
		}
		description, icon := primaryCondition(item.Weather, fallbackIcon)

		samples = append(samples, models.ForecastSample{
			TimestampSeconds: *item.Dt,
			MinTemperature:   *item.Main.TempMin,
			MaxTemperature:   *item.Main.TempMax,
			Description:      description,
			Icon:             icon,
			IsDaylight:       isDaylight,
		})
	}

	name := req.LocationHint.TrimmedName()
	if name == "" {
		name = current.Name
	}
	country := req.LocationHint.TrimmedCountry()
	if country == "" {
		country = current.Sys.Country
	}

	description, icon := primaryCondition(current.Weather, "01d")

	return models.ProviderWeather{
		Location: models.ProviderLocation{
			Name:    name,
			Country: country,
			Lat:     *current.Coord.Lat,
			Lon:     *current.Coord.Lon,
		},
		TimezoneOffsetSeconds: *current.Timezone,
		Current: models.ProviderCurrent{
			Temperature: *current.Main.Temp,
			Min:         *current.Main.TempMin,
			Max:         *current.Main.TempMax,
			Description: description,
			Icon:        icon,
			Humidity:    *current.Main.Humidity,
			WindSpeed:   *current.Wind.Speed,
		},
		ForecastSamples: samples,
	}, nil
}

// primaryCondition reads the first condition entry. Without one the sample is
// described as clear sky.
func primaryCondition(conditions []openWeatherCondition, fallbackIcon string) (string, string) {
	if len(conditions) == 0 {
		return "clear sky", fallbackIcon
	}
	return conditions[0].Description, conditions[0].Icon
}
