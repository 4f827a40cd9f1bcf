package repositories

import (
	"context"

	"weather-lookup/internal/models"
)

// WeatherRepository is the port every weather provider adapter implements.
// Failures are reported as *ConfigurationError or *UpstreamError.
type WeatherRepository interface {
	Name() string
	SearchCities(ctx context.Context, query string, limit int) ([]models.ProviderCity, error)
	FetchWeatherByCoordinates(ctx context.Context, req models.WeatherRequest) (models.ProviderWeather, error)
}
