package repositories

import (
	"context"

	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

// FallbackRepository tries the primary repository and, on any error, repeats the
// same call on the secondary. It keeps no memory of past failures.
type FallbackRepository struct {
	primary   WeatherRepository
	secondary WeatherRepository
	l         *logger.Logger
}

func NewFallbackRepository(primary, secondary WeatherRepository, l *logger.Logger) *FallbackRepository {
	return &FallbackRepository{
		primary:   primary,
		secondary: secondary,
		l:         l,
	}
}

func (f *FallbackRepository) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *FallbackRepository) SearchCities(ctx context.Context, query string, limit int) ([]models.ProviderCity, error) {
	cities, err := f.primary.SearchCities(ctx, query, limit)
	if err == nil {
		return cities, nil
	}

	f.logFallback("search cities", err)

	return f.secondary.SearchCities(ctx, query, limit)
}

func (f *FallbackRepository) FetchWeatherByCoordinates(ctx context.Context, req models.WeatherRequest) (models.ProviderWeather, error) {
	weather, err := f.primary.FetchWeatherByCoordinates(ctx, req)
	if err == nil {
		return weather, nil
	}

	f.logFallback("fetch weather", err)

	return f.secondary.FetchWeatherByCoordinates(ctx, req)
}

func (f *FallbackRepository) logFallback(operation string, err error) {
	f.l.Warning("primary weather provider failed, using secondary", map[string]any{
		"operation": operation,
		"provider":  f.primary.Name(),
		"secondary": f.secondary.Name(),
		"err":       err,
	})
}
