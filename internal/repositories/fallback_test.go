package repositories

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

// MockRepository implements WeatherRepository for testing
type MockRepository struct {
	name        string
	cities      []models.ProviderCity
	weather     models.ProviderWeather
	err         error
	searchCalls []string
	fetchCalls  []models.WeatherRequest
}

func (m *MockRepository) Name() string {
	return m.name
}

func (m *MockRepository) SearchCities(_ context.Context, query string, _ int) ([]models.ProviderCity, error) {
	m.searchCalls = append(m.searchCalls, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.cities, nil
}

func (m *MockRepository) FetchWeatherByCoordinates(_ context.Context, req models.WeatherRequest) (models.ProviderWeather, error) {
	m.fetchCalls = append(m.fetchCalls, req)
	if m.err != nil {
		return models.ProviderWeather{}, m.err
	}
	return m.weather, nil
}

func TestFallbackRepository_Name(t *testing.T) {
	f := NewFallbackRepository(&MockRepository{name: "open-weather"}, &MockRepository{name: "open-meteo"}, logger.NewNop())
	assert.Equal(t, "open-weather+open-meteo", f.Name())
}

func TestFallbackRepository_PrimarySuccessSkipsSecondary(t *testing.T) {
	primary := &MockRepository{name: "p", cities: []models.ProviderCity{}}
	secondary := &MockRepository{name: "s", cities: []models.ProviderCity{{Name: "Berlin"}}}
	f := NewFallbackRepository(primary, secondary, logger.NewNop())

	cities, err := f.SearchCities(context.Background(), "berlin", 5)

	require.NoError(t, err)
	assert.Empty(t, cities)
	assert.Len(t, primary.searchCalls, 1)
	assert.Empty(t, secondary.searchCalls)

	weather, err := f.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{Lat: 1, Lon: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderWeather{}, weather)
	assert.Empty(t, secondary.fetchCalls)
}

func TestFallbackRepository_PrimaryFailureUsesSecondaryWithSameInput(t *testing.T) {
	primary := &MockRepository{name: "p", err: &ConfigurationError{Provider: "p", Message: "missing key"}}
	secondary := &MockRepository{
		name:    "s",
		cities:  []models.ProviderCity{{Name: "Berlin"}},
		weather: models.ProviderWeather{Location: models.ProviderLocation{Name: "Berlin"}},
	}
	f := NewFallbackRepository(primary, secondary, logger.NewNop())

	cities, err := f.SearchCities(context.Background(), "berlin", 5)
	require.NoError(t, err)
	assert.Equal(t, []models.ProviderCity{{Name: "Berlin"}}, cities)
	assert.Equal(t, []string{"berlin"}, secondary.searchCalls)

	req := models.WeatherRequest{Lat: 52.52, Lon: 13.41, Units: models.UnitsImperial, LocationHint: &models.LocationHint{Name: "Berlin"}}
	weather, err := f.FetchWeatherByCoordinates(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", weather.Location.Name)
	require.Len(t, secondary.fetchCalls, 1)
	assert.Equal(t, req, secondary.fetchCalls[0])
}

func TestFallbackRepository_BothFailReturnsSecondaryError(t *testing.T) {
	primaryErr := &UpstreamError{Provider: "p", StatusCode: http.StatusInternalServerError}
	secondaryErr := &UpstreamError{Provider: "s", StatusCode: http.StatusBadGateway}
	primary := &MockRepository{name: "p", err: primaryErr}
	secondary := &MockRepository{name: "s", err: secondaryErr}
	f := NewFallbackRepository(primary, secondary, logger.NewNop())

	_, err := f.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{})
	assert.Same(t, secondaryErr, err)

	_, err = f.SearchCities(context.Background(), "x", 1)
	assert.Same(t, secondaryErr, err)

	assert.Len(t, primary.fetchCalls, 1)
	assert.Len(t, secondary.fetchCalls, 1)
}

func TestFallbackRepository_RecoversFromAnyError(t *testing.T) {
	primary := &MockRepository{name: "p", err: errors.New("plain failure")}
	secondary := &MockRepository{name: "s"}
	f := NewFallbackRepository(primary, secondary, logger.NewNop())

	_, err := f.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{})
	require.NoError(t, err)
	assert.Len(t, secondary.fetchCalls, 1)
}
