package repositories

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

const openMeteoForecastFixture = `{
  "latitude": 52.52,
  "longitude": 13.41,
  "utc_offset_seconds": 3600,
  "current": {
    "time": "2026-02-20T13:00",
    "temperature_2m": 10.4,
    "relative_humidity_2m": 71,
    "wind_speed_10m": 14.2,
    "weather_code": 2,
    "is_day": 1
  },
  "hourly": {
    "time": ["2026-02-20T00:00", "2026-02-20T12:00", "2026-02-20T13:00", "2026-02-21T12:00"],
    "temperature_2m": [5.0, 12.5, null, 8.0],
    "weather_code": [3, 61, 1, 999],
    "is_day": [0, 1, 1, 1]
  }
}`

func testUpstreamOptions() UpstreamOptions {
	return UpstreamOptions{Timeout: 2 * time.Second}
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func unix(t *testing.T, value string) int64 {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed.Unix()
}

func TestOpenMeteoRepository_Name(t *testing.T) {
	repo := NewOpenMeteoRepository("", "", testUpstreamOptions(), logger.NewNop())
	assert.Equal(t, "open-meteo", repo.Name())
}

func TestOpenMeteoRepository_FetchWeatherByCoordinates(t *testing.T) {
	recorder := &queryRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		recorder.record(r)
		jsonHandler(http.StatusOK, openMeteoForecastFixture)(w, r)
	}))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

	weather, err := repo.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{
		Lat:   52.52,
		Lon:   13.41,
		Units: models.UnitsMetric,
	})
	require.NoError(t, err)

	query := recorder.last()
	assert.Equal(t, "52.52", query.Get("latitude"))
	assert.Equal(t, "13.41", query.Get("longitude"))
	assert.Equal(t, "celsius", query.Get("temperature_unit"))
	assert.Equal(t, "kmh", query.Get("wind_speed_unit"))
	assert.Equal(t, "5", query.Get("forecast_days"))
	assert.Equal(t, "auto", query.Get("timezone"))
	assert.Equal(t, "temperature_2m,weather_code,is_day", query.Get("hourly"))

	assert.Equal(t, "Lat 52.52, Lon 13.41", weather.Location.Name)
	assert.Equal(t, "--", weather.Location.Country)
	assert.Equal(t, int64(3600), weather.TimezoneOffsetSeconds)

	assert.Equal(t, 10.4, weather.Current.Temperature)
	assert.Equal(t, 5.0, weather.Current.Min)
	assert.Equal(t, 12.5, weather.Current.Max)
	assert.Equal(t, "partly cloudy", weather.Current.Description)
	assert.Equal(t, "02d", weather.Current.Icon)
	assert.Equal(t, 71.0, weather.Current.Humidity)
	assert.Equal(t, 14.2, weather.Current.WindSpeed)

	// The null temperature row is skipped.
	require.Len(t, weather.ForecastSamples, 3)

	first := weather.ForecastSamples[0]
	assert.Equal(t, unix(t, "2026-02-19T23:00:00Z"), first.TimestampSeconds)
	assert.Equal(t, "overcast", first.Description)
	assert.Equal(t, "04n", first.Icon)
	assert.False(t, first.IsDaylight)

	assert.Equal(t, "light rain", weather.ForecastSamples[1].Description)
	assert.Equal(t, "10d", weather.ForecastSamples[1].Icon)

	// Unknown codes fall back to clear sky.
	assert.Equal(t, "clear sky", weather.ForecastSamples[2].Description)
	assert.Equal(t, "01d", weather.ForecastSamples[2].Icon)
}

func TestOpenMeteoRepository_FetchWeatherUsesHintAndImperialUnits(t *testing.T) {
	recorder := &queryRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder.record(r)
		jsonHandler(http.StatusOK, openMeteoForecastFixture)(w, r)
	}))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

	weather, err := repo.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{
		Lat:          52.52,
		Lon:          13.41,
		Units:        models.UnitsImperial,
		LocationHint: &models.LocationHint{Name: "  Berlin ", Country: " DE"},
	})
	require.NoError(t, err)

	assert.Equal(t, "fahrenheit", recorder.last().Get("temperature_unit"))
	assert.Equal(t, "mph", recorder.last().Get("wind_speed_unit"))
	assert.Equal(t, "Berlin", weather.Location.Name)
	assert.Equal(t, "DE", weather.Location.Country)
}

func TestOpenMeteoRepository_CurrentRangeDefaultsToCurrentTemperature(t *testing.T) {
	body := `{
	  "latitude": 1, "longitude": 2, "utc_offset_seconds": 0,
	  "current": {"time": "2026-02-20T13:00:30", "temperature_2m": 3.5, "relative_humidity_2m": 50,
	              "wind_speed_10m": 1, "weather_code": 0, "is_day": 0},
	  "hourly": {"time": ["2026-02-21T00:00"], "temperature_2m": [9], "weather_code": [0], "is_day": [0]}
	}`
	server := httptest.NewServer(jsonHandler(http.StatusOK, body))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

	weather, err := repo.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{Lat: 1, Lon: 2, Units: models.UnitsMetric})
	require.NoError(t, err)

	assert.Equal(t, 3.5, weather.Current.Min)
	assert.Equal(t, 3.5, weather.Current.Max)
	assert.Equal(t, "01n", weather.Current.Icon)
	assert.Equal(t, "Lat 1.00, Lon 2.00", weather.Location.Name)
}

func TestOpenMeteoRepository_FetchWeatherErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{
			name:       "upstream error status",
			status:     http.StatusInternalServerError,
			body:       `{"error": true, "reason": "boom"}`,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "invalid json",
			status:     http.StatusOK,
			body:       `{"latitude":`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "missing current block",
			status:     http.StatusOK,
			body:       `{"latitude": 1, "longitude": 2, "utc_offset_seconds": 0, "hourly": {"time": [], "temperature_2m": [], "weather_code": [], "is_day": []}}`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "bad local time",
			status: http.StatusOK,
			body: `{"latitude": 1, "longitude": 2, "utc_offset_seconds": 0,
			  "current": {"time": "20/02/2026 13:00", "temperature_2m": 1, "relative_humidity_2m": 1,
			              "wind_speed_10m": 1, "weather_code": 0, "is_day": 1},
			  "hourly": {"time": [], "temperature_2m": [], "weather_code": [], "is_day": []}}`,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(jsonHandler(tt.status, tt.body))
			defer server.Close()

			repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

			_, err := repo.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{Lat: 1, Lon: 2, Units: models.UnitsMetric})
			require.Error(t, err)

			var upstreamErr *UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, "open-meteo", upstreamErr.Provider)
			assert.Equal(t, tt.wantStatus, upstreamErr.StatusCode)
		})
	}
}

func TestOpenMeteoRepository_TimeoutIsGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, UpstreamOptions{Timeout: 50 * time.Millisecond}, logger.NewNop())

	_, err := repo.FetchWeatherByCoordinates(context.Background(), models.WeatherRequest{Lat: 1, Lon: 2, Units: models.UnitsMetric})

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusGatewayTimeout, upstreamErr.StatusCode)
}

func TestOpenMeteoRepository_OpenCircuitSkipsUpstream(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, UpstreamOptions{
		Timeout:                 time.Second,
		BreakerFailureThreshold: 1,
		BreakerOpenTimeout:      time.Minute,
	}, logger.NewNop())

	req := models.WeatherRequest{Lat: 1, Lon: 2, Units: models.UnitsMetric}

	_, err := repo.FetchWeatherByCoordinates(context.Background(), req)
	var first *UpstreamError
	require.ErrorAs(t, err, &first)
	assert.Equal(t, http.StatusInternalServerError, first.StatusCode)

	_, err = repo.FetchWeatherByCoordinates(context.Background(), req)
	var second *UpstreamError
	require.ErrorAs(t, err, &second)
	assert.Equal(t, http.StatusServiceUnavailable, second.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestOpenMeteoRepository_CanceledCallsDoNotOpenCircuit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		jsonHandler(http.StatusOK, openMeteoForecastFixture)(w, r)
	}))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, UpstreamOptions{
		Timeout:                 time.Second,
		BreakerFailureThreshold: 1,
		BreakerOpenTimeout:      time.Minute,
	}, logger.NewNop())

	req := models.WeatherRequest{Lat: 52.52, Lon: 13.41, Units: models.UnitsMetric}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		_, err := repo.FetchWeatherByCoordinates(canceled, req)
		require.Error(t, err)
	}

	_, err := repo.FetchWeatherByCoordinates(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestOpenMeteoRepository_SearchCities(t *testing.T) {
	recorder := &queryRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "berlin", r.URL.Query().Get("name"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		recorder.record(r)
		jsonHandler(http.StatusOK, `{"results": [
		  {"name": "Berlin", "country": "Germany", "admin1": "Land Berlin", "latitude": 52.52437, "longitude": 13.41053},
		  {"name": "Berlin", "country": "United States", "latitude": 44.46867, "longitude": -71.18508}
		]}`)(w, r)
	}))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

	cities, err := repo.SearchCities(context.Background(), "berlin", 50)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, models.ProviderCity{Name: "Berlin", State: "Land Berlin", Country: "Germany", Lat: 52.52437, Lon: 13.41053}, cities[0])
	assert.Equal(t, "", cities[1].State)

	_, err = repo.SearchCities(context.Background(), "berlin", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "1"}, recorder.values("count"))
}

func TestOpenMeteoRepository_SearchCitiesWithoutResults(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{"generationtime_ms": 0.5}`))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

	cities, err := repo.SearchCities(context.Background(), "nowhere", 5)
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestOpenMeteoRepository_SearchCitiesMalformed(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{"results": [{"name": "Berlin", "country": "Germany"}]}`))
	defer server.Close()

	repo := NewOpenMeteoRepository(server.URL, server.URL, testUpstreamOptions(), logger.NewNop())

	_, err := repo.SearchCities(context.Background(), "berlin", 5)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusBadGateway, upstreamErr.StatusCode)
}

func TestMapWeatherCode(t *testing.T) {
	tests := []struct {
		code        int
		day         bool
		description string
		icon        string
	}{
		{0, true, "clear sky", "01d"},
		{2, false, "partly cloudy", "02n"},
		{48, true, "rime fog", "50d"},
		{57, true, "freezing drizzle", "09d"},
		{82, false, "heavy rain showers", "10n"},
		{86, true, "snow showers", "13d"},
		{99, true, "severe thunderstorm with hail", "11d"},
		{42, false, "clear sky", "01n"},
	}

	for _, tt := range tests {
		description, icon := mapWeatherCode(tt.code, tt.day)
		assert.Equal(t, tt.description, description, "code %d", tt.code)
		assert.Equal(t, tt.icon, icon, "code %d", tt.code)
	}
}
