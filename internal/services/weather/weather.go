package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"weather-lookup/internal/cache"
	"weather-lookup/internal/forecast"
	"weather-lookup/internal/models"
	"weather-lookup/internal/repositories"
	"weather-lookup/pkg/logger"
)

const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCitySearchLimit = 5
	// DefaultSharedFetchTimeout bounds a deduplicated fetch, which outlives the
	// caller that started it.
	DefaultSharedFetchTimeout = 30 * time.Second

	todayLabel = "Today"
)

// ValidationError reports malformed caller input. It is returned before any
// upstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Options struct {
	// CacheTTL of zero or less disables caching.
	CacheTTL        time.Duration
	ForecastDays    int
	CitySearchLimit int
	// DedupeInFlight shares one upstream fetch between concurrent identical lookups.
	DedupeInFlight     bool
	SharedFetchTimeout time.Duration
	Now                func() time.Time
}

// WeatherService is the single entry point for weather and city lookups.
type WeatherService struct {
	resolver *repositories.Resolver
	cache    *cache.TTL[models.WeatherView]
	opts     Options
	inflight singleflight.Group
	validate *validator.Validate
	l        *logger.Logger
}

func NewWeatherService(
	resolver *repositories.Resolver,
	viewCache *cache.TTL[models.WeatherView],
	opts Options,
	l *logger.Logger,
) *WeatherService {
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = forecast.DefaultDays
	}
	if opts.CitySearchLimit <= 0 {
		opts.CitySearchLimit = DefaultCitySearchLimit
	}
	if opts.SharedFetchTimeout <= 0 {
		opts.SharedFetchTimeout = DefaultSharedFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if viewCache == nil {
		viewCache = cache.New[models.WeatherView]()
	}

	return &WeatherService{
		resolver: resolver,
		cache:    viewCache,
		opts:     opts,
		validate: validator.New(),
		l:        l,
	}
}

type weatherQuery struct {
	Lat   float64 `validate:"gte=-90,lte=90"`
	Lon   float64 `validate:"gte=-180,lte=180"`
	Units string  `validate:"oneof=metric imperial"`
}

func (s *WeatherService) validateQuery(lat, lon float64, units models.Units) error {
	for _, c := range []struct {
		field string
		value float64
	}{{"lat", lat}, {"lon", lon}} {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ValidationError{Field: c.field, Message: "must be a finite number"}
		}
	}

	err := s.validate.Struct(weatherQuery{Lat: lat, Lon: lon, Units: string(units)})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "query", Message: err.Error()}
	}

	switch fe := fieldErrs[0]; fe.Field() {
	case "Lat":
		return &ValidationError{Field: "lat", Message: "must be between -90 and 90"}
	case "Lon":
		return &ValidationError{Field: "lon", Message: "must be between -180 and 180"}
	default:
		return &ValidationError{Field: "units", Message: fmt.Sprintf("unsupported value %q", units)}
	}
}

func cacheKey(lat, lon float64, units models.Units) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ":" +
		strconv.FormatFloat(lon, 'f', -1, 64) + ":" + string(units)
}

// GetWeather returns current conditions and the daily forecast for the
// coordinates. Cached views are shared by every hint; the hint only patches the
// returned location name and country.
func (s *WeatherService) GetWeather(ctx context.Context, lat, lon float64, units models.Units, hint *models.LocationHint) (models.WeatherView, error) {
	if err := s.validateQuery(lat, lon, units); err != nil {
		return models.WeatherView{}, err
	}

	key := cacheKey(lat, lon, units)

	if s.opts.CacheTTL > 0 {
		if view, ok := s.cache.Get(key); ok {
			s.l.Debug("weather cache hit", map[string]any{"key": key})
			return view.WithLocationHint(hint), nil
		}
	}

	var (
		view models.WeatherView
		err  error
	)
	if s.opts.DedupeInFlight {
		view, err = s.sharedFetch(ctx, key, lat, lon, units)
	} else {
		view, err = s.fetchAndStore(ctx, key, lat, lon, units)
	}
	if err != nil {
		return models.WeatherView{}, err
	}

	return view.WithLocationHint(hint), nil
}

// sharedFetch joins or starts the in-flight fetch for key. The fetch is detached
// from ctx and bounded by SharedFetchTimeout. Each caller stops waiting when its
// own ctx is done.
func (s *WeatherService) sharedFetch(ctx context.Context, key string, lat, lon float64, units models.Units) (models.WeatherView, error) {
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.SharedFetchTimeout)
		defer cancel()

		return s.fetchAndStore(fetchCtx, key, lat, lon, units)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.WeatherView{}, res.Err
		}
		return res.Val.(models.WeatherView), nil
	case <-ctx.Done():
		return models.WeatherView{}, ctx.Err()
	}
}

func (s *WeatherService) fetchAndStore(ctx context.Context, key string, lat, lon float64, units models.Units) (models.WeatherView, error) {
	repo, err := s.resolver.Get()
	if err != nil {
		return models.WeatherView{}, err
	}

	s.l.Info("fetching weather", map[string]any{
		"provider": repo.Name(),
		"lat":      lat,
		"lon":      lon,
		"units":    units,
	})

	raw, err := repo.FetchWeatherByCoordinates(ctx, models.WeatherRequest{
		Lat:   lat,
		Lon:   lon,
		Units: units,
	})
	if err != nil {
		return models.WeatherView{}, err
	}

	view := s.normalize(raw, units)

	if s.opts.CacheTTL > 0 {
		s.cache.Set(key, view, s.opts.CacheTTL)
	}

	return view, nil
}

func (s *WeatherService) normalize(raw models.ProviderWeather, units models.Units) models.WeatherView {
	offset := raw.TimezoneOffsetSeconds
	today := forecast.LocalDateKey(s.opts.Now().Unix(), offset)

	days := forecast.AggregateByDay(raw.ForecastSamples, offset, s.opts.ForecastDays)
	daily := make([]models.ForecastDay, 0, len(days))
	for _, day := range days {
		daily = append(daily, models.ForecastDay{
			Date:        day.Date,
			Label:       dayLabel(day.Date, today),
			Min:         roundTemperature(day.Min),
			Max:         roundTemperature(day.Max),
			Icon:        day.Icon,
			Description: day.Description,
		})
	}

	return models.WeatherView{
		Location: models.ViewLocation{
			Name:    raw.Location.Name,
			Country: raw.Location.Country,
			Lat:     raw.Location.Lat,
			Lon:     raw.Location.Lon,
		},
		Units: units,
		Current: models.CurrentWeather{
			Temperature: roundTemperature(raw.Current.Temperature),
			Min:         roundTemperature(raw.Current.Min),
			Max:         roundTemperature(raw.Current.Max),
			Description: raw.Current.Description,
			Icon:        raw.Current.Icon,
			Humidity:    raw.Current.Humidity,
			WindSpeed:   raw.Current.WindSpeed,
		},
		ForecastDaily: daily,
	}
}

func dayLabel(date, today string) string {
	if date == today {
		return todayLabel
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}

	return parsed.Weekday().String()
}

// roundTemperature rounds half up, so -0.5 becomes 0.
func roundTemperature(v float64) int {
	return int(math.Floor(v + 0.5))
}

// SearchCities returns deduplicated candidates for the query. A blank query
// returns an empty list without calling the provider.
func (s *WeatherService) SearchCities(ctx context.Context, query string) ([]models.CityCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.CityCandidate{}, nil
	}

	repo, err := s.resolver.Get()
	if err != nil {
		return nil, err
	}

	entries, err := repo.SearchCities(ctx, query, s.opts.CitySearchLimit)
	if err != nil {
		return nil, err
	}

	return models.MapCityCandidates(entries), nil
}

// ClearCache drops every cached weather view.
func (s *WeatherService) ClearCache() {
	s.cache.Clear()
}
