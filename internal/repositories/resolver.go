package repositories

import (
	"sync"

	"weather-lookup/config"
	"weather-lookup/pkg/logger"
)

// BuildFunc constructs the active repository.
type BuildFunc func() (WeatherRepository, error)

// Resolver owns the single active repository. It is built lazily on first use and
// reused afterwards. A failed build is not remembered.
type Resolver struct {
	mu    sync.Mutex
	build BuildFunc
	repo  WeatherRepository
}

func NewResolver(build BuildFunc) *Resolver {
	return &Resolver{build: build}
}

// NewStaticResolver always resolves to repo.
func NewStaticResolver(repo WeatherRepository) *Resolver {
	return &Resolver{
		build: func() (WeatherRepository, error) { return repo, nil },
	}
}

func (r *Resolver) Get() (WeatherRepository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo != nil {
		return r.repo, nil
	}

	repo, err := r.build()
	if err != nil {
		return nil, err
	}
	r.repo = repo

	return repo, nil
}

// Reset drops the built repository so the next Get rebuilds it.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.repo = nil
}

var defaultProviderOrder = []config.WeatherAPIConfig{
	{Name: OpenWeatherName},
	{Name: OpenMeteoName},
}

// NewRepositoryFromConfig builds the repository chain from the configured provider
// list, in order. OpenWeather without a key is skipped. Several providers are
// chained with FallbackRepository, the first one being tried first.
func NewRepositoryFromConfig(cfg *config.Config, l *logger.Logger) (WeatherRepository, error) {
	apis := cfg.GetWeatherAPIs()
	if len(apis) == 0 {
		apis = defaultProviderOrder
	}

	opts := UpstreamOptions{
		Timeout:                 cfg.UpstreamTimeout(),
		BreakerFailureThreshold: cfg.Breaker.FailureThreshold,
		BreakerOpenTimeout:      cfg.BreakerOpenTimeout(),
	}

	var repos []WeatherRepository
	for _, api := range apis {
		switch api.Name {
		case OpenMeteoName:
			repos = append(repos, NewOpenMeteoRepository(api.BaseURL, api.GeoBaseURL, opts, l))
		case OpenWeatherName:
			key := cfg.OpenWeatherAPIKey()
			if key == "" {
				l.Warning("skipping weather provider without API key", map[string]any{"provider": api.Name})
				continue
			}
			repo, err := NewOpenWeatherRepository(key, api.BaseURL, api.GeoBaseURL, opts, l)
			if err != nil {
				return nil, err
			}
			repos = append(repos, repo)
		default:
			l.Warning("skipping unknown weather provider", map[string]any{"provider": api.Name})
		}
	}

	if len(repos) == 0 {
		return nil, &ConfigurationError{Provider: "weather", Message: "no weather provider is configured"}
	}

	// Fold from the back so the first provider ends up outermost.
	repo := repos[len(repos)-1]
	for i := len(repos) - 2; i >= 0; i-- {
		repo = NewFallbackRepository(repos[i], repo, l)
	}

	l.Info("weather provider resolved", map[string]any{"provider": repo.Name()})

	return repo, nil
}
