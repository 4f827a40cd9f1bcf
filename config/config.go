package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"
	DefaultEnvPath    = ".env"

	envProduction  = "production"
	envDevelopment = "development"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Weather  WeatherConfig  `yaml:"weather"`
	Security SecurityConfig `yaml:"security"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Sentry   SentryConfig   `yaml:"sentry"`
}

type AppConfig struct {
	Name    string `yaml:"-" envconfig:"APP_NAME" default:"weather-lookup" validate:"required"`
	Version string `yaml:"-" envconfig:"APP_VERSION" default:"1.0.0"`
	Env     string `yaml:"-" envconfig:"APP_ENV" default:"development"`
}

type ServerConfig struct {
	Port string `yaml:"-" envconfig:"SERVER_PORT" default:"8080" validate:"required"`
	// Timeouts are in seconds.
	ReadTimeout  int `yaml:"-" envconfig:"SERVER_READ_TIMEOUT" default:"10" validate:"gte=0"`
	WriteTimeout int `yaml:"-" envconfig:"SERVER_WRITE_TIMEOUT" default:"10" validate:"gte=0"`
	IdleTimeout  int `yaml:"-" envconfig:"SERVER_IDLE_TIMEOUT" default:"120" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"-" envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"-" envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

type WeatherConfig struct {
	// APIs is the ordered provider list. The first entry is the primary.
	APIs []WeatherAPIConfig `yaml:"apis" ignored:"true" validate:"dive"`

	CacheTTLSeconds   int    `yaml:"-" envconfig:"CACHE_TTL_SECONDS" default:"300"`
	ForecastDays      int    `yaml:"-" envconfig:"FORECAST_DAYS" default:"5" validate:"gte=1,lte=16"`
	CitySearchLimit   int    `yaml:"-" envconfig:"CITY_SEARCH_LIMIT" default:"5" validate:"gte=1,lte=10"`
	TimeoutSeconds    int    `yaml:"-" envconfig:"WEATHER_TIMEOUT_SECONDS" default:"10" validate:"gte=1"`
	DedupeInFlight    bool   `yaml:"-" envconfig:"WEATHER_DEDUPE_INFLIGHT" default:"false"`
	OpenWeatherAPIKey string `yaml:"-" envconfig:"OPENWEATHER_API_KEY"`
}

type WeatherAPIConfig struct {
	Name       string `yaml:"name" validate:"required,oneof=open-meteo open-weather"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	GeoBaseURL string `yaml:"geo_base_url,omitempty" validate:"omitempty,url"`
}

type SecurityConfig struct {
	AccessToken          string `yaml:"-" envconfig:"APP_ACCESS_TOKEN"`
	RateLimitWindowMs    int    `yaml:"-" envconfig:"RATE_LIMIT_WINDOW_MS" default:"60000" validate:"gte=1"`
	RateLimitMaxRequests int    `yaml:"-" envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"60" validate:"gte=1"`
}

type BreakerConfig struct {
	// FailureThreshold is the number of consecutive upstream failures that opens the
	// circuit. Zero disables the breaker.
	FailureThreshold uint32 `yaml:"-" envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	OpenSeconds      int    `yaml:"-" envconfig:"BREAKER_OPEN_SECONDS" default:"30" validate:"gte=1"`
}

type SentryConfig struct {
	DSN   string `yaml:"-" envconfig:"SENTRY_DSN"`
	Debug bool   `yaml:"-" envconfig:"SENTRY_DEBUG" default:"false"`
}

// ConfigProvider loads and validates a Config.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider reads the provider list from a yaml file and everything else
// from the environment, after loading an optional .env file.
type FileConfigProvider struct {
	configPath string
	envPath    string
	validate   *validator.Validate
}

func NewFileConfigProvider(configPath string) *FileConfigProvider {
	return &FileConfigProvider{
		configPath: configPath,
		envPath:    DefaultEnvPath,
		validate:   validator.New(),
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	if err := godotenv.Load(p.envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", p.envPath, err)
	}

	config := &Config{}
	if err := p.loadFromFile(config); err != nil {
		return nil, err
	}
	if err := p.loadFromEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (p *FileConfigProvider) loadFromFile(config *Config) error {
	data, err := os.ReadFile(p.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", p.configPath, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", p.configPath, err)
	}

	return nil
}

func (p *FileConfigProvider) loadFromEnv(config *Config) error {
	sections := []any{
		&config.App,
		&config.Server,
		&config.Log,
		&config.Weather,
		&config.Security,
		&config.Breaker,
		&config.Sentry,
	}

	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return fmt.Errorf("error environment variable parsing: %w", err)
		}
	}

	return nil
}

func (p *FileConfigProvider) Validate(config *Config) error {
	if strings.TrimSpace(config.App.Name) == "" {
		return fmt.Errorf("app.name is required")
	}
	if strings.TrimSpace(config.Server.Port) == "" {
		return fmt.Errorf("server.port is required")
	}

	seen := make(map[string]struct{}, len(config.Weather.APIs))
	for i, api := range config.Weather.APIs {
		if _, ok := seen[api.Name]; ok {
			return fmt.Errorf("weather.apis[%d]: duplicate provider %q", i, api.Name)
		}
		seen[api.Name] = struct{}{}
	}

	if err := p.validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// NewConfig loads the configuration from DefaultConfigPath and the environment.
func NewConfig() (*Config, error) {
	return NewConfigWithProvider(NewFileConfigProvider(DefaultConfigPath))
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	config, err := provider.Load()
	if err != nil {
		return nil, err
	}

	if err := provider.Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == envDevelopment
}

func (c *Config) IsProduction() bool {
	return c.App.Env == envProduction
}

func (c *Config) GetWeatherAPIByName(name string) (*WeatherAPIConfig, bool) {
	for i := range c.Weather.APIs {
		if c.Weather.APIs[i].Name == name {
			return &c.Weather.APIs[i], true
		}
	}
	return nil, false
}

func (c *Config) GetWeatherAPIs() []WeatherAPIConfig {
	return c.Weather.APIs
}

// CacheTTL is zero or negative when caching is disabled.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Weather.CacheTTLSeconds) * time.Second
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Weather.TimeoutSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Security.RateLimitWindowMs) * time.Millisecond
}

func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.Breaker.OpenSeconds) * time.Second
}

// OpenWeatherAPIKey prefers the environment key over the one in the provider list.
func (c *Config) OpenWeatherAPIKey() string {
	if key := strings.TrimSpace(c.Weather.OpenWeatherAPIKey); key != "" {
		return key
	}
	if api, ok := c.GetWeatherAPIByName("open-weather"); ok {
		return strings.TrimSpace(api.APIKey)
	}
	return ""
}
