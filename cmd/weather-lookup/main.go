package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-lookup/config"
	"weather-lookup/internal/cache"
	v1 "weather-lookup/internal/controllers/http/v1"
	"weather-lookup/internal/models"
	"weather-lookup/internal/ratelimit"
	"weather-lookup/internal/repositories"
	"weather-lookup/internal/services/weather"
	"weather-lookup/pkg/httpserver"
	"weather-lookup/pkg/logger"
	"weather-lookup/pkg/observe"
)

const (
	sentryMaxErrorDepth = 5
	shutdownTimeout     = 30 * time.Second
)

// @title Weather Lookup API
// @version 1.0.0
// @description Current conditions and a daily forecast for any place, served from cached and rate-limited upstream weather providers.
// @description The configured providers are chained, so a failing primary falls back to the next one.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Weather
// @tag.description Current conditions and daily forecast
// @tag.name Cities
// @tag.description City search
// @tag.name Auth
// @tag.description Access token session
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	sentryHook := observe.NewSentryHook(cnf.App.Env, cnf.App.Name, sentryMaxErrorDepth, cnf.Sentry.Debug, cnf.Sentry.DSN)

	var hooks []io.Writer
	if sentryHook.Enabled() {
		hooks = append(hooks, sentryHook)
	}

	l := logger.NewZapLogger(cnf.App.Name, logger.Options{
		AppEnv: cnf.App.Env,
		Level:  cnf.Log.Level,
		Format: cnf.Log.Format,
		Hooks:  hooks,
	}, os.Stdout)

	app := httpserver.InitFiberServer(httpserver.Options{
		AppName:      cnf.App.Name,
		ReadTimeout:  time.Duration(cnf.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cnf.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cnf.Server.IdleTimeout) * time.Second,
	}, l)

	resolver := repositories.NewResolver(func() (repositories.WeatherRepository, error) {
		return repositories.NewRepositoryFromConfig(cnf, l)
	})
	if _, err := resolver.Get(); err != nil {
		l.Warning("weather provider is not available yet", map[string]any{"err": err})
	}

	service := weather.NewWeatherService(
		resolver,
		cache.New[models.WeatherView](),
		weather.Options{
			CacheTTL:        cnf.CacheTTL(),
			ForecastDays:    cnf.Weather.ForecastDays,
			CitySearchLimit: cnf.Weather.CitySearchLimit,
			DedupeInFlight:  cnf.Weather.DedupeInFlight,
		},
		l,
	)

	v1.NewRouter(
		app,
		service,
		ratelimit.NewFixedWindow(cnf.RateLimitWindow(), cnf.Security.RateLimitMaxRequests),
		v1.Options{
			AccessToken:   cnf.Security.AccessToken,
			SecureCookies: cnf.IsProduction(),
		},
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Server.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":          cnf.Server.Port,
		"access_gate":   cnf.Security.AccessToken != "",
		"sentry":        sentryHook.Enabled(),
		"cache_ttl_sec": cnf.Weather.CacheTTLSeconds,
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		service.ClearCache()
		sentryHook.Flush()
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}
