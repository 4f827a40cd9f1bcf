package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "weather-lookup/docs"
	"weather-lookup/internal/ratelimit"
	"weather-lookup/internal/services/weather"
	"weather-lookup/pkg/logger"
)

// Options configure the access gates of the v1 API.
type Options struct {
	// AccessToken protects the API with a session cookie. Empty disables the check.
	AccessToken string
	// SecureCookies marks the session cookie as Secure.
	SecureCookies bool
	Now           func() time.Time
}

type routes struct {
	service  *weather.WeatherService
	limiter  *ratelimit.FixedWindow
	opts     Options
	validate *validator.Validate
	l        *logger.Logger
}

func NewRouter(
	app *fiber.App,
	weatherService *weather.WeatherService,
	limiter *ratelimit.FixedWindow,
	opts Options,
	l *logger.Logger,
) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &routes{
		service:  weatherService,
		limiter:  limiter,
		opts:     opts,
		validate: validator.New(),
		l:        l,
	}

	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Post("/auth", r.handleAuth)
	v1.Get("/weather", r.rateLimit, r.requireSession, r.handleWeather)
	v1.Get("/cities", r.rateLimit, r.requireSession, r.handleCities)
}
