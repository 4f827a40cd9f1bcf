package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"weather-lookup/internal/models"
	"weather-lookup/internal/ratelimit"
	"weather-lookup/internal/repositories"
	"weather-lookup/internal/services/weather"
	"weather-lookup/pkg/httpserver"
)

const (
	msgInvalidWeatherQuery = "Invalid weather query parameters"
	msgWeatherFallback     = "Unable to load weather data at this time."
	msgCitiesFallback      = "Unable to resolve city search at this time."

	sessionMaxAge = 8 * time.Hour
)

type weatherQuery struct {
	Lat     string `query:"lat" validate:"required,numeric"`
	Lon     string `query:"lon" validate:"required,numeric"`
	Units   string `query:"units"`
	City    string `query:"city" validate:"max=120"`
	Country string `query:"country" validate:"max=120"`
}

// CitiesResponse represents the city search response
type CitiesResponse struct {
	Query  string                 `json:"query" example:"Berlin"`
	Cities []models.CityCandidate `json:"cities"`
}

// AuthRequest carries the access token exchanged for a session cookie
type AuthRequest struct {
	Token string `json:"token" example:"s3cret"`
}

type AuthResponse struct {
	OK   bool   `json:"ok" example:"true"`
	Mode string `json:"mode,omitempty" example:"disabled"`
}

// GetWeather godoc
// @Summary Get weather
// @Description Returns current conditions and a daily forecast for the coordinates
// @Tags Weather
// @Produce json
// @Param lat query number true "Latitude" minimum(-90) maximum(90) example(52.52)
// @Param lon query number true "Longitude" minimum(-180) maximum(180) example(13.41)
// @Param units query string false "Unit system" Enums(metric, imperial) default(metric)
// @Param city query string false "Display name of the picked city" maxlength(120)
// @Param country query string false "Country of the picked city" maxlength(120)
// @Success 200 {object} models.WeatherView "Weather view"
// @Failure 400 {object} httpserver.ErrorResponse "Invalid query"
// @Failure 401 {object} httpserver.ErrorResponse "Missing or invalid session"
// @Failure 429 {object} httpserver.ErrorResponse "Rate limit exceeded"
// @Failure 502 {object} httpserver.ErrorResponse "Upstream provider failure"
// @Failure 503 {object} httpserver.ErrorResponse "No provider configured"
// @Router /api/v1/weather [get]
func (r *routes) handleWeather(c *fiber.Ctx) error {
	var q weatherQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, msgInvalidWeatherQuery)
	}

	q.City = strings.TrimSpace(q.City)
	q.Country = strings.TrimSpace(q.Country)

	if err := r.validate.Struct(q); err != nil {
		return badRequest(c, msgInvalidWeatherQuery)
	}

	lat, latErr := strconv.ParseFloat(q.Lat, 64)
	lon, lonErr := strconv.ParseFloat(q.Lon, 64)
	if latErr != nil || lonErr != nil {
		return badRequest(c, msgInvalidWeatherQuery)
	}

	var hint *models.LocationHint
	if q.City != "" {
		hint = &models.LocationHint{Name: q.City, Country: q.Country}
	}

	view, err := r.service.GetWeather(c.UserContext(), lat, lon, models.ParseUnits(q.Units), hint)
	if err != nil {
		return r.providerError(c, err, msgWeatherFallback)
	}

	if decision, ok := c.Locals(rateLimitLocal).(ratelimit.Decision); ok {
		setRateLimitHeaders(c, decision)
	}

	return c.JSON(view)
}

// SearchCities godoc
// @Summary Search cities
// @Description Searches cities by name and returns deduplicated candidates
// @Tags Cities
// @Produce json
// @Param query query string true "City name" example(Berlin)
// @Success 200 {object} CitiesResponse "Matching cities"
// @Failure 400 {object} httpserver.ErrorResponse "Missing query"
// @Failure 401 {object} httpserver.ErrorResponse "Missing or invalid session"
// @Failure 429 {object} httpserver.ErrorResponse "Rate limit exceeded"
// @Failure 502 {object} httpserver.ErrorResponse "Upstream provider failure"
// @Failure 503 {object} httpserver.ErrorResponse "No provider configured"
// @Router /api/v1/cities [get]
func (r *routes) handleCities(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return badRequest(c, "query is required")
	}

	cities, err := r.service.SearchCities(c.UserContext(), query)
	if err != nil {
		return r.providerError(c, err, msgCitiesFallback)
	}

	return c.JSON(CitiesResponse{Query: query, Cities: cities})
}

// StartSession godoc
// @Summary Start a session
// @Description Exchanges the access token for a session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AuthRequest true "Access token"
// @Success 200 {object} AuthResponse "Session started or access control disabled"
// @Failure 400 {object} httpserver.ErrorResponse "Malformed body"
// @Failure 401 {object} httpserver.ErrorResponse "Invalid access token"
// @Router /api/v1/auth [post]
func (r *routes) handleAuth(c *fiber.Ctx) error {
	var req AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	token := strings.TrimSpace(req.Token)

	if r.opts.AccessToken == "" {
		return c.JSON(AuthResponse{OK: true, Mode: "disabled"})
	}

	if !validAccessToken(token, r.opts.AccessToken) {
		return c.Status(fiber.StatusUnauthorized).JSON(httpserver.ErrorResponse{Error: "Invalid access token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   r.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(AuthResponse{OK: true})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(httpserver.ErrorResponse{Error: message})
}

// providerError maps service errors to status codes and user facing messages.
func (r *routes) providerError(c *fiber.Ctx, err error, fallbackMessage string) error {
	var (
		validationErr *weather.ValidationError
		configErr     *repositories.ConfigurationError
		upstreamErr   *repositories.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return badRequest(c, msgInvalidWeatherQuery)

	case errors.As(err, &configErr):
		r.l.Error(err, map[string]any{"provider": configErr.Provider, "path": c.Path()})
		return c.Status(fiber.StatusServiceUnavailable).JSON(httpserver.ErrorResponse{
			Error: "Weather provider is not configured on this server.",
		})

	case errors.As(err, &upstreamErr):
		r.l.Error(err, map[string]any{
			"provider":    upstreamErr.Provider,
			"status_code": upstreamErr.StatusCode,
			"path":        c.Path(),
		})
		return c.Status(fiber.StatusBadGateway).JSON(httpserver.ErrorResponse{
			Error: "Weather provider is temporarily unavailable.",
		})

	default:
		r.l.Error(err, map[string]any{"path": c.Path()})
		return c.Status(fiber.StatusBadGateway).JSON(httpserver.ErrorResponse{Error: fallbackMessage})
	}
}
