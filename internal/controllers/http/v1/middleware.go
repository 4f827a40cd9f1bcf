package http

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"weather-lookup/internal/ratelimit"
	"weather-lookup/pkg/httpserver"
)

const (
	sessionCookie = "app_session"

	headerRateLimitRemaining = "x-ratelimit-remaining"
	headerRateLimitReset     = "x-ratelimit-reset"

	rateLimitLocal = "ratelimit"
)

// clientKey identifies the caller by the first X-Forwarded-For entry, else
// X-Real-IP. Unidentified callers share one bucket.
func clientKey(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
		return "unknown"
	}

	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return "unknown"
}

func setRateLimitHeaders(c *fiber.Ctx, d ratelimit.Decision) {
	c.Set(headerRateLimitRemaining, strconv.Itoa(d.Remaining))
	c.Set(headerRateLimitReset, strconv.FormatInt(d.ResetAt.UnixMilli(), 10))
}

func (r *routes) rateLimit(c *fiber.Ctx) error {
	key := clientKey(c)
	decision := r.limiter.Consume(key, r.opts.Now())

	if !decision.Allowed {
		r.l.Warning("rate limit exceeded", map[string]any{
			"client": key,
			"path":   c.Path(),
		})
		setRateLimitHeaders(c, decision)
		return c.Status(fiber.StatusTooManyRequests).JSON(httpserver.ErrorResponse{
			Error: "Too many requests, please try again soon.",
		})
	}

	c.Locals(rateLimitLocal, decision)

	return c.Next()
}

func (r *routes) requireSession(c *fiber.Ctx) error {
	if r.opts.AccessToken == "" {
		return c.Next()
	}

	if !validAccessToken(c.Cookies(sessionCookie), r.opts.AccessToken) {
		return c.Status(fiber.StatusUnauthorized).JSON(httpserver.ErrorResponse{Error: "Unauthorized"})
	}

	return c.Next()
}

func validAccessToken(candidate, expected string) bool {
	if candidate == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(expected)) == 1
}
