package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"weather-lookup/pkg/logger"
)

const defaultUpstreamTimeout = 10 * time.Second

var validate = validator.New()

// UpstreamOptions configure the HTTP client shared by a repository's calls.
type UpstreamOptions struct {
	Timeout time.Duration
	// BreakerFailureThreshold is the number of consecutive failures that opens the
	// circuit. Zero disables the breaker.
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration
}

type upstreamClient struct {
	provider string
	http     *resty.Client
	breaker  *gobreaker.CircuitBreaker
	l        *logger.Logger
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.status)
}

func newUpstreamClient(provider string, opts UpstreamOptions, l *logger.Logger) *upstreamClient {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultUpstreamTimeout
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		l.Debug("received upstream response", map[string]any{
			"provider":    provider,
			"url":         resp.Request.URL,
			"status_code": resp.StatusCode(),
			"duration":    resp.Time().String(),
			"bytes":       len(resp.Body()),
		})
		return nil
	})

	c := &upstreamClient{
		provider: provider,
		http:     client,
		l:        l,
	}

	if opts.BreakerFailureThreshold > 0 {
		threshold := opts.BreakerFailureThreshold
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    provider,
			Timeout: opts.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// Canceled calls do not count as failures.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				l.Warning("circuit breaker state changed", map[string]any{
					"provider": name,
					"from":     from.String(),
					"to":       to.String(),
				})
			},
		})
	}

	return c
}

// get issues a GET request and returns the body of a 2xx response. Any other
// outcome is reported as an *UpstreamError.
func (c *upstreamClient) get(ctx context.Context, rawURL string, query map[string]string) ([]byte, error) {
	call := func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(rawURL)
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, &statusError{status: resp.StatusCode()}
		}
		return resp.Body(), nil
	}

	var (
		result interface{}
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(call)
	} else {
		result, err = call()
	}

	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, &UpstreamError{Provider: c.provider, StatusCode: se.status, Err: err}
		}
		return nil, newTransportError(c.provider, err)
	}

	return result.([]byte), nil
}

// getJSON decodes a 2xx JSON body into out and checks its validate tags.
func (c *upstreamClient) getJSON(ctx context.Context, rawURL string, query map[string]string, out any) error {
	body, err := c.get(ctx, rawURL, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newMalformedPayloadError(c.provider, fmt.Errorf("decode payload: %w", err))
	}
	if err := validate.Struct(out); err != nil {
		return newMalformedPayloadError(c.provider, fmt.Errorf("unexpected payload: %w", err))
	}

	return nil
}

func joinURL(base, fallback, path string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/") + path
}
