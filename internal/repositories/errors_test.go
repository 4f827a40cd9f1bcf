package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestNewTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"connection refused", errors.New("connection refused"), http.StatusBadGateway},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"net timeout", fmt.Errorf("get: %w", timeoutError{}), http.StatusGatewayTimeout},
		{"open circuit", gobreaker.ErrOpenState, http.StatusServiceUnavailable},
		{"half-open limit", gobreaker.ErrTooManyRequests, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTransportError("open-meteo", tt.err)

			assert.Equal(t, tt.want, err.StatusCode)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	configErr := fmt.Errorf("resolve: %w", &ConfigurationError{Provider: "open-weather", Message: "missing key"})
	upstreamErr := fmt.Errorf("fetch: %w", &UpstreamError{Provider: "open-meteo", StatusCode: 502})

	assert.True(t, IsConfigurationError(configErr))
	assert.False(t, IsUpstreamError(configErr))
	assert.True(t, IsUpstreamError(upstreamErr))
	assert.False(t, IsConfigurationError(upstreamErr))
	assert.False(t, IsUpstreamError(errors.New("plain")))

	assert.Equal(t, "open-weather: configuration error: missing key", configErr.(interface{ Unwrap() error }).Unwrap().Error())
	assert.Equal(t, "open-meteo: upstream status 502", (&UpstreamError{Provider: "open-meteo", StatusCode: 502}).Error())
}
