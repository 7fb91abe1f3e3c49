// Package resilience wraps outbound HTTP calls with retries and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultBackoff is used by every outbound client unless overridden.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrServerError      = errors.New("server error")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCircuitOpen      = errors.New("circuit breaker open")
	ErrNoHTTPClient     = errors.New("http client not configured")
	ErrInvalidConfig    = errors.New("invalid backoff configuration")
)

// NewBreaker returns the circuit breaker settings shared by all upstreams.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("INFO: circuit %s: %s -> %s", name, from, to)
		},
	})
}

// Do executes the request built by buildRequest with retries, exponential
// backoff and a circuit breaker. Rate limiting, 5xx and transport errors are
// retried and count against the breaker; other non-2xx statuses are neither.
// An open circuit is never retried.
func Do(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, ErrNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, ErrInvalidConfig
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Backoff.InitialInterval
	if cfg.Backoff.MaxInterval > 0 {
		bo.MaxInterval = cfg.Backoff.MaxInterval
	}
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.Backoff.MaxRetries)), ctx)

	return backoff.RetryWithData(func() (*http.Response, error) {
		req, err := buildRequest(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, ErrRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
			}
			// Other statuses are classified after Execute so they do not trip the breaker.
			return resp, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrCircuitOpen, err))
			}
			return nil, err
		}

		resp, ok := result.(*http.Response)
		if !ok {
			return nil, backoff.Permanent(fmt.Errorf("unexpected result type from circuit breaker"))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
		}
		return resp, nil
	}, policy)
}
