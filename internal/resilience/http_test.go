package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) HTTPClientConfig {
	return HTTPClientConfig{
		Client: &http.Client{Timeout: time.Second},
		Backoff: BackoffConfig{
			MaxRetries:      retries,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func getter(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := Do(context.Background(), fastConfig(3), NewBreaker("test"), getter(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), fastConfig(2), NewBreaker("test"), getter(srv.URL))
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), fastConfig(3), NewBreaker("test"), getter(srv.URL))
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_InvalidConfig(t *testing.T) {
	_, err := Do(context.Background(), HTTPClientConfig{}, NewBreaker("test"), getter("http://example.invalid"))
	assert.ErrorIs(t, err, ErrNoHTTPClient)

	cfg := fastConfig(1)
	cfg.Backoff.InitialInterval = 0
	_, err = Do(context.Background(), cfg, NewBreaker("test"), getter("http://example.invalid"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDo_CircuitOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewBreaker("test")
	// default ReadyToTrip opens after more than 5 consecutive failures
	_, err := Do(context.Background(), fastConfig(5), cb, getter(srv.URL))
	require.Error(t, err)

	_, err = Do(context.Background(), fastConfig(5), cb, getter(srv.URL))
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestDo_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var rejected atomic.Bool
	rejected.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rejected.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cb := NewBreaker("test")
	for i := 0; i < 10; i++ {
		_, err := Do(context.Background(), fastConfig(0), cb, getter(srv.URL))
		require.ErrorIs(t, err, ErrUnexpectedStatus)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Zero(t, cb.Counts().ConsecutiveFailures)

	rejected.Store(false)
	resp, err := Do(context.Background(), fastConfig(0), cb, getter(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
