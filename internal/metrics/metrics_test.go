package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Prediction("fallback", "Rice", "blast")
	m.Prediction("fallback", "rice", "blast")
	m.Fallback("unavailable")
	m.ProviderFailed("openmeteo")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("fallback", "rice", "blast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerFailures.WithLabelValues("openmeteo")))
}

func TestMetrics_UnknownCropsShareOneSeries(t *testing.T) {
	m := New()
	for i := 0; i < 1000; i++ {
		m.Prediction("fallback", fmt.Sprintf("crop-%d", i), "healthy")
	}
	m.Prediction("fallback", "Wheat", "healthy")

	assert.Equal(t, 2, testutil.CollectAndCount(m.predictions))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.predictions.WithLabelValues("fallback", OtherCrop, "healthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("fallback", "wheat", "healthy")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Prediction("remote", "rice", "blast")
	m.Fallback("error")
	m.ProviderFailed("x")
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Fallback("circuit_open")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `disease_predictor_fallbacks_total{reason="circuit_open"} 1`)
}
