// Package metrics exposes prediction and provider counters for Prometheus.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
)

// OtherCrop is the crop label for every crop without offline rules.
const OtherCrop = "other"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry         *prometheus.Registry
	predictions      *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disease_predictions_total",
			Help: "Disease predictions served, by source, crop and disease.",
		}, []string{"source", "crop", "disease"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disease_predictor_fallbacks_total",
			Help: "Predictions answered by the offline classifier, by reason.",
		}, []string{"reason"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_provider_failures_total",
			Help: "Failed weather provider calls, by provider.",
		}, []string{"provider"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.predictions,
		m.fallbacks,
		m.providerFailures,
	)
	return m
}

// Prediction counts one served prediction.
func (m *Metrics) Prediction(source, crop, diseaseName string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(source, cropLabel(crop), diseaseName).Inc()
}

func cropLabel(crop string) string {
	if !disease.IsKnownCrop(crop) {
		return OtherCrop
	}
	return strings.ToLower(crop)
}

// Fallback counts one use of the offline classifier.
func (m *Metrics) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

// ProviderFailed implements weather.FailureRecorder.
func (m *Metrics) ProviderFailed(provider string) {
	if m == nil {
		return
	}
	m.providerFailures.WithLabelValues(provider).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
