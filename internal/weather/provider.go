package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that can return daily
// forecasts. One reading per day, ascending.
type ForecastProvider interface {
	Provider
	FetchForecast(ctx context.Context, loc Location, days int) ([]ProviderReading, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	Save(key string, snapshot WeatherSnapshot)
	Latest(key string) (WeatherSnapshot, error)
	Range(key string, from, to time.Time) ([]WeatherSnapshot, error)
}

// FailureRecorder is notified whenever a provider call fails.
type FailureRecorder interface {
	ProviderFailed(provider string)
}
