package weather

import (
	"strings"
	"time"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location represents a field site for which we track weather.
// City/Country must be provided; Lat/Lon are optional and resolved by
// providers that need them.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strings.ToLower(strings.TrimSpace(l.City)) + ":" + strings.ToLower(strings.TrimSpace(l.Country))
}

// HasCoordinates reports whether both Lat and Lon are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"` // m/s
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// RecordedAt implements store.Record.
func (s WeatherSnapshot) RecordedAt() time.Time {
	return s.Timestamp
}

// Reading converts the snapshot into classifier input. Soil pH is not a
// weather quantity and has to be supplied by the caller.
func (s WeatherSnapshot) Reading(soilPH float64) disease.EnvironmentalReading {
	return disease.EnvironmentalReading{
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		Rainfall:    s.PrecipMM,
		WindSpeed:   MSToKPH(s.WindSpeed),
		SoilPH:      soilPH,
	}
}

// MSToKPH converts a wind speed from m/s to km/h.
func MSToKPH(ms float64) float64 {
	return ms * 3.6
}

// Forecast represents a simple multi-day weather forecast
// as a slice of normalized weather snapshots, one per day.
// Forecast entries are expected to be ordered by Timestamp ascending.
type Forecast []WeatherSnapshot

// DailyReadings converts the forecast into per-day classifier input.
func (f Forecast) DailyReadings(soilPH float64) []disease.DailyReading {
	out := make([]disease.DailyReading, 0, len(f))
	for _, snap := range f {
		out = append(out, disease.DailyReading{
			Date:    snap.Timestamp,
			Reading: snap.Reading(soilPH),
		})
	}
	return out
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
