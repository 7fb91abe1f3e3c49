package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// FetchInterval controls how often we fetch data for each location.
	FetchInterval time.Duration

	// Locations to track.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           // max number of records per key (0 = unlimited)
	StoreMaxAge     time.Duration // max age of records (0 = unlimited)

	// PredictorURL is the backend base URL; empty means offline rules only.
	PredictorURL     string
	PredictorTimeout time.Duration

	// WatchCrops are checked against the forecast on every scheduler run.
	WatchCrops []string

	// DefaultSoilPH is used when a request or watch has no pH of its own.
	DefaultSoilPH float64

	Port string
}

// Load reads configuration from environment with sensible defaults.
// The caller is expected to have loaded any .env file already.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.PredictorURL = strings.TrimSpace(os.Getenv("PREDICTOR_URL"))
	if cfg.PredictorTimeout, err = getenvDuration("PREDICTOR_TIMEOUT", "5s"); err != nil {
		return nil, err
	}

	cfg.DefaultSoilPH, err = strconv.ParseFloat(getenvDefault("DEFAULT_SOIL_PH", "6.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_SOIL_PH: %w", err)
	}

	if cfg.WatchCrops, err = loadWatchCrops(); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.Locations, err = loadLocations(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadLocations() ([]weather.Location, error) {
	cities := splitList(os.Getenv("WEATHER_LOCATION_CITY"))
	countries := splitList(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	locs := make([]weather.Location, 0, len(cities))
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    cities[i],
			Country: countries[i],
		})
	}
	return locs, nil
}

func loadWatchCrops() ([]string, error) {
	known := make(map[string]bool)
	for _, c := range disease.Crops() {
		known[c] = true
	}

	var crops []string
	for _, c := range splitList(os.Getenv("WATCH_CROPS")) {
		c = strings.ToLower(c)
		if !known[c] {
			return nil, fmt.Errorf("invalid WATCH_CROPS: unknown crop %q", c)
		}
		crops = append(crops, c)
	}
	return crops, nil
}

// splitList splits a comma separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
