package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY", "GEOCODER_API_KEY", "HTTP_TIMEOUT",
		"FETCH_INTERVAL", "STORE_MAX_HISTORY", "STORE_MAX_AGE", "PREDICTOR_URL",
		"PREDICTOR_TIMEOUT", "DEFAULT_SOIL_PH", "WATCH_CROPS", "PORT",
		"WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 96, cfg.StoreMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
	assert.Equal(t, 5*time.Second, cfg.PredictorTimeout)
	assert.Equal(t, 6.5, cfg.DefaultSoilPH)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.Locations)
	assert.Empty(t, cfg.WatchCrops)
	assert.Empty(t, cfg.PredictorURL)
}

func TestLoad_LocationsAndCrops(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_LOCATION_CITY", "Cuttack, Ludhiana")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "IN,IN")
	t.Setenv("WATCH_CROPS", "Rice, wheat")
	t.Setenv("PREDICTOR_URL", " http://localhost:5000 ")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Locations, 2)
	assert.Equal(t, "Ludhiana", cfg.Locations[1].City)
	assert.Equal(t, []string{"rice", "wheat"}, cfg.WatchCrops)
	assert.Equal(t, "http://localhost:5000", cfg.PredictorURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FETCH_INTERVAL", "soon"},
		{"HTTP_TIMEOUT", "ten"},
		{"DEFAULT_SOIL_PH", "acidic"},
		{"WATCH_CROPS", "rice,banana"},
		{"WEATHER_LOCATION_CITY", "Cuttack,Pune"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("WEATHER_LOCATION_COUNTRY", "IN")
			if tt.key != "WEATHER_LOCATION_CITY" {
				t.Setenv("WEATHER_LOCATION_CITY", "Cuttack")
			}
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
