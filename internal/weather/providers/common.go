package providers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/crop-disease-advisor/internal/common"
	"github.com/i474232898/crop-disease-advisor/internal/resilience"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

func defaultHTTPConfig(client *http.Client) resilience.HTTPClientConfig {
	return resilience.HTTPClientConfig{
		Client:  client,
		Backoff: resilience.DefaultBackoff,
	}
}

// cityQuery renders "city,country" for providers that search by name.
func cityQuery(loc weather.Location) string {
	if loc.Country != "" {
		return fmt.Sprintf("%s,%s", loc.City, loc.Country)
	}
	return loc.City
}

// Geocoder resolves a location to latitude/longitude.
type Geocoder interface {
	Resolve(loc weather.Location) (lat, lon float64, err error)
}

// GoogleGeocoder resolves coordinates through the Google Geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoder package with apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Resolve(loc weather.Location) (float64, float64, error) {
	if geocoder.ApiKey == "" {
		return 0, 0, fmt.Errorf("geocoder api key is not configured")
	}
	res, err := geocoder.Geocoding(geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %s: %w", loc.Key(), err)
	}
	return res.Latitude, res.Longitude, nil
}

func textCondition(text string) weather.Condition {
	t := strings.ToLower(text)
	switch {
	case t == "":
		return weather.ConditionUnknown
	case common.HasAny(t, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(t, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(t, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case common.HasAny(t, "mist", "fog", "haze"):
		return weather.ConditionMist
	case common.HasAny(t, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(t, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
