package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/crop-disease-advisor/internal/resilience"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo.
// Open-Meteo needs coordinates; locations without them go through the geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  resilience.HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder Geocoder
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		httpCfg:  defaultHTTPConfig(client),
		circuit:  resilience.NewBreaker("openmeteo"),
		geocoder: geo,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) coordinates(loc weather.Location) (float64, float64, error) {
	if loc.HasCoordinates() {
		return *loc.Lat, *loc.Lon, nil
	}
	if p.geocoder == nil {
		return 0, 0, fmt.Errorf("openmeteo requires latitude and longitude")
	}
	return p.geocoder.Resolve(loc)
}

func (p *OpenMeteoProvider) get(ctx context.Context, loc weather.Location, values url.Values, out any) error {
	lat, lon, err := p.coordinates(loc)
	if err != nil {
		return err
	}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "UTC")

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := resilience.Do(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openmeteo response: %w", err)
	}
	return nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	var payload struct {
		Current struct {
			Time             string  `json:"time"`
			Temperature      float64 `json:"temperature_2m"`
			RelativeHumidity float64 `json:"relative_humidity_2m"`
			Precipitation    float64 `json:"precipitation"`
			WindSpeed        float64 `json:"wind_speed_10m"`
			Pressure         float64 `json:"surface_pressure"`
			WeatherCode      int     `json:"weather_code"`
		} `json:"current"`
	}

	values := url.Values{}
	values.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,surface_pressure,weather_code")
	if err := p.get(ctx, loc, values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.RelativeHumidity,
		WindSpeedMS:  payload.Current.WindSpeed,
		PressureHpa:  payload.Current.Pressure,
		PrecipMm:     payload.Current.Precipitation,
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
	}, nil
}

// FetchForecast returns one daily reading per forecast day.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	var payload struct {
		Daily struct {
			Time          []string  `json:"time"`
			Temperature   []float64 `json:"temperature_2m_mean"`
			Humidity      []float64 `json:"relative_humidity_2m_mean"`
			Precipitation []float64 `json:"precipitation_sum"`
			WindSpeed     []float64 `json:"wind_speed_10m_max"`
			WeatherCode   []int     `json:"weather_code"`
		} `json:"daily"`
	}

	values := url.Values{}
	values.Set("daily", "temperature_2m_mean,relative_humidity_2m_mean,precipitation_sum,wind_speed_10m_max,weather_code")
	values.Set("forecast_days", strconv.Itoa(days))
	if err := p.get(ctx, loc, values, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	n := len(d.Time)
	for _, l := range []int{len(d.Temperature), len(d.Humidity), len(d.Precipitation), len(d.WindSpeed), len(d.WeatherCode)} {
		if l < n {
			n = l
		}
	}

	readings := make([]weather.ProviderReading, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.Parse("2006-01-02", d.Time[i])
		if err != nil {
			return nil, fmt.Errorf("openmeteo daily time %q: %w", d.Time[i], err)
		}
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    ts,
			TemperatureC: d.Temperature[i],
			HumidityPct:  d.Humidity[i],
			WindSpeedMS:  d.WindSpeed[i],
			PrecipMm:     d.Precipitation[i],
			Condition:    mapOpenMeteoCondition(d.WeatherCode[i]),
		})
	}
	return readings, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on Open-Meteo weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
