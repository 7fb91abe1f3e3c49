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

// WeatherAPIProvider implements weather.ForecastProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg resilience.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: defaultHTTPConfig(client),
		circuit: resilience.NewBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// query renders the WeatherAPI "q" parameter: "lat,lon" or "city,country".
func (p *WeatherAPIProvider) query(loc weather.Location) string {
	if loc.HasCoordinates() {
		return fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon)
	}
	return cityQuery(loc)
}

func (p *WeatherAPIProvider) get(ctx context.Context, path string, values url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("weatherapi api key is not configured")
	}
	values.Set("key", p.apiKey)

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := resilience.Do(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode weatherapi %s response: %w", path, err)
	}
	return nil
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	var payload struct {
		Location struct {
			LocaltimeEpoch int64 `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			TempC      float64 `json:"temp_c"`
			Humidity   float64 `json:"humidity"`
			WindKph    float64 `json:"wind_kph"`
			PressureMb float64 `json:"pressure_mb"`
			PrecipMm   float64 `json:"precip_mm"`
			Condition  struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	values := url.Values{}
	values.Set("q", p.query(loc))
	if err := p.get(ctx, "current.json", values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Location.LocaltimeEpoch > 0 {
		ts = time.Unix(payload.Location.LocaltimeEpoch, 0).UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.TempC,
		HumidityPct:  payload.Current.Humidity,
		WindSpeedMS:  payload.Current.WindKph / 3.6,
		PressureHpa:  payload.Current.PressureMb,
		PrecipMm:     payload.Current.PrecipMm,
		Condition:    textCondition(payload.Current.Condition.Text),
	}, nil
}

// FetchForecast returns one daily reading per forecast day.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	var payload struct {
		Forecast struct {
			Forecastday []struct {
				DateEpoch int64 `json:"date_epoch"`
				Day       struct {
					AvgTempC      float64 `json:"avgtemp_c"`
					AvgHumidity   float64 `json:"avghumidity"`
					MaxWindKph    float64 `json:"maxwind_kph"`
					TotalPrecipMm float64 `json:"totalprecip_mm"`
					Condition     struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	values := url.Values{}
	values.Set("q", p.query(loc))
	values.Set("days", strconv.Itoa(days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")
	if err := p.get(ctx, "forecast.json", values, &payload); err != nil {
		return nil, err
	}

	readings := make([]weather.ProviderReading, 0, len(payload.Forecast.Forecastday))
	for _, fd := range payload.Forecast.Forecastday {
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    time.Unix(fd.DateEpoch, 0).UTC(),
			TemperatureC: fd.Day.AvgTempC,
			HumidityPct:  fd.Day.AvgHumidity,
			WindSpeedMS:  fd.Day.MaxWindKph / 3.6,
			PrecipMm:     fd.Day.TotalPrecipMm,
			Condition:    textCondition(fd.Day.Condition.Text),
		})
	}
	return readings, nil
}
