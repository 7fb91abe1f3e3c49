package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/i474232898/crop-disease-advisor/internal/advisor"
	"github.com/i474232898/crop-disease-advisor/internal/disease"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

// Fetcher refreshes stored weather for a location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Forecaster builds disease outlooks for several crops at a location from
// one weather forecast, in the order of crops.
type Forecaster interface {
	Outlooks(ctx context.Context, crops []string, loc weather.Location, days int, soilPH float64) []disease.Forecast
}

// WeatherRefresh fetches every location concurrently.
func WeatherRefresh(f Fetcher, locations []weather.Location) Job {
	return Job{
		Name: "weather-refresh",
		Run: func(ctx context.Context) error {
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs []error
			)
			for _, loc := range locations {
				loc := loc
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := f.FetchAndStore(ctx, loc); err != nil {
						log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
						mu.Lock()
						errs = append(errs, err)
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			return errors.Join(errs...)
		},
	}
}

// Alert is one high-risk outlook found by CropWatch.
type Alert struct {
	Crop     string
	Location weather.Location
	Forecast disease.Forecast
}

// CropWatch checks every crop at every location against the forecast and
// reports those with high-risk days to notify.
func CropWatch(f Forecaster, crops []string, locations []weather.Location, soilPH float64, notify func(Alert)) Job {
	return Job{
		Name: "crop-watch",
		Run: func(ctx context.Context) error {
			for _, loc := range locations {
				outlooks := f.Outlooks(ctx, crops, loc, advisor.OutlookDays, soilPH)
				for i, outlook := range outlooks {
					if i >= len(crops) || !outlook.Available || outlook.Summary.HighRiskDays == 0 {
						continue
					}
					notify(Alert{Crop: crops[i], Location: loc, Forecast: outlook})
				}
			}
			return ctx.Err()
		},
	}
}

// LogAlert is the default CropWatch notifier.
func LogAlert(a Alert) {
	msg := ""
	if len(a.Forecast.Recommendations) > 0 {
		msg = a.Forecast.Recommendations[0]
	}
	log.Printf("WARN: crop-watch: %s at %s: %d high-risk days ahead: %s",
		a.Crop, a.Location.Key(), a.Forecast.Summary.HighRiskDays, msg)
}
