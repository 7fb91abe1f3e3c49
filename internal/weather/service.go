package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoForecast is returned when no provider produced forecast data.
	ErrNoForecast = errors.New("no forecast data available")
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
	failures  FailureRecorder
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider) *Service {
	return &Service{
		store:     store,
		providers: providers,
	}
}

// SetFailureRecorder registers a hook for provider failures.
func (s *Service) SetFailureRecorder(r FailureRecorder) {
	s.failures = r
}

func (s *Service) providerFailed(name string) {
	if s.failures != nil {
		s.failures.ProviderFailed(name)
	}
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	log.Printf("DEBUG: FetchAndStore called for %s with %d providers", loc.Key(), len(s.providers))
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return ErrNoProviders
	}

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				s.providerFailed(p.Name())
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		// No providers succeeded; do not overwrite last good snapshot.
		log.Printf("no successful provider readings for %s; keeping last good snapshot if any", loc.Key())
		return nil
	}

	// Goroutine completion order is random; keep aggregation stable.
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].ProviderName < readings[j].ProviderName
	})

	snapshot := AggregateReadings(loc, readings)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	s.store.Save(loc.Key(), snapshot)
	return nil
}

// GetForecast fetches multi-day forecasts from providers that support it,
// aggregates them per day, and returns a normalized Forecast.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (Forecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	log.Printf("DEBUG: GetForecast called for %s for %d days", loc.Key(), days)

	type dayKey string

	var (
		wg            sync.WaitGroup
		mu            sync.Mutex
		dayReadings   = make(map[dayKey][]ProviderReading)
		dayTimestamps = make(map[dayKey]time.Time)
	)

	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			readings, err := fp.FetchForecast(ctx, loc, days)
			if err != nil {
				log.Printf("provider %s forecast failed for %s: %v", fp.Name(), loc.Key(), err)
				s.providerFailed(fp.Name())
				return
			}

			mu.Lock()
			defer mu.Unlock()

			for _, r := range readings {
				ts := r.Timestamp.UTC()
				k := dayKey(ts.Format("2006-01-02"))

				dayReadings[k] = append(dayReadings[k], r)

				if _, exists := dayTimestamps[k]; !exists {
					dayTimestamps[k] = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
				}
			}
		}()
	}

	wg.Wait()

	if len(dayReadings) == 0 {
		log.Printf("no successful forecast readings for %s", loc.Key())
		return nil, ErrNoForecast
	}

	keys := make([]string, 0, len(dayReadings))
	for k := range dayReadings {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	forecast := make(Forecast, 0, days)

	for _, k := range keys {
		if len(forecast) >= days {
			break
		}

		dk := dayKey(k)
		readings := dayReadings[dk]
		sort.SliceStable(readings, func(i, j int) bool {
			return readings[i].ProviderName < readings[j].ProviderName
		})

		snapshot := AggregateReadings(loc, readings)
		snapshot.Timestamp = dayTimestamps[dk]

		forecast = append(forecast, snapshot)
	}

	return forecast, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.Latest(loc.Key())
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.Range(loc.Key(), from, to)
}
