// Package advisor answers disease risk questions for a crop, preferring the
// backend predictor and falling back to the offline classifier.
package advisor

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
	"github.com/i474232898/crop-disease-advisor/internal/predictor"
	"github.com/i474232898/crop-disease-advisor/internal/resilience"
	"github.com/i474232898/crop-disease-advisor/internal/store"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// OutlookDays is the horizon used when a prediction comes with a local outlook.
const OutlookDays = 7

// Predictor is the remote prediction backend.
type Predictor interface {
	Predict(ctx context.Context, crop string, r disease.EnvironmentalReading) (disease.Report, error)
}

// WeatherSource provides observed and forecast weather.
type WeatherSource interface {
	GetLatest(loc weather.Location) (weather.WeatherSnapshot, error)
	GetForecast(ctx context.Context, loc weather.Location, days int) (weather.Forecast, error)
}

// Recorder receives prediction counters.
type Recorder interface {
	Prediction(source, crop, diseaseName string)
	Fallback(reason string)
}

// Prediction is one served answer.
type Prediction struct {
	ID          string                       `json:"request_id"`
	Source      string                       `json:"source"`
	Crop        string                       `json:"crop"`
	Reading     disease.EnvironmentalReading `json:"reading"`
	Location    *weather.Location            `json:"location,omitempty"`
	Report      disease.Report               `json:"result"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// RecordedAt implements store.Record.
func (p Prediction) RecordedAt() time.Time {
	return p.GeneratedAt
}

// Service is the disease advisor.
type Service struct {
	predictor Predictor
	weather   WeatherSource
	history   *store.MemoryStore[Prediction]
	recorder  Recorder
	now       func() time.Time
}

// NewService wires an advisor. weather and recorder may be nil.
func NewService(p Predictor, w WeatherSource, history *store.MemoryStore[Prediction], rec Recorder) *Service {
	return &Service{
		predictor: p,
		weather:   w,
		history:   history,
		recorder:  rec,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Predict returns a report for crop and reading. A failing backend never
// surfaces as an error: the offline classifier answers instead. When loc
// is set and the report carries no forecast, a locally built outlook is
// attached.
func (s *Service) Predict(ctx context.Context, crop string, reading disease.EnvironmentalReading, loc *weather.Location) Prediction {
	p := Prediction{
		ID:       uuid.NewString(),
		Crop:     strings.ToLower(crop),
		Reading:  reading,
		Location: loc,
	}

	report, err := s.remote(ctx, crop, reading)
	if err != nil {
		reason := fallbackReason(err)
		log.Printf("advisor: request %s: predictor unavailable (%s), using offline rules: %v", p.ID, reason, err)
		if s.recorder != nil {
			s.recorder.Fallback(reason)
		}
		p.Source = SourceFallback
		report = disease.Present(disease.Classify(crop, reading), nil, nil)
	} else {
		p.Source = SourceRemote
	}

	if report.Forecast == nil && loc != nil {
		if f := s.Outlook(ctx, crop, *loc, OutlookDays, reading.SoilPH); f.Available {
			report.Forecast = &f
		}
	}

	p.Report = report
	p.GeneratedAt = s.now()

	if s.recorder != nil {
		s.recorder.Prediction(p.Source, p.Crop, report.Disease)
	}
	// Only crops with rules get a history key, so the store stays bounded.
	if s.history != nil && disease.IsKnownCrop(p.Crop) {
		s.history.Save(p.Crop, p)
	}
	return p
}

func (s *Service) remote(ctx context.Context, crop string, reading disease.EnvironmentalReading) (disease.Report, error) {
	if s.predictor == nil {
		return disease.Report{}, predictor.ErrUnavailable
	}
	return s.predictor.Predict(ctx, crop, reading)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, predictor.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, predictor.ErrRejected):
		return "rejected"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}

// Classify is the offline path on its own, with no backend call.
func (s *Service) Classify(crop string, reading disease.EnvironmentalReading) disease.Report {
	return disease.Present(disease.Classify(crop, reading), nil, nil)
}

// Outlook classifies each day of the weather forecast for loc. A missing
// or failing weather source yields an unavailable forecast.
func (s *Service) Outlook(ctx context.Context, crop string, loc weather.Location, days int, soilPH float64) disease.Forecast {
	return s.Outlooks(ctx, []string{crop}, loc, days, soilPH)[0]
}

// Outlooks is Outlook for several crops at one location, sharing a single
// weather forecast. Results follow the order of crops.
func (s *Service) Outlooks(ctx context.Context, crops []string, loc weather.Location, days int, soilPH float64) []disease.Forecast {
	out := make([]disease.Forecast, len(crops))
	for i := range out {
		out[i] = disease.UnavailableForecast()
	}
	if s.weather == nil || len(crops) == 0 {
		return out
	}

	forecast, err := s.weather.GetForecast(ctx, loc, days)
	if err != nil {
		log.Printf("advisor: outlook at %s unavailable: %v", loc.Key(), err)
		return out
	}

	readings := forecast.DailyReadings(soilPH)
	for i, crop := range crops {
		out[i] = disease.BuildForecast(crop, readings)
	}
	return out
}

// History returns past predictions for crop between from and to.
func (s *Service) History(crop string, from, to time.Time) ([]Prediction, error) {
	if s.history == nil {
		return nil, store.ErrNotFound
	}
	return s.history.Range(strings.ToLower(crop), from, to)
}
