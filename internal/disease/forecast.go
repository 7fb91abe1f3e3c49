package disease

import (
	"fmt"
	"math"
	"time"
)

// Forecast is a multi-day disease risk projection.
type Forecast struct {
	Available       bool            `json:"forecast_available"`
	Summary         ForecastSummary `json:"summary"`
	Days            []ForecastDay   `json:"forecast_days"`
	Recommendations []string        `json:"recommendations"`
}

// ForecastSummary counts days per risk level.
type ForecastSummary struct {
	HighRiskDays   int `json:"high_risk_days"`
	MediumRiskDays int `json:"medium_risk_days"`
	LowRiskDays    int `json:"low_risk_days"`
}

// ForecastDay is one classified day. Day is 1-based.
type ForecastDay struct {
	Day         int       `json:"day"`
	Date        string    `json:"date,omitempty"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Rainfall    float64   `json:"rainfall"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Disease     string    `json:"disease"`
}

// DailyReading is the expected conditions for one day.
type DailyReading struct {
	Date    time.Time
	Reading EnvironmentalReading
}

// UnavailableForecast is returned when no daily readings could be obtained.
func UnavailableForecast() Forecast {
	return Forecast{
		Days:            []ForecastDay{},
		Recommendations: []string{},
	}
}

// BuildForecast classifies each day for cropID, in the given order.
func BuildForecast(cropID string, days []DailyReading) Forecast {
	if len(days) == 0 {
		return UnavailableForecast()
	}

	f := Forecast{
		Available: true,
		Days:      make([]ForecastDay, 0, len(days)),
	}

	var (
		firstRisky      int
		firstAssessment RiskAssessment
	)
	for i, d := range days {
		a := Classify(cropID, d.Reading)
		day := ForecastDay{
			Day:         i + 1,
			Temperature: round1(d.Reading.Temperature),
			Humidity:    round1(d.Reading.Humidity),
			Rainfall:    round1(d.Reading.Rainfall),
			RiskLevel:   a.RiskLevel,
			Disease:     a.Disease,
		}
		if !d.Date.IsZero() {
			day.Date = d.Date.UTC().Format("2006-01-02")
		}
		f.Days = append(f.Days, day)

		switch a.RiskLevel {
		case RiskHigh:
			f.Summary.HighRiskDays++
			if firstRisky == 0 {
				firstRisky = day.Day
				firstAssessment = a
			}
		case RiskMedium:
			f.Summary.MediumRiskDays++
		default:
			f.Summary.LowRiskDays++
		}
	}

	f.Recommendations = recommend(len(days), firstRisky, firstAssessment, f.Summary)
	return f
}

func recommend(total, firstRisky int, a RiskAssessment, s ForecastSummary) []string {
	if firstRisky == 0 {
		return []string{
			fmt.Sprintf("Low disease risk expected over the next %d days", total),
			"Continue regular field inspections",
			"Monitor weather forecasts for any sudden changes",
		}
	}

	recs := []string{
		fmt.Sprintf("%s risk is high on %d of %d days, starting day %d",
			DisplayName(a.Disease), s.HighRiskDays, total, firstRisky),
	}
	if firstRisky > 1 {
		recs = append(recs, fmt.Sprintf("Apply preventive treatment before day %d", firstRisky))
	} else {
		recs = append(recs, "Apply preventive treatment immediately")
	}
	recs = append(recs, a.Prevention...)
	recs = append(recs, "Monitor plants daily for early symptom detection")
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
