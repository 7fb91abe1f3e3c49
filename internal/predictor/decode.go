package predictor

import (
	"encoding/json"
	"fmt"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
)

// payload covers both backend shapes: the comprehensive one with a diseases
// list and forecast, and the older flat one.
type payload struct {
	Diseases []struct {
		Disease     string   `json:"disease"`
		RiskLevel   string   `json:"risk_level"`
		RiskFactors []string `json:"risk_factors"`
		Prevention  struct {
			Pesticides    []string `json:"pesticides"`
			Management    []string `json:"management"`
			CriticalStage []string `json:"critical_stage"`
		} `json:"prevention"`
	} `json:"diseases"`
	Forecast *disease.Forecast `json:"forecast_7days"`

	Disease     string   `json:"disease"`
	RiskLevel   string   `json:"risk_level"`
	RiskFactors []string `json:"risk_factors"`
	Pesticides  []string `json:"pesticides"`
	Prevention  []string `json:"prevention"`
}

func decodeData(raw json.RawMessage) (disease.Report, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return disease.Report{}, fmt.Errorf("predictor response has no data")
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return disease.Report{}, fmt.Errorf("decode predictor data: %w", err)
	}

	if len(p.Diseases) > 0 {
		primary := p.Diseases[0]
		prevention := primary.Prevention.Management
		if len(prevention) == 0 {
			prevention = primary.Prevention.CriticalStage
		}
		a := disease.RiskAssessment{
			Disease:     primary.Disease,
			RiskLevel:   disease.ParseRiskLevel(primary.RiskLevel),
			RiskFactors: primary.RiskFactors,
			Prevention:  prevention,
		}
		var forecast *disease.Forecast
		if p.Forecast != nil && p.Forecast.Available {
			forecast = p.Forecast
		}
		return disease.Present(a, primary.Prevention.Pesticides, forecast), nil
	}

	level := disease.RiskLow
	if p.RiskLevel != "" {
		level = disease.ParseRiskLevel(p.RiskLevel)
	}
	a := disease.RiskAssessment{
		Disease:     p.Disease,
		RiskLevel:   level,
		RiskFactors: p.RiskFactors,
		Prevention:  p.Prevention,
	}
	return disease.Present(a, p.Pesticides, nil), nil
}
