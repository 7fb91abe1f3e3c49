package disease

import "strings"

// RiskLevel is the display severity of an assessment.
type RiskLevel string

const (
	RiskUnknown RiskLevel = "Unknown"
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
)

// Healthy is the disease name reported when no rule matched.
const Healthy = "healthy"

// ParseRiskLevel maps a backend risk string onto a RiskLevel.
// Anything unrecognised is RiskUnknown.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow
	case "medium", "moderate":
		return RiskMedium
	case "high":
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// Severity orders levels Low < Medium < High. Unknown sorts below Low.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// EnvironmentalReading is a single set of field conditions.
// Values are not range checked.
type EnvironmentalReading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	Rainfall    float64 `json:"rainfall"`    // mm
	WindSpeed   float64 `json:"wind_speed"`  // km/h
	SoilPH      float64 `json:"ph"`
}

// RiskAssessment is the classifier output.
type RiskAssessment struct {
	Disease     string    `json:"disease"`
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskFactors []string  `json:"risk_factors"`
	Prevention  []string  `json:"prevention"`
}

// IsHealthy reports whether the assessment carries the healthy sentinel.
func (a RiskAssessment) IsHealthy() bool {
	return a.Disease == Healthy
}
