package disease

import (
	"slices"
	"strings"
)

// defaultPrevention is returned with every healthy assessment.
var defaultPrevention = []string{
	"Monitor plants regularly",
	"Maintain proper field hygiene",
	"Use quality seeds",
	"Follow proper irrigation practices",
}

var matchedFactors = []string{"temperature", "humidity", "rainfall"}

// Classify returns the assessment of the first rule for cropID that matches
// the reading. Unknown crops and unmatched readings yield the healthy
// assessment; Classify never fails.
func Classify(cropID string, reading EnvironmentalReading) RiskAssessment {
	for _, rule := range ruleTable[normalizeCrop(cropID)] {
		if rule.Matches(reading) {
			return RiskAssessment{
				Disease:     rule.Disease,
				RiskLevel:   RiskHigh,
				RiskFactors: slices.Clone(matchedFactors),
				Prevention:  slices.Clone(rule.Prevention),
			}
		}
	}
	return HealthyAssessment()
}

// HealthyAssessment is the low-risk default.
func HealthyAssessment() RiskAssessment {
	return RiskAssessment{
		Disease:     Healthy,
		RiskLevel:   RiskLow,
		RiskFactors: []string{},
		Prevention:  slices.Clone(defaultPrevention),
	}
}

func normalizeCrop(cropID string) string {
	return strings.ToLower(cropID)
}
