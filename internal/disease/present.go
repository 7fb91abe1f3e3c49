package disease

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var riskColors = map[RiskLevel]string{
	RiskHigh:    "#dc3545",
	RiskMedium:  "#ffc107",
	RiskLow:     "#28a745",
	RiskUnknown: "#6c757d",
}

// RiskColor returns the badge color for level. Unrecognised levels share
// the Unknown color.
func RiskColor(level RiskLevel) string {
	if c, ok := riskColors[level]; ok {
		return c
	}
	return riskColors[RiskUnknown]
}

// DisplayName turns "late_blight" into "Late Blight".
func DisplayName(diseaseName string) string {
	tokens := strings.FieldsFunc(diseaseName, func(r rune) bool { return r == '_' || r == ' ' })
	for i, t := range tokens {
		t = strings.ToLower(t)
		first, size := utf8.DecodeRuneInString(t)
		tokens[i] = string(unicode.ToUpper(first)) + t[size:]
	}
	return strings.Join(tokens, " ")
}

// Report is the single presentation shape handed to renderers.
type Report struct {
	Disease     string    `json:"disease"`
	DisplayName string    `json:"display_name"`
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskColor   string    `json:"risk_color"`
	Healthy     bool      `json:"healthy"`
	RiskFactors []string  `json:"risk_factors"`
	Pesticides  []string  `json:"pesticides"`
	Prevention  []string  `json:"prevention"`
	Outlook     Outlook   `json:"outlook"`
	Forecast    *Forecast `json:"forecast_7days,omitempty"`
}

// Outlook is the "after 7 days" narrative block.
type Outlook struct {
	Summary []string `json:"summary"`
	Actions []string `json:"actions"`
}

// Assessment recovers the classifier-shaped view of the report.
func (r Report) Assessment() RiskAssessment {
	return RiskAssessment{
		Disease:     r.Disease,
		RiskLevel:   r.RiskLevel,
		RiskFactors: slices.Clone(r.RiskFactors),
		Prevention:  slices.Clone(r.Prevention),
	}
}

// Present builds the report for an assessment. Empty pesticide or
// prevention lists are replaced by generic advice; order is preserved.
func Present(a RiskAssessment, pesticides []string, forecast *Forecast) Report {
	name := a.Disease
	if name == "" {
		name = "Unknown"
	}
	level := a.RiskLevel
	if level == "" {
		level = RiskLow
	}
	if len(pesticides) == 0 {
		pesticides = []string{"Consult agricultural expert"}
	}
	prevention := a.Prevention
	if len(prevention) == 0 {
		prevention = []string{"Monitor regularly"}
	}
	factors := a.RiskFactors
	if factors == nil {
		factors = []string{}
	}

	return Report{
		Disease:     name,
		DisplayName: DisplayName(name),
		RiskLevel:   level,
		RiskColor:   RiskColor(level),
		Healthy:     name == Healthy,
		RiskFactors: slices.Clone(factors),
		Pesticides:  slices.Clone(pesticides),
		Prevention:  slices.Clone(prevention),
		Outlook:     buildOutlook(name, level, pesticides),
		Forecast:    forecast,
	}
}

func buildOutlook(name string, level RiskLevel, pesticides []string) Outlook {
	if name == Healthy {
		return Outlook{
			Summary: []string{
				"Current conditions suggest your crop will likely remain healthy over the next 7 days.",
				"Continue with regular monitoring and preventive care practices.",
			},
			Actions: []string{
				"Maintain current irrigation and fertilization schedule",
				"Continue regular field inspections",
				"Keep preventive treatments ready in case conditions change",
				"Monitor weather forecasts for any sudden changes",
			},
		}
	}

	first := pesticides
	if len(first) > 2 {
		first = first[:2]
	}
	return Outlook{
		Summary: []string{
			fmt.Sprintf("%s may progress from %s to higher risk levels if environmental conditions remain favorable.",
				DisplayName(name), strings.ToLower(string(level))),
			"Temperature and humidity patterns over the next 7 days will be critical factors in disease development.",
			"Days 3-5 are typically most critical for disease establishment and spread.",
		},
		Actions: []string{
			"Day 1-2: Apply recommended treatments: " + strings.Join(first, ", "),
			"Day 3-4: Monitor for early symptoms and adjust irrigation",
			"Day 5-7: Evaluate effectiveness and repeat treatment if necessary",
		},
	}
}
