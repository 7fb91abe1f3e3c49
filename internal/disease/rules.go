package disease

import (
	"slices"
	"sort"
)

// Rule ties a disease of one crop to the conditions that favour it.
type Rule struct {
	Crop       string
	Disease    string
	Prevention []string

	match func(EnvironmentalReading) bool
}

// Matches evaluates the rule predicate against r.
func (r Rule) Matches(reading EnvironmentalReading) bool {
	return r.match != nil && r.match(reading)
}

// between is an inclusive range check. NaN never matches.
func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// ruleTable is keyed by lowercase crop id. Order inside each slice is the
// evaluation order and must not change.
var ruleTable = map[string][]Rule{
	"rice": {
		{
			Crop:       "rice",
			Disease:    "blast",
			Prevention: []string{"Use resistant varieties", "Proper field drainage", "Balanced nitrogen application"},
			match: func(r EnvironmentalReading) bool {
				return between(r.Temperature, 20, 30) && r.Humidity >= 85 && r.Rainfall >= 100
			},
		},
		{
			Crop:       "rice",
			Disease:    "bacterial_blight",
			Prevention: []string{"Use disease-free seeds", "Avoid excessive nitrogen", "Maintain proper plant spacing"},
			match: func(r EnvironmentalReading) bool {
				return between(r.Temperature, 25, 35) && r.Humidity >= 80 && r.WindSpeed <= 10
			},
		},
	},
	"wheat": {
		{
			Crop:       "wheat",
			Disease:    "rust",
			Prevention: []string{"Use resistant varieties", "Crop rotation", "Fungicide spray if needed"},
			match: func(r EnvironmentalReading) bool {
				return between(r.Temperature, 15, 25) && r.Humidity >= 70 && between(r.Rainfall, 50, 200)
			},
		},
	},
	"tomato": {
		{
			Crop:       "tomato",
			Disease:    "late_blight",
			Prevention: []string{"Use certified seeds", "Proper ventilation", "Copper-based fungicides"},
			match: func(r EnvironmentalReading) bool {
				return between(r.Temperature, 10, 25) && r.Humidity >= 75 && r.Rainfall >= 50
			},
		},
	},
	"maize": {
		{
			Crop:       "maize",
			Disease:    "rust",
			Prevention: []string{"Resistant hybrids", "Timely planting", "Field sanitation"},
			match: func(r EnvironmentalReading) bool {
				return between(r.Temperature, 20, 30) && r.Humidity >= 60 && r.WindSpeed >= 5
			},
		},
	},
	"cotton": {
		{
			Crop:       "cotton",
			Disease:    "wilt",
			Prevention: []string{"Use resistant varieties", "Soil treatment", "Proper irrigation"},
			match: func(r EnvironmentalReading) bool {
				return between(r.Temperature, 25, 35) && between(r.Humidity, 40, 70) && between(r.SoilPH, 6, 8)
			},
		},
	},
}

// Crops returns the known crop keys in lexical order.
func Crops() []string {
	crops := make([]string, 0, len(ruleTable))
	for crop := range ruleTable {
		crops = append(crops, crop)
	}
	sort.Strings(crops)
	return crops
}

// IsKnownCrop reports whether cropID has rules.
func IsKnownCrop(cropID string) bool {
	_, ok := ruleTable[normalizeCrop(cropID)]
	return ok
}

// Rules returns a copy of the rules for cropID in evaluation order, or nil.
func Rules(cropID string) []Rule {
	rules, ok := ruleTable[normalizeCrop(cropID)]
	if !ok {
		return nil
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Prevention = slices.Clone(r.Prevention)
		out[i] = r
	}
	return out
}
