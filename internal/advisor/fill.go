package advisor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

// ErrIncompleteReading is returned when a reading field is neither supplied
// nor available from observed weather.
var ErrIncompleteReading = errors.New("incomplete environmental reading")

// PartialReading is a reading as submitted by a form; nil means not supplied.
type PartialReading struct {
	Temperature *float64
	Humidity    *float64
	Rainfall    *float64
	WindSpeed   *float64
	SoilPH      *float64
}

// Fill completes partial with the latest observed weather for loc. Soil pH
// falls back to defaultPH when positive.
func (s *Service) Fill(loc *weather.Location, partial PartialReading, defaultPH float64) (disease.EnvironmentalReading, error) {
	var observed *disease.EnvironmentalReading
	if loc != nil && s.weather != nil {
		if snap, err := s.weather.GetLatest(*loc); err == nil {
			r := snap.Reading(0)
			observed = &r
		}
	}

	var missing []string
	pick := func(name string, v *float64, fromWeather func(disease.EnvironmentalReading) float64) float64 {
		if v != nil {
			return *v
		}
		if observed != nil && fromWeather != nil {
			return fromWeather(*observed)
		}
		missing = append(missing, name)
		return 0
	}

	r := disease.EnvironmentalReading{
		Temperature: pick("temperature", partial.Temperature, func(o disease.EnvironmentalReading) float64 { return o.Temperature }),
		Humidity:    pick("humidity", partial.Humidity, func(o disease.EnvironmentalReading) float64 { return o.Humidity }),
		Rainfall:    pick("rainfall", partial.Rainfall, func(o disease.EnvironmentalReading) float64 { return o.Rainfall }),
		WindSpeed:   pick("wind_speed", partial.WindSpeed, func(o disease.EnvironmentalReading) float64 { return o.WindSpeed }),
	}
	if partial.SoilPH != nil {
		r.SoilPH = *partial.SoilPH
	} else if defaultPH > 0 {
		r.SoilPH = defaultPH
	} else {
		missing = append(missing, "ph")
	}

	if len(missing) > 0 {
		return disease.EnvironmentalReading{}, fmt.Errorf("%w: missing %s", ErrIncompleteReading, strings.Join(missing, ", "))
	}
	return r, nil
}
