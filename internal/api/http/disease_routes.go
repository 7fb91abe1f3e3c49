package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/crop-disease-advisor/internal/advisor"
	"github.com/i474232898/crop-disease-advisor/internal/disease"
	"github.com/i474232898/crop-disease-advisor/internal/store"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
)

// predictRequest is the body of the predict and classify endpoints. Any
// reading field left out is taken from the latest observed weather for
// city/country when given.
type predictRequest struct {
	Crop        string   `json:"crop" validate:"required_without=CropName"`
	CropName    string   `json:"crop_name"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Rainfall    *float64 `json:"rainfall"`
	WindSpeed   *float64 `json:"wind_speed"`
	SoilPH      *float64 `json:"ph"`
	City        string   `json:"city" validate:"required_with=Country"`
	Country     string   `json:"country" validate:"required_with=City"`
}

func (r predictRequest) crop() string {
	if r.Crop != "" {
		return r.Crop
	}
	return r.CropName
}

func (r predictRequest) location() *weather.Location {
	if r.City == "" {
		return nil
	}
	return &weather.Location{City: r.City, Country: r.Country}
}

func (r predictRequest) partial() advisor.PartialReading {
	return advisor.PartialReading{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Rainfall:    r.Rainfall,
		WindSpeed:   r.WindSpeed,
		SoilPH:      r.SoilPH,
	}
}

type cropRule struct {
	Disease     string   `json:"disease"`
	DisplayName string   `json:"display_name"`
	Prevention  []string `json:"prevention"`
}

type cropInfo struct {
	Crop     string     `json:"crop"`
	Diseases []cropRule `json:"diseases"`
}

func registerDiseaseRoutes(v1 fiber.Router, adv *advisor.Service, defaultPH float64) {
	// bindReading parses and validates the body, then fills the reading.
	bindReading := func(c *fiber.Ctx) (predictRequest, disease.EnvironmentalReading, error) {
		var req predictRequest
		if err := c.BodyParser(&req); err != nil {
			return req, disease.EnvironmentalReading{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return req, disease.EnvironmentalReading{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := adv.Fill(req.location(), req.partial(), defaultPH)
		if err != nil {
			if errors.Is(err, advisor.ErrIncompleteReading) {
				return req, reading, fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return req, reading, err
		}
		return req, reading, nil
	}

	v1.Post("/disease/predict", func(c *fiber.Ctx) error {
		req, reading, err := bindReading(c)
		if err != nil {
			return err
		}

		prediction := adv.Predict(c.UserContext(), req.crop(), reading, req.location())
		return c.JSON(fiber.Map{
			"success": true,
			"data":    prediction,
		})
	})

	v1.Post("/disease/classify", func(c *fiber.Ctx) error {
		req, reading, err := bindReading(c)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"crop":    req.crop(),
			"reading": reading,
			"data":    adv.Classify(req.crop(), reading),
		})
	})

	v1.Get("/disease/forecast", func(c *fiber.Ctx) error {
		crop := c.Query("crop")
		if crop == "" {
			return fiber.NewError(fiber.StatusBadRequest, "crop query parameter is required")
		}

		var req forecastQuery
		if err := req.bind(c, advisor.OutlookDays); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		soilPH := defaultPH
		if raw := c.Query("ph"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 || v > 14 {
				return fiber.NewError(fiber.StatusBadRequest, "ph must be a number between 0 and 14")
			}
			soilPH = v
		}

		loc := req.Location.toLocation()
		return c.JSON(fiber.Map{
			"crop":           crop,
			"location":       loc,
			"forecast_7days": adv.Outlook(c.UserContext(), crop, loc, req.Days, soilPH),
		})
	})

	v1.Get("/disease/crops", func(c *fiber.Ctx) error {
		crops := disease.Crops()
		out := make([]cropInfo, 0, len(crops))
		for _, crop := range crops {
			info := cropInfo{Crop: crop}
			for _, rule := range disease.Rules(crop) {
				info.Diseases = append(info.Diseases, cropRule{
					Disease:     rule.Disease,
					DisplayName: disease.DisplayName(rule.Disease),
					Prevention:  rule.Prevention,
				})
			}
			out = append(out, info)
		}
		return c.JSON(out)
	})

	v1.Get("/disease/history", func(c *fiber.Ctx) error {
		crop := c.Query("crop")
		if crop == "" {
			return fiber.NewError(fiber.StatusBadRequest, "crop query parameter is required")
		}
		if !disease.IsKnownCrop(crop) {
			return fiber.NewError(fiber.StatusBadRequest, "history is only kept for crops listed by /api/v1/disease/crops")
		}

		from, to, err := parseRange(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if to.Before(from) {
			return fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
		}

		predictions, err := adv.History(crop, from, to)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no predictions for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch prediction history")
		}

		return c.JSON(fiber.Map{
			"crop":        crop,
			"from":        from,
			"to":          to,
			"predictions": predictions,
		})
	})
}
