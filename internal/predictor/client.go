// Package predictor talks to the backend disease prediction endpoint.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/crop-disease-advisor/internal/disease"
	"github.com/i474232898/crop-disease-advisor/internal/resilience"
)

var (
	// ErrUnavailable is returned when no backend is configured.
	ErrUnavailable = errors.New("predictor backend not configured")
	// ErrRejected is returned when the backend answers with success=false.
	ErrRejected = errors.New("predictor rejected request")
)

const predictPath = "/api/predict-disease"

// defaultSpecificHumidity is what the form sends; the UI never collects it.
const defaultSpecificHumidity = 0.01

// Client calls the backend predictor.
type Client struct {
	baseURL string
	timeout time.Duration
	httpCfg resilience.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// New returns a Client for baseURL. An empty baseURL yields a client whose
// every call fails with ErrUnavailable. timeout bounds a whole Predict call;
// zero leaves it to ctx and the http.Client. Requests are not retried.
func New(client *http.Client, baseURL string, timeout time.Duration) *Client {
	bo := resilience.DefaultBackoff
	bo.MaxRetries = 0

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout: timeout,
		httpCfg: resilience.HTTPClientConfig{
			Client:  client,
			Backoff: bo,
		},
		circuit: resilience.NewBreaker("predictor"),
	}
}

type requestBody struct {
	CropName         string  `json:"crop_name"`
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	Rainfall         float64 `json:"rainfall"`
	WindSpeed        float64 `json:"wind_speed"`
	SpecificHumidity float64 `json:"specific_humidity"`
	PH               float64 `json:"ph"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Predict asks the backend for an assessment and normalises either response
// shape into a disease.Report.
func (c *Client) Predict(ctx context.Context, crop string, r disease.EnvironmentalReading) (disease.Report, error) {
	if c == nil || c.baseURL == "" {
		return disease.Report{}, ErrUnavailable
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(requestBody{
		CropName:         crop,
		Temperature:      r.Temperature,
		Humidity:         r.Humidity,
		Rainfall:         r.Rainfall,
		WindSpeed:        r.WindSpeed,
		SpecificHumidity: defaultSpecificHumidity,
		PH:               r.SoilPH,
	})
	if err != nil {
		return disease.Report{}, fmt.Errorf("encode predictor request: %w", err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := resilience.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return disease.Report{}, fmt.Errorf("predictor request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return disease.Report{}, fmt.Errorf("decode predictor response: %w", err)
	}
	if !env.Success {
		return disease.Report{}, fmt.Errorf("%w: %s", ErrRejected, env.Message)
	}

	return decodeData(env.Data)
}
