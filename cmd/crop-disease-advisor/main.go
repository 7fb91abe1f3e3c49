package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/i474232898/crop-disease-advisor/internal/advisor"
	httpapi "github.com/i474232898/crop-disease-advisor/internal/api/http"
	"github.com/i474232898/crop-disease-advisor/internal/config"
	"github.com/i474232898/crop-disease-advisor/internal/metrics"
	"github.com/i474232898/crop-disease-advisor/internal/predictor"
	"github.com/i474232898/crop-disease-advisor/internal/scheduler"
	"github.com/i474232898/crop-disease-advisor/internal/store"
	"github.com/i474232898/crop-disease-advisor/internal/weather"
	"github.com/i474232898/crop-disease-advisor/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m := metrics.New()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	// Open-Meteo needs no key; locations without coordinates are geocoded
	// when a Google API key is configured.
	var geo providers.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	provs = append(provs, providers.NewOpenMeteoProvider(httpClient, geo))

	weatherSvc := weather.NewService(store.NewMemoryStore[weather.WeatherSnapshot](cfg.StoreMaxHistory, cfg.StoreMaxAge), provs)
	weatherSvc.SetFailureRecorder(m)

	// Without a backend URL every prediction is answered by the offline rules.
	var remote advisor.Predictor
	if cfg.PredictorURL != "" {
		remote = predictor.New(&http.Client{Timeout: cfg.PredictorTimeout}, cfg.PredictorURL, cfg.PredictorTimeout)
	} else {
		log.Println("INFO: PREDICTOR_URL not set; using offline disease rules only")
	}

	history := store.NewMemoryStore[advisor.Prediction](cfg.StoreMaxHistory, cfg.StoreMaxAge)
	adv := advisor.NewService(remote, weatherSvc, history, m)

	jobs := []scheduler.Job{scheduler.WeatherRefresh(weatherSvc, cfg.Locations)}
	if len(cfg.WatchCrops) > 0 {
		jobs = append(jobs, scheduler.CropWatch(adv, cfg.WatchCrops, cfg.Locations, cfg.DefaultSoilPH, scheduler.LogAlert))
	}

	sched := scheduler.New(cfg.FetchInterval, jobs...)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "crop-disease-advisor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "crop-disease-advisor",
			"predictor": remote != nil,
			"providers": len(provs),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpapi.RegisterRoutes(app, httpapi.Handlers{
		Weather:       weatherSvc,
		Advisor:       adv,
		DefaultSoilPH: cfg.DefaultSoilPH,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
