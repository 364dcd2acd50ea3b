package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/accident-forecast/internal/api/http"
	"github.com/i474232898/accident-forecast/internal/config"
	"github.com/i474232898/accident-forecast/internal/model"
	"github.com/i474232898/accident-forecast/internal/prediction"
	"github.com/i474232898/accident-forecast/internal/scheduler"
	"github.com/i474232898/accident-forecast/internal/store"
	"github.com/i474232898/accident-forecast/internal/weather"
	"github.com/i474232898/accident-forecast/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Models are loaded once; any failure aborts before serving traffic.
	islModel, err := model.LoadLinear(cfg.IslandModelPath)
	if err != nil {
		log.Fatalf("failed to load island model: %v", err)
	}
	usaModel, err := model.LoadTreeEnsemble(cfg.UsaModelPath)
	if err != nil {
		log.Fatalf("failed to load usa model: %v", err)
	}

	island, err := prediction.NewIslandAdapter(islModel, cfg.Calibration.Island)
	if err != nil {
		log.Fatalf("failed to initialise island model: %v", err)
	}
	usa, err := prediction.NewUsaAdapter(usaModel, cfg.Calibration.Usa)
	if err != nil {
		log.Fatalf("failed to initialise usa model: %v", err)
	}
	log.Printf("INFO: models loaded (calibration %s, usa live weather: %t)", cfg.Calibration.Version, cfg.Calibration.Usa.UseLiveWeather)

	// Shared HTTP client for the outbound feed.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Prediction requests never share a breaker; each one reaches the feed.
	provider := providers.NewVedurProvider(httpClient, cfg.FeedURL, cfg.StationIDs, cfg.FetchRetries)
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	weatherService := weather.NewService(memStore, provider)
	predictions := prediction.NewService(weatherService, island, usa, cfg.Calibration)

	if cfg.SchedulerEnabled {
		snapshotProvider := providers.NewVedurProvider(httpClient, cfg.FeedURL, cfg.StationIDs, cfg.FetchRetries,
			providers.WithBreakerFailures(cfg.CircuitBreakerFailures))
		snapshots := weather.NewService(memStore, snapshotProvider)

		sched := scheduler.New(cfg.FetchInterval, cfg.HTTPTimeout, snapshots)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "accident-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Dependencies{
		Predictions: predictions,
		History:     weatherService,
		Models: map[string]model.Info{
			prediction.RegionIsland: islModel.Info(),
			prediction.RegionUsa:    usaModel.Info(),
		},
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
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
