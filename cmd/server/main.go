package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/api"
	"github.com/bobby-s-dev/weather-lookup/internal/config"
	"github.com/bobby-s-dev/weather-lookup/internal/scheduler"
	"github.com/bobby-s-dev/weather-lookup/internal/services"
	"github.com/bobby-s-dev/weather-lookup/internal/storage"
	"github.com/bobby-s-dev/weather-lookup/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = config.ParseLogLevel(cfg.Server.LogLevel)
	if leveled, err := zapConfig.Build(); err == nil {
		logger = leveled
		zap.ReplaceGlobals(logger)
	}
	logger.Info("Starting Weather Lookup Service")

	// Local storage
	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("path", cfg.Storage.Path), zap.Error(err))
	}
	defer store.Close()

	clientConfig := client.ClientConfig{
		Timeout:        cfg.WeatherAPI.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
		RateLimit:      cfg.RateLimit.RPS,
		RateBurst:      cfg.RateLimit.Burst,
	}

	weatherClient := client.NewOpenWeatherClient(client.OpenWeatherSettings{
		APIKey:   cfg.WeatherAPI.OpenWeatherAPIKey,
		BaseURL:  cfg.WeatherAPI.BaseURL,
		GeoURL:   cfg.WeatherAPI.GeoURL,
		Units:    cfg.WeatherAPI.Units,
		Lang:     cfg.WeatherAPI.Lang,
		Location: cfg.WeatherAPI.ForecastTimezone,
	}, clientConfig, logger)

	locator := client.NewIPLocator(client.IPLocatorSettings{
		Enabled:  cfg.Geolocation.Enabled,
		URL:      cfg.Geolocation.URL,
		Accuracy: cfg.Geolocation.Accuracy,
	}, client.ClientConfig{Timeout: cfg.WeatherAPI.Timeout}, logger)

	// Stores
	weatherStore := services.NewWeatherStore(weatherClient, cfg.WeatherAPI.ForecastDays, logger)
	favorites := services.NewFavoritesStore(store, logger)
	favorites.Load()
	history := services.NewHistoryStore(store, logger)
	history.Load()
	location := services.NewLocationStore(locator, logger)

	// Initialize scheduler
	weatherScheduler := scheduler.NewScheduler(
		weatherStore,
		cfg.Scheduler.RefreshSchedule,
		cfg.Scheduler.DefaultCity,
		logger,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		Immutable:    true,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(weatherStore, favorites, history, location, logger).
		WithScheduler(weatherScheduler)
	api.SetupRoutes(app, handler, logger)

	// Start scheduler
	if err := weatherScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	weatherScheduler.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
