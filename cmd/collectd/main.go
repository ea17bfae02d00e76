package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energy-collector/internal/api"
	"energy-collector/internal/collector"
	"energy-collector/internal/config"
	"energy-collector/internal/scheduler"
	"energy-collector/internal/station"
	"energy-collector/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting energy data collector daemon")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	clientConfig := client.ClientConfig{
		Timeout:              cfg.HTTP.Timeout,
		RateLimitCooldown:    cfg.HTTP.RateLimitCooldown,
		RateLimitMaxAttempts: cfg.HTTP.RateLimitMaxAttempts,
		BreakerTimeout:       cfg.HTTP.BreakerTimeout,
	}

	// Initialize generation pipeline
	rte, err := client.NewRTEClient(cfg.RTE.BaseURL, cfg.RTE.ClientID, cfg.RTE.ClientSecret,
		cfg.RTE.ProductionType, clientConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation client", zap.Error(err))
	}
	generation, err := collector.NewGenerationCollector(rte, cfg.RTE.SaveDir, cfg.RTE.SliceStep, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation collector", zap.Error(err))
	}

	// Initialize weather pipeline
	stations := station.Defaults()
	if cfg.Weather.StationsFile != "" {
		stations, err = station.Load(cfg.Weather.StationsFile)
		if err != nil {
			logger.Fatal("Failed to load stations", zap.Error(err))
		}
	}
	openMeteo := client.NewOpenMeteoClient(cfg.Weather.BaseURL, clientConfig, logger)
	weather, err := collector.NewWeatherCollector(openMeteo, stations, cfg.Weather.SaveDir,
		time.Duration(cfg.Weather.SliceDays)*24*time.Hour, cfg.Weather.Granularity, logger)
	if err != nil {
		logger.Fatal("Failed to initialize weather collector", zap.Error(err))
	}

	history := collector.NewRunHistory(50, logger)
	runner := collector.NewRunner(generation, weather, history, logger)

	// Initialize scheduler
	sched, err := scheduler.New(runner, cfg.Scheduler.Schedule, cfg.Scheduler.WindowDays, logger)
	if err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(runner, history, cfg.Scheduler.WindowDays, logger)
	api.SetupRoutes(app, handler, logger)

	// Start scheduler
	sched.Start()

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

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop scheduler
	sched.Stop()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
