package main

import (
	"context"
	"flag"
	"os"

	"energy-collector/internal/collector"
	"energy-collector/internal/config"
	"energy-collector/internal/timeutil"
	"energy-collector/pkg/client"
	"go.uber.org/zap"
)

func main() {
	startFlag := flag.String("start", "", "range start (YYYY-MM-DD), default 30 days back")
	endFlag := flag.String("end", "", "range end (YYYY-MM-DD), default yesterday")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	window := timeutil.TrailingWindow(30)
	start, end := window.Start, window.End
	if *startFlag != "" {
		if start, err = timeutil.ParseDate(*startFlag); err != nil {
			logger.Fatal("Invalid -start", zap.Error(err))
		}
	}
	if *endFlag != "" {
		if end, err = timeutil.ParseDate(*endFlag); err != nil {
			logger.Fatal("Invalid -end", zap.Error(err))
		}
	}

	rte, err := client.NewRTEClient(cfg.RTE.BaseURL, cfg.RTE.ClientID, cfg.RTE.ClientSecret,
		cfg.RTE.ProductionType, client.ClientConfig{
			Timeout:              cfg.HTTP.Timeout,
			RateLimitCooldown:    cfg.HTTP.RateLimitCooldown,
			RateLimitMaxAttempts: cfg.HTTP.RateLimitMaxAttempts,
			BreakerTimeout:       cfg.HTTP.BreakerTimeout,
		}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation client", zap.Error(err))
	}

	generation, err := collector.NewGenerationCollector(rte, cfg.RTE.SaveDir, cfg.RTE.SliceStep, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation collector", zap.Error(err))
	}

	report, err := generation.Collect(context.Background(), start, end)
	if err != nil {
		logger.Fatal("Collection failed", zap.Error(err))
	}
	if report.AllFailed() {
		logger.Error("All slices failed", zap.Strings("errors", report.Errors))
		os.Exit(1)
	}
}
