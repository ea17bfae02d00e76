package main

import (
	"context"
	"flag"
	"os"
	"time"

	"energy-collector/internal/collector"
	"energy-collector/internal/config"
	"energy-collector/internal/station"
	"energy-collector/internal/timeutil"
	"energy-collector/pkg/client"
	"go.uber.org/zap"
)

func main() {
	startFlag := flag.String("start", "", "range start (YYYY-MM-DD), default 5 days back")
	endFlag := flag.String("end", "", "range end (YYYY-MM-DD), default yesterday")
	granularityFlag := flag.String("granularity", "", "hourly or daily, overrides WEATHER_GRANULARITY")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	window := timeutil.TrailingWindow(5)
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
	granularity := cfg.Weather.Granularity
	if *granularityFlag != "" {
		granularity = *granularityFlag
	}

	stations := station.Defaults()
	if cfg.Weather.StationsFile != "" {
		stations, err = station.Load(cfg.Weather.StationsFile)
		if err != nil {
			logger.Fatal("Failed to load stations", zap.Error(err))
		}
	}

	openMeteo := client.NewOpenMeteoClient(cfg.Weather.BaseURL, client.ClientConfig{
		Timeout:              cfg.HTTP.Timeout,
		RateLimitCooldown:    cfg.HTTP.RateLimitCooldown,
		RateLimitMaxAttempts: cfg.HTTP.RateLimitMaxAttempts,
		BreakerTimeout:       cfg.HTTP.BreakerTimeout,
	}, logger)

	weather, err := collector.NewWeatherCollector(openMeteo, stations, cfg.Weather.SaveDir,
		time.Duration(cfg.Weather.SliceDays)*24*time.Hour, granularity, logger)
	if err != nil {
		logger.Fatal("Failed to initialize weather collector", zap.Error(err))
	}

	report, err := weather.Collect(context.Background(), start, end)
	if err != nil {
		logger.Fatal("Collection failed", zap.Error(err))
	}
	if report.AllFailed() {
		logger.Error("All slices failed", zap.Strings("errors", report.Errors))
		os.Exit(1)
	}
}
