package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port string
	}

	RTE struct {
		ClientID       string
		ClientSecret   string
		BaseURL        string
		ProductionType string
		SliceStep      time.Duration
		SaveDir        string
	}

	Weather struct {
		BaseURL      string
		SliceDays    int
		SaveDir      string
		Granularity  string
		StationsFile string
	}

	HTTP struct {
		Timeout              time.Duration
		RateLimitCooldown    time.Duration
		RateLimitMaxAttempts int
		BreakerTimeout       time.Duration
	}

	Scheduler struct {
		Schedule   string
		WindowDays int
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")

	// RTE generation API configuration
	cfg.RTE.ClientID = getEnv("RTE_CLIENT_ID", "")
	cfg.RTE.ClientSecret = getEnv("RTE_CLIENT_SECRET", "")
	cfg.RTE.BaseURL = getEnv("RTE_BASE_URL", "https://digital.iservices.rte-france.com")
	cfg.RTE.ProductionType = getEnv("RTE_PRODUCTION_TYPE", "")
	cfg.RTE.SliceStep = parseDuration(getEnv("RTE_SLICE_STEP", "24h"))
	cfg.RTE.SaveDir = getEnv("RTE_SAVE_DIR", "data/energy")

	// Open-Meteo archive configuration
	cfg.Weather.BaseURL = getEnv("OPENMETEO_ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive")
	cfg.Weather.SliceDays = parseInt(getEnv("WEATHER_SLICE_DAYS", "120"))
	cfg.Weather.SaveDir = getEnv("WEATHER_SAVE_DIR", "data/raw/weather")
	cfg.Weather.Granularity = getEnv("WEATHER_GRANULARITY", "hourly")
	cfg.Weather.StationsFile = getEnv("WEATHER_STATIONS_FILE", "")

	// Shared HTTP client configuration
	cfg.HTTP.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	cfg.HTTP.RateLimitCooldown = parseDuration(getEnv("RATE_LIMIT_COOLDOWN", "60s"))
	cfg.HTTP.RateLimitMaxAttempts = parseInt(getEnv("RATE_LIMIT_MAX_ATTEMPTS", "5"))
	cfg.HTTP.BreakerTimeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Scheduler configuration
	cfg.Scheduler.Schedule = getEnv("COLLECT_SCHEDULE", "0 6 * * *")
	cfg.Scheduler.WindowDays = parseInt(getEnv("COLLECT_WINDOW_DAYS", "30"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}
