package api

import (
	"context"
	"time"

	"energy-collector/internal/collector"
	"energy-collector/internal/timeutil"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Runner is the collection entry point the trigger endpoint drives.
type Runner interface {
	RunAll(ctx context.Context, start, end time.Time) []collector.RunReport
}

type Handler struct {
	runner     Runner
	history    *collector.RunHistory
	windowDays int
	logger     *zap.Logger
}

func NewHandler(runner Runner, history *collector.RunHistory, windowDays int, logger *zap.Logger) *Handler {
	return &Handler{
		runner:     runner,
		history:    history,
		windowDays: windowDays,
		logger:     logger,
	}
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	}
	if last, ok := h.history.Last("generation"); ok {
		resp["last_generation_run"] = last.StartedAt
	}
	if last, ok := h.history.Last("weather"); ok {
		resp["last_weather_run"] = last.StartedAt
	}
	return c.JSON(resp)
}

// GetRuns handles GET /api/v1/runs
func (h *Handler) GetRuns(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"runs": h.history.Recent(),
	})
}

// TriggerCollect handles POST /api/v1/collect. The range defaults to the
// trailing window; an explicit start and end override it. The collection runs
// in the background and the recent runs list reports the outcome.
func (h *Handler) TriggerCollect(c *fiber.Ctx) error {
	window := timeutil.TrailingWindow(h.windowDays)
	start, end := window.Start, window.End

	if raw := c.Query("start"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid start parameter",
				"details": err.Error(),
			})
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid end parameter",
				"details": err.Error(),
			})
		}
		end = parsed
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End precedes start",
		})
	}

	h.logger.Info("Collection triggered",
		zap.Time("start", start),
		zap.Time("end", end))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		h.runner.RunAll(ctx, start, end)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "collection started",
		"start":  start,
		"end":    end,
	})
}

var startTime = time.Now()
