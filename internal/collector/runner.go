package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner drives both collectors over the same range and records the outcome
// in the run history. Runs are serialized: the collectors share mutable
// client state and truncate-and-rewrite the same output files, so a manual
// trigger arriving during a scheduled run waits its turn.
type Runner struct {
	mu         sync.Mutex
	generation *GenerationCollector
	weather    *WeatherCollector
	history    *RunHistory
	logger     *zap.Logger
}

func NewRunner(generation *GenerationCollector, weather *WeatherCollector, history *RunHistory, logger *zap.Logger) *Runner {
	return &Runner{
		generation: generation,
		weather:    weather,
		history:    history,
		logger:     logger,
	}
}

// RunAll runs the generation and weather pipelines sequentially. A pipeline
// error is recorded in its report rather than aborting the other pipeline.
func (r *Runner) RunAll(ctx context.Context, start, end time.Time) []RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports := make([]RunReport, 0, 2)

	genReport, err := r.generation.Collect(ctx, start, end)
	if err != nil {
		r.logger.Error("Generation collection failed", zap.Error(err))
		genReport.Errors = append(genReport.Errors, err.Error())
	}
	r.history.Add(genReport)
	reports = append(reports, genReport)

	weatherReport, err := r.weather.Collect(ctx, start, end)
	if err != nil {
		r.logger.Error("Weather collection failed", zap.Error(err))
		weatherReport.Errors = append(weatherReport.Errors, err.Error())
	}
	r.history.Add(weatherReport)
	reports = append(reports, weatherReport)

	return reports
}
