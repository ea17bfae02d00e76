package scheduler

import (
	"context"
	"sync"
	"time"

	"energy-collector/internal/collector"
	"energy-collector/internal/timeutil"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner is the collection entry point the scheduler drives.
type Runner interface {
	RunAll(ctx context.Context, start, end time.Time) []collector.RunReport
}

// Scheduler triggers a trailing-window collection on a cron schedule. An
// overlapping trigger is skipped while the previous run is still in flight.
type Scheduler struct {
	runner     Runner
	cron       *cron.Cron
	schedule   string
	windowDays int
	logger     *zap.Logger

	mu      sync.Mutex
	busy    bool
	lastRun time.Time
}

func New(runner Runner, schedule string, windowDays int, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		runner:     runner,
		cron:       cron.New(),
		schedule:   schedule,
		windowDays: windowDays,
		logger:     logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("window_days", s.windowDays))
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.logger.Warn("Skipping scheduled run, previous run still in flight")
		return
	}
	s.busy = true
	s.lastRun = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	window := timeutil.TrailingWindow(s.windowDays)
	s.logger.Info("Starting scheduled collection",
		zap.Time("start", window.Start),
		zap.Time("end", window.End))

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	reports := s.runner.RunAll(ctx, window.Start, window.End)
	for _, report := range reports {
		if report.AllFailed() {
			s.logger.Error("Scheduled collection produced no data",
				zap.String("collector", report.Collector),
				zap.Strings("errors", report.Errors))
		}
	}
}

// LastRun returns when the most recent scheduled run started.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
