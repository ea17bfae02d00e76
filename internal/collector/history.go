package collector

import (
	"sync"

	"go.uber.org/zap"
)

// RunHistory keeps a bounded in-memory record of recent collector runs for
// the status API.
type RunHistory struct {
	mu     sync.RWMutex
	runs   []RunReport
	max    int
	logger *zap.Logger
}

func NewRunHistory(max int, logger *zap.Logger) *RunHistory {
	if max < 1 {
		max = 1
	}
	return &RunHistory{
		max:    max,
		logger: logger,
	}
}

// Add records a run, evicting the oldest entry once the bound is reached.
func (h *RunHistory) Add(report RunReport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, report)
	if len(h.runs) > h.max {
		h.runs = h.runs[len(h.runs)-h.max:]
	}

	h.logger.Debug("Run recorded",
		zap.String("collector", report.Collector),
		zap.Int("history_size", len(h.runs)))
}

// Recent returns the recorded runs, newest first.
func (h *RunHistory) Recent() []RunReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]RunReport, 0, len(h.runs))
	for i := len(h.runs) - 1; i >= 0; i-- {
		out = append(out, h.runs[i])
	}
	return out
}

// Last returns the most recent run for the named collector.
func (h *RunHistory) Last(collector string) (RunReport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.runs) - 1; i >= 0; i-- {
		if h.runs[i].Collector == collector {
			return h.runs[i], true
		}
	}
	return RunReport{}, false
}
