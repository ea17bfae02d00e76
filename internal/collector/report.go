package collector

import "time"

// RunReport summarizes one collector run for logs, the run history, and the
// HTTP status surface.
type RunReport struct {
	Collector     string    `json:"collector"`
	StartedAt     time.Time `json:"started_at"`
	DurationSecs  float64   `json:"duration_secs"`
	RangeStart    time.Time `json:"range_start"`
	RangeEnd      time.Time `json:"range_end"`
	Slices        int       `json:"slices"`
	FailedSlices  int       `json:"failed_slices"`
	EmptySlices   int       `json:"empty_slices"`
	SeriesWritten int       `json:"series_written"`
	Rows          int       `json:"rows"`
	Errors        []string  `json:"errors,omitempty"`
}

// AllFailed reports whether no slice produced data.
func (r RunReport) AllFailed() bool {
	return r.Slices > 0 && r.FailedSlices >= r.Slices
}
