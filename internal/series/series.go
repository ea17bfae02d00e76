// Package series holds the column-oriented fragments produced by parsing one
// fetch slice, and the merge that folds per-slice fragments into continuous
// series keyed by production type or weather station.
package series

import (
	"fmt"
	"strconv"
)

// Appender is implemented by series fragments that can be concatenated in
// slice order.
type Appender[S any] interface {
	Append(other S) S
}

// Merge folds per-slice fragments left to right. A key absent from earlier
// slices starts from the zero fragment, so heterogeneous key sets across
// slices never crash the merge. Slice order is preserved per key; no
// deduplication or gap-filling happens across slice boundaries.
func Merge[S Appender[S]](parts []map[string]S) map[string]S {
	out := make(map[string]S)
	for _, part := range parts {
		for key, frag := range part {
			out[key] = out[key].Append(frag)
		}
	}
	return out
}

// GenerationSeries holds one production type's observations as parallel
// arrays of interval starts, interval ends, and produced values.
type GenerationSeries struct {
	Start  []int64
	End    []int64
	Values []float64
}

// Len returns the number of observations.
func (s GenerationSeries) Len() int { return len(s.Start) }

// Append concatenates other after s and returns the result.
func (s GenerationSeries) Append(other GenerationSeries) GenerationSeries {
	s.Start = append(s.Start, other.Start...)
	s.End = append(s.End, other.End...)
	s.Values = append(s.Values, other.Values...)
	return s
}

// Validate checks the equal-length invariant.
func (s GenerationSeries) Validate() error {
	if len(s.End) != len(s.Start) || len(s.Values) != len(s.Start) {
		return fmt.Errorf("series: unequal column lengths start=%d end=%d values=%d",
			len(s.Start), len(s.End), len(s.Values))
	}
	return nil
}

// Header returns the CSV header for a generation series.
func (s GenerationSeries) Header() []string { return []string{"start", "end", "values"} }

// Rows renders the series as CSV rows, one per observation.
func (s GenerationSeries) Rows() [][]string {
	rows := make([][]string, 0, len(s.Start))
	for i := range s.Start {
		rows = append(rows, []string{
			strconv.FormatInt(s.Start[i], 10),
			strconv.FormatInt(s.End[i], 10),
			strconv.FormatFloat(s.Values[i], 'f', -1, 64),
		})
	}
	return rows
}

// StationSeries holds one weather station's observations: parallel datetime
// and Unix timestamp columns plus dynamically discovered metric columns.
// A nil metric cell is a point the upstream reported as null.
type StationSeries struct {
	Station     string
	StationName string
	Datetime    []string
	Timestamp   []int64
	Metrics     map[string][]*float64
}

// Len returns the number of observations.
func (s StationSeries) Len() int { return len(s.Datetime) }

// Append concatenates other after s. A metric column present on only one
// side is padded with nils so every column keeps the row count.
func (s StationSeries) Append(other StationSeries) StationSeries {
	base := len(s.Datetime)
	add := len(other.Datetime)
	if s.Station == "" {
		s.Station = other.Station
		s.StationName = other.StationName
	}
	s.Datetime = append(s.Datetime, other.Datetime...)
	s.Timestamp = append(s.Timestamp, other.Timestamp...)

	names := make(map[string]struct{}, len(s.Metrics)+len(other.Metrics))
	for name := range s.Metrics {
		names[name] = struct{}{}
	}
	for name := range other.Metrics {
		names[name] = struct{}{}
	}
	if len(names) == 0 {
		return s
	}

	merged := make(map[string][]*float64, len(names))
	for name := range names {
		col := make([]*float64, 0, base+add)
		col = append(col, padColumn(s.Metrics[name], base)...)
		col = append(col, padColumn(other.Metrics[name], add)...)
		merged[name] = col
	}
	s.Metrics = merged
	return s
}

func padColumn(col []*float64, n int) []*float64 {
	if len(col) >= n {
		return col[:n]
	}
	padded := make([]*float64, n)
	copy(padded, col)
	return padded
}

// MetricNames filters the preferred order down to the metrics actually
// present, keeping output columns deterministic.
func (s StationSeries) MetricNames(order []string) []string {
	names := make([]string, 0, len(order))
	for _, name := range order {
		if _, ok := s.Metrics[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Header returns the CSV header: fixed identity columns followed by the
// metric columns in the given preferred order.
func (s StationSeries) Header(order []string) []string {
	header := []string{"datetime", "timestamp", "station", "station_name"}
	return append(header, s.MetricNames(order)...)
}

// Rows renders the series as CSV rows; nil metric cells become empty fields.
func (s StationSeries) Rows(order []string) [][]string {
	names := s.MetricNames(order)
	rows := make([][]string, 0, len(s.Datetime))
	for i := range s.Datetime {
		row := make([]string, 0, 4+len(names))
		row = append(row,
			s.Datetime[i],
			strconv.FormatInt(s.Timestamp[i], 10),
			s.Station,
			s.StationName,
		)
		for _, name := range names {
			col := s.Metrics[name]
			if i >= len(col) || col[i] == nil {
				row = append(row, "")
			} else {
				row = append(row, strconv.FormatFloat(*col[i], 'f', -1, 64))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Validate checks the equal-length invariant across all columns.
func (s StationSeries) Validate() error {
	if len(s.Timestamp) != len(s.Datetime) {
		return fmt.Errorf("series: unequal column lengths datetime=%d timestamp=%d",
			len(s.Datetime), len(s.Timestamp))
	}
	for name, col := range s.Metrics {
		if len(col) != len(s.Datetime) {
			return fmt.Errorf("series: metric %s has %d points, want %d", name, len(col), len(s.Datetime))
		}
	}
	return nil
}
