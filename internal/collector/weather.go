package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"energy-collector/internal/series"
	"energy-collector/internal/station"
	"energy-collector/internal/timeutil"
	"energy-collector/internal/writer"
	"energy-collector/pkg/client"
	"go.uber.org/zap"
)

// HourlyMetrics are the archive columns requested per station at hourly
// granularity.
var HourlyMetrics = []string{
	"direct_normal_irradiance",
	"cloud_cover",
	"sunshine_duration",
	"precipitation",
	"surface_pressure",
	"relative_humidity_2m",
	"temperature_2m",
	"wind_speed_10m",
	"shortwave_radiation",
}

// DailyMetrics are the archive columns requested per station at daily
// granularity.
var DailyMetrics = []string{
	"temperature_2m_mean",
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"wind_speed_10m_max",
	"wind_direction_10m_dominant",
}

// WeatherCollector fetches archive weather data for a set of stations and
// writes one CSV per station.
type WeatherCollector struct {
	client      *client.OpenMeteoClient
	stations    []station.Station
	saveDir     string
	step        time.Duration
	granularity client.Granularity
	metrics     []string
	logger      *zap.Logger
}

func NewWeatherCollector(c *client.OpenMeteoClient, stations []station.Station, saveDir string, step time.Duration, granularity string, logger *zap.Logger) (*WeatherCollector, error) {
	g, err := client.ParseGranularity(granularity)
	if err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, timeutil.ErrInvalidStep
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("weather collector needs at least one station")
	}

	metrics := HourlyMetrics
	if g == client.GranularityDaily {
		metrics = DailyMetrics
	}
	return &WeatherCollector{
		client:      c,
		stations:    stations,
		saveDir:     saveDir,
		step:        step,
		granularity: g,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// AddStation validates and registers an extra station before collection.
func (w *WeatherCollector) AddStation(st station.Station) error {
	if err := station.Validate(st); err != nil {
		return err
	}
	w.stations = append(w.stations, st)
	return nil
}

// Collect runs the pipeline over [start, end] for every configured station.
// Failed station/slice pairs are skipped and counted.
func (w *WeatherCollector) Collect(ctx context.Context, start, end time.Time) (RunReport, error) {
	report := RunReport{
		Collector:  "weather",
		StartedAt:  time.Now(),
		RangeStart: start,
		RangeEnd:   end,
	}

	slices, err := timeutil.SliceRange(start, end, w.step)
	if err != nil {
		return report, err
	}
	report.Slices = len(slices) * len(w.stations)

	w.logger.Info("Collecting weather data",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("stations", len(w.stations)),
		zap.Int("slices", len(slices)))

	var parts []map[string]series.StationSeries
	for _, st := range w.stations {
		for _, slice := range slices {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			resp, err := w.client.FetchArchive(ctx, st,
				timeutil.FormatDate(slice.Start), timeutil.FormatDate(sliceEndDate(slice)),
				w.granularity, w.metrics)
			if err != nil {
				w.logger.Warn("Slice fetch failed, skipping",
					zap.String("station", st.Name),
					zap.Time("slice_start", slice.Start),
					zap.Error(err))
				report.FailedSlices++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", st.Name, err))
				continue
			}

			frag, err := w.parseArchive(resp, st)
			if err != nil {
				w.logger.Warn("Slice parse failed, skipping",
					zap.String("station", st.Name),
					zap.Time("slice_start", slice.Start),
					zap.Error(err))
				report.FailedSlices++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", st.Name, err))
				continue
			}
			if frag.Len() == 0 {
				report.EmptySlices++
				continue
			}
			parts = append(parts, map[string]series.StationSeries{st.Key(): frag})
		}
	}

	merged := series.Merge(parts)
	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s := merged[key]
		filename := fmt.Sprintf("%s_%s.csv", key, w.granularity)
		if err := writer.Write(w.saveDir, filename, s.Header(w.metrics), s.Rows(w.metrics)); err != nil {
			return report, err
		}
		report.SeriesWritten++
		report.Rows += s.Len()
		w.logger.Info("Series written",
			zap.String("station", key),
			zap.Int("rows", s.Len()))
	}

	report.DurationSecs = time.Since(report.StartedAt).Seconds()
	w.logger.Info("Weather collection finished",
		zap.Int("series", report.SeriesWritten),
		zap.Int("failed_slices", report.FailedSlices),
		zap.Float64("duration_secs", report.DurationSecs))
	return report, nil
}

// sliceEndDate converts a half-open slice end into the inclusive end_date the
// archive API expects. Without the one-day pullback, consecutive slices would
// both request their shared boundary day and its rows would appear twice in
// the merged output.
func sliceEndDate(r timeutil.Range) time.Time {
	end := r.End.AddDate(0, 0, -1)
	if end.Before(r.Start) {
		return r.Start
	}
	return end
}

// parseArchive converts one station's archive response into a fragment. A
// response missing the requested granularity block yields an empty fragment;
// a metric column whose length disagrees with the time axis is an error.
func (w *WeatherCollector) parseArchive(resp *client.ArchiveResponse, st station.Station) (series.StationSeries, error) {
	times, err := resp.Times(w.granularity)
	if err != nil {
		return series.StationSeries{}, err
	}
	if len(times) == 0 {
		w.logger.Warn("Archive response has no time axis",
			zap.String("station", st.Name),
			zap.String("granularity", string(w.granularity)))
		return series.StationSeries{}, nil
	}

	frag := series.StationSeries{
		Station:     st.Key(),
		StationName: st.Name,
		Datetime:    times,
		Timestamp:   make([]int64, 0, len(times)),
		Metrics:     make(map[string][]*float64),
	}
	for _, iso := range times {
		ts, err := timeutil.ToUnix(iso)
		if err != nil {
			return series.StationSeries{}, err
		}
		frag.Timestamp = append(frag.Timestamp, ts)
	}

	table := resp.Table(w.granularity)
	for _, name := range w.metrics {
		raw, ok := table[name]
		if !ok {
			continue
		}
		var col []*float64
		if err := json.Unmarshal(raw, &col); err != nil {
			return series.StationSeries{}, fmt.Errorf("decode metric %s: %w", name, err)
		}
		if len(col) != len(times) {
			return series.StationSeries{}, fmt.Errorf("metric %s has %d points, time axis has %d",
				name, len(col), len(times))
		}
		frag.Metrics[name] = col
	}
	return frag, nil
}
