package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"energy-collector/internal/station"
	"energy-collector/internal/timeutil"
	"energy-collector/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newParseCollector(t *testing.T, granularity string) *WeatherCollector {
	t.Helper()
	w, err := NewWeatherCollector(nil, station.Defaults(), t.TempDir(), 24*time.Hour, granularity, zap.NewNop())
	require.NoError(t, err)
	return w
}

func TestParseArchiveNullMetrics(t *testing.T) {
	var resp client.ArchiveResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"hourly": {
			"time": ["2020-01-01T00:00", "2020-01-01T01:00", "2020-01-01T02:00"],
			"temperature_2m": [3.1, null, 2.8],
			"cloud_cover": [100, 85, null]
		}
	}`), &resp))

	w := newParseCollector(t, "hourly")
	st := station.Station{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}

	frag, err := w.parseArchive(&resp, st)
	require.NoError(t, err)
	require.NoError(t, frag.Validate())

	assert.Equal(t, "paris", frag.Station)
	assert.Equal(t, "Paris", frag.StationName)
	assert.Equal(t, []int64{1577833200, 1577836800, 1577840400}, frag.Timestamp)

	temp := frag.Metrics["temperature_2m"]
	require.Len(t, temp, 3)
	assert.Nil(t, temp[1])
	require.NotNil(t, temp[0])
	assert.Equal(t, 3.1, *temp[0])
}

func TestParseArchiveMissingGranularityBlock(t *testing.T) {
	var resp client.ArchiveResponse
	require.NoError(t, json.Unmarshal([]byte(`{"latitude": 48.85}`), &resp))

	w := newParseCollector(t, "hourly")
	frag, err := w.parseArchive(&resp, station.Station{Name: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 0, frag.Len())
}

func TestParseArchiveColumnMismatch(t *testing.T) {
	var resp client.ArchiveResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"hourly": {
			"time": ["2020-01-01T00:00", "2020-01-01T01:00"],
			"temperature_2m": [3.1]
		}
	}`), &resp))

	w := newParseCollector(t, "hourly")
	_, err := w.parseArchive(&resp, station.Station{Name: "Paris"})
	assert.Error(t, err)
}

func TestWeatherCollectWritesStationCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly": {
			"time": ["2020-01-01T00:00", "2020-01-01T01:00"],
			"temperature_2m": [3.1, null],
			"cloud_cover": [100, 85]
		}}`))
	}))
	defer srv.Close()

	om := client.NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop())
	stations := []station.Station{{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}}

	dir := t.TempDir()
	w, err := NewWeatherCollector(om, stations, dir, 30*24*time.Hour, "hourly", zap.NewNop())
	require.NoError(t, err)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, timeutil.Location())
	report, err := w.Collect(context.Background(), start, start.AddDate(0, 0, 10))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Slices)
	assert.Equal(t, 0, report.FailedSlices)
	assert.Equal(t, 1, report.SeriesWritten)
	assert.Equal(t, 2, report.Rows)

	records := readCSV(t, filepath.Join(dir, "paris_hourly.csv"))
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, []string{"datetime", "timestamp", "station", "station_name"}, header[:4])
	assert.Contains(t, header, "temperature_2m")
	assert.Contains(t, header, "cloud_cover")

	// Null observations survive as empty cells.
	assert.Contains(t, records[2], "")
}

func TestWeatherCollectSlicesDoNotOverlap(t *testing.T) {
	type datePair struct{ start, end string }
	var requested []datePair
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start_date")
		end := r.URL.Query().Get("end_date")
		requested = append(requested, datePair{start, end})

		from, err := time.Parse("2006-01-02", start)
		require.NoError(t, err)
		to, err := time.Parse("2006-01-02", end)
		require.NoError(t, err)

		days := []string{}
		values := []float64{}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			days = append(days, d.Format("2006-01-02"))
			values = append(values, 4.2)
		}
		payload := map[string]interface{}{
			"daily": map[string]interface{}{
				"time":                days,
				"temperature_2m_mean": values,
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer srv.Close()

	om := client.NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop())
	stations := []station.Station{{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}}

	dir := t.TempDir()
	w, err := NewWeatherCollector(om, stations, dir, 2*24*time.Hour, "daily", zap.NewNop())
	require.NoError(t, err)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, timeutil.Location())
	report, err := w.Collect(context.Background(), start, start.AddDate(0, 0, 4))
	require.NoError(t, err)

	// Half-open slice ends are pulled back one day so the inclusive
	// end_date never collides with the next slice's start_date.
	assert.Equal(t, []datePair{
		{"2020-01-01", "2020-01-02"},
		{"2020-01-03", "2020-01-04"},
		{"2020-01-05", "2020-01-06"},
	}, requested)

	records := readCSV(t, filepath.Join(dir, "paris_daily.csv"))
	require.Len(t, records, 7)
	seen := make(map[string]int)
	for _, row := range records[1:] {
		seen[row[0]]++
	}
	for day, count := range seen {
		assert.Equal(t, 1, count, "day %s appears %d times in merged output", day, count)
	}
	assert.Equal(t, 6, report.Rows)
}

func TestWeatherCollectCountsEmptySlices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 48.85}`))
	}))
	defer srv.Close()

	om := client.NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop())
	stations := []station.Station{{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}}

	w, err := NewWeatherCollector(om, stations, t.TempDir(), 2*24*time.Hour, "daily", zap.NewNop())
	require.NoError(t, err)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, timeutil.Location())
	report, err := w.Collect(context.Background(), start, start.AddDate(0, 0, 4))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Slices)
	assert.Equal(t, 3, report.EmptySlices)
	assert.Equal(t, 0, report.FailedSlices)
	assert.Equal(t, 0, report.SeriesWritten)
}

func TestNewWeatherCollectorValidation(t *testing.T) {
	_, err := NewWeatherCollector(nil, station.Defaults(), t.TempDir(), time.Hour, "weekly", zap.NewNop())
	assert.Error(t, err)

	_, err = NewWeatherCollector(nil, nil, t.TempDir(), time.Hour, "hourly", zap.NewNop())
	assert.Error(t, err)

	_, err = NewWeatherCollector(nil, station.Defaults(), t.TempDir(), 0, "daily", zap.NewNop())
	assert.ErrorIs(t, err, timeutil.ErrInvalidStep)
}

func TestAddStation(t *testing.T) {
	w := newParseCollector(t, "daily")
	before := len(w.stations)

	require.NoError(t, w.AddStation(station.Station{Name: "Le Havre", Latitude: 49.4944, Longitude: 0.1079}))
	assert.Len(t, w.stations, before+1)

	err := w.AddStation(station.Station{Name: "", Latitude: 0, Longitude: 0})
	assert.Error(t, err)
}
