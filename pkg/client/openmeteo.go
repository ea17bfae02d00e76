package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"energy-collector/internal/station"
	"energy-collector/internal/timeutil"
	"go.uber.org/zap"
)

// Granularity selects which table of the archive response is requested.
type Granularity string

const (
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityHourly, GranularityDaily:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want hourly or daily)", s)
	}
}

// OpenMeteoClient talks to the Open-Meteo historical archive API. No
// authentication is required.
type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("open-meteo", config, logger),
		baseURL:    baseURL,
	}
}

// ArchiveResponse is one station's archive payload. Metric columns are kept
// raw so that null observations survive decoding.
type ArchiveResponse struct {
	Latitude  float64                    `json:"latitude"`
	Longitude float64                    `json:"longitude"`
	Hourly    map[string]json.RawMessage `json:"hourly"`
	Daily     map[string]json.RawMessage `json:"daily"`
}

// Table returns the block matching the requested granularity, which may be
// nil when the response omits it.
func (r *ArchiveResponse) Table(g Granularity) map[string]json.RawMessage {
	if g == GranularityDaily {
		return r.Daily
	}
	return r.Hourly
}

// Times decodes the time axis of the requested table.
func (r *ArchiveResponse) Times(g Granularity) ([]string, error) {
	table := r.Table(g)
	raw, ok := table["time"]
	if !ok {
		return nil, nil
	}
	var times []string
	if err := json.Unmarshal(raw, &times); err != nil {
		return nil, fmt.Errorf("decode time axis: %w", err)
	}
	return times, nil
}

// FetchArchive requests the named metrics for one station over an inclusive
// date range. Dates are plain calendar days in the collector's zone.
func (c *OpenMeteoClient) FetchArchive(ctx context.Context, st station.Station, startDate, endDate string, g Granularity, metrics []string) (*ArchiveResponse, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(st.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(st.Longitude, 'f', -1, 64))
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)
	params.Set("timezone", timeutil.Zone)
	params.Set(string(g), strings.Join(metrics, ","))

	c.logger.Info("Fetching weather archive",
		zap.String("station", st.Name),
		zap.String("start_date", startDate),
		zap.String("end_date", endDate),
		zap.String("granularity", string(g)))

	body, err := c.Get(ctx, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp ArchiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}

	times, err := resp.Times(g)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Weather archive fetched",
		zap.String("station", st.Name),
		zap.Int("data_points", len(times)))
	return &resp, nil
}
