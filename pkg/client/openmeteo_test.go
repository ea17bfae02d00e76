package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"energy-collector/internal/station"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("hourly")
	require.NoError(t, err)
	assert.Equal(t, GranularityHourly, g)

	g, err = ParseGranularity("daily")
	require.NoError(t, err)
	assert.Equal(t, GranularityDaily, g)

	_, err = ParseGranularity("weekly")
	assert.Error(t, err)
}

func TestFetchArchiveParams(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"latitude":48.85,"longitude":2.35,"hourly":{
			"time":["2020-01-01T00:00","2020-01-01T01:00"],
			"temperature_2m":[3.1,null]
		}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop())
	st := station.Station{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}

	resp, err := c.FetchArchive(context.Background(), st, "2020-01-01", "2020-04-30", GranularityHourly, []string{"temperature_2m", "cloud_cover"})
	require.NoError(t, err)

	assert.Equal(t, "48.8566", query.Get("latitude"))
	assert.Equal(t, "2.3522", query.Get("longitude"))
	assert.Equal(t, "2020-01-01", query.Get("start_date"))
	assert.Equal(t, "2020-04-30", query.Get("end_date"))
	assert.Equal(t, "Europe/Paris", query.Get("timezone"))
	assert.Equal(t, "temperature_2m,cloud_cover", query.Get("hourly"))
	assert.Empty(t, query.Get("daily"))

	times, err := resp.Times(GranularityHourly)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-01-01T00:00", "2020-01-01T01:00"}, times)
}

func TestFetchArchiveDailyTable(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"daily":{
			"time":["2020-01-01"],
			"temperature_2m_mean":[4.2]
		}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop())
	st := station.Station{Name: "Brest", Latitude: 48.3904, Longitude: -4.4861}

	resp, err := c.FetchArchive(context.Background(), st, "2020-01-01", "2020-01-01", GranularityDaily, []string{"temperature_2m_mean"})
	require.NoError(t, err)

	assert.Equal(t, "temperature_2m_mean", query.Get("daily"))
	assert.Nil(t, resp.Table(GranularityHourly))
	assert.Contains(t, resp.Table(GranularityDaily), "temperature_2m_mean")
}

func TestFetchArchiveRetriesRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"hourly":{"time":["2020-01-01T00:00"],"cloud_cover":[70]}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop())
	slept := 0
	c.sleep = noSleep(&slept)

	st := station.Station{Name: "Lyon", Latitude: 45.7640, Longitude: 4.8357}
	resp, err := c.FetchArchive(context.Background(), st, "2020-01-01", "2020-01-01", GranularityHourly, []string{"cloud_cover"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, slept)

	times, err := resp.Times(GranularityHourly)
	require.NoError(t, err)
	assert.Len(t, times, 1)
}

func TestTimesMissingTable(t *testing.T) {
	resp := &ArchiveResponse{}
	times, err := resp.Times(GranularityHourly)
	require.NoError(t, err)
	assert.Nil(t, times)
}
