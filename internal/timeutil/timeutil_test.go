package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUnix(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"2020-01-01T00:00:00+01:00", 1577833200},
		{"2020-01-01T00:00:00", 1577833200},
		{"2020-01-01", 1577833200},
		// CEST, UTC+2
		{"2020-07-01T00:00:00", 1593554400},
	}
	for _, tc := range cases {
		got, err := ToUnix(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestToUnixInvalid(t *testing.T) {
	_, err := ToUnix("not-a-date")
	assert.Error(t, err)
}

func TestFromUnixRoundTrip(t *testing.T) {
	ts := int64(1577833200)
	assert.Equal(t, "2020-01-01", FormatDate(FromUnix(ts)))
	assert.Equal(t, "2020-01-01T00:00:00+01:00", FormatOffset(FromUnix(ts)))
}

func TestSliceRangeSingleWindow(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, Location())
	end := time.Date(2020, 1, 10, 0, 0, 0, 0, Location())

	slices, err := SliceRange(start, end, 120*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	assert.True(t, slices[0].Start.Equal(start))
	// The single window overruns the requested end; no clamping.
	assert.True(t, slices[0].End.After(end))
}

func TestSliceRangeContiguous(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, Location())
	end := time.Date(2020, 1, 11, 0, 0, 0, 0, Location())
	step := 24 * time.Hour

	slices, err := SliceRange(start, end, step)
	require.NoError(t, err)
	require.NotEmpty(t, slices)

	assert.True(t, slices[0].Start.Equal(start))
	for i, s := range slices {
		assert.Equal(t, step, s.End.Sub(s.Start))
		if i > 0 {
			assert.True(t, s.Start.Equal(slices[i-1].End), "windows must be contiguous")
		}
	}
	last := slices[len(slices)-1]
	assert.False(t, last.Start.After(end))
	assert.False(t, last.End.Before(end), "union must cover the requested end")
}

func TestSliceRangeZeroLength(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, Location())
	slices, err := SliceRange(start, start, time.Hour)
	require.NoError(t, err)
	assert.Len(t, slices, 1)
}

func TestSliceRangeInvalidStep(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, Location())
	for _, step := range []time.Duration{0, -time.Hour} {
		_, err := SliceRange(start, start.Add(time.Hour), step)
		assert.ErrorIs(t, err, ErrInvalidStep)
	}
}

func TestSliceRangeReversed(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, Location())
	_, err := SliceRange(start, start.AddDate(0, 0, -1), time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2020-01-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1577833200), got.Unix())

	_, err = ParseDate("01/02/2020")
	assert.Error(t, err)
}

func TestTrailingWindow(t *testing.T) {
	w := TrailingWindow(30)
	assert.True(t, w.Start.AddDate(0, 0, 30).Equal(w.End))
	assert.True(t, w.End.Before(time.Now()))
}
