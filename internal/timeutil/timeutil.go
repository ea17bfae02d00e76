package timeutil

import (
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

// Zone is the timezone both upstream APIs report their timestamps in.
const Zone = "Europe/Paris"

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns the Europe/Paris location. The tzdata import guarantees
// the zone is available even on images without a system zoneinfo database.
func Location() *time.Location {
	locOnce.Do(func() {
		var err error
		loc, err = time.LoadLocation(Zone)
		if err != nil {
			panic(fmt.Sprintf("timeutil: load %s: %v", Zone, err))
		}
	})
	return loc
}

// ToUnix converts an ISO-8601 timestamp to Unix seconds, interpreting the
// wall-clock time in Europe/Paris regardless of any offset present in the
// string. Upstream offsets are Paris-local anyway, so this matches them.
func ToUnix(iso string) (int64, error) {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), Location())
		return local.Unix(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, iso, Location()); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("timeutil: unsupported timestamp %q", iso)
}

// FromUnix converts Unix seconds to a Europe/Paris time.
func FromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).In(Location())
}

// FormatDate renders t as a date-only string in Europe/Paris.
func FormatDate(t time.Time) string {
	return t.In(Location()).Format("2006-01-02")
}

// FormatOffset renders t as ISO-8601 with the Paris UTC offset, the format
// the generation API expects for its start_date/end_date parameters.
func FormatOffset(t time.Time) string {
	return t.In(Location()).Format("2006-01-02T15:04:05-07:00")
}

// ParseDate accepts a date-only string, a naive datetime, or RFC3339, and
// returns the corresponding Europe/Paris instant.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(Location()), nil
	}
	return time.Time{}, fmt.Errorf("timeutil: invalid date %q (want YYYY-MM-DD or RFC3339)", s)
}

// ErrInvalidStep reports a non-positive slicing step.
var ErrInvalidStep = errors.New("timeutil: slice step must be positive")

// ErrInvalidRange reports a range whose end precedes its start.
var ErrInvalidRange = errors.New("timeutil: range end precedes start")

// Range is a [Start, End) time interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// SliceRange splits [start, end] into contiguous ascending windows of width
// step. A window is emitted for every step boundary up to and including end,
// so the final window may extend past end; callers must tolerate the overrun.
// start == end yields exactly one window.
func SliceRange(start, end time.Time, step time.Duration) ([]Range, error) {
	if step <= 0 {
		return nil, ErrInvalidStep
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	var out []Range
	for cur := start; !cur.After(end); cur = cur.Add(step) {
		out = append(out, Range{Start: cur, End: cur.Add(step)})
	}
	return out, nil
}

// TrailingWindow returns the range ending at yesterday's Paris midnight and
// spanning the given number of days.
func TrailingWindow(days int) Range {
	now := time.Now().In(Location())
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location())
	end := midnight.AddDate(0, 0, -1)
	return Range{Start: end.AddDate(0, 0, -days), End: end}
}
