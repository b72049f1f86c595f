// Package timeutil provides the UTC time helpers shared by the engines.
// Every timestamp in the pipeline is UTC; naive local times never enter
// the warehouse.
package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// UTCNow returns the current time in UTC.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// ParseISO parses an RFC 3339 / ISO-8601 timestamp, accepting both the
// trailing-Z and explicit-offset forms the upstream API emits.
func ParseISO(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}

// HoursSince returns the fractional hours elapsed between start and end.
func HoursSince(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// DaysSince returns whole days elapsed between start and end.
func DaysSince(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// AddHours returns t shifted forward by the given number of hours.
func AddHours(t time.Time, hours int) time.Time {
	return t.Add(time.Duration(hours) * time.Hour)
}

// DateKey converts a timestamp to the integer date key YYYYMMDD used by
// the date dimension.
func DateKey(t time.Time) int {
	t = t.UTC()
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ParseISODuration converts an ISO-8601 duration of the form PT#H#M#S to
// total seconds. Values that are not PT-prefixed, and malformed segments,
// yield zero: the upstream API reports video lengths exclusively in the
// PT form, and a zero duration is treated downstream as unknown.
func ParseISODuration(raw string) int64 {
	if !strings.HasPrefix(raw, "PT") {
		return 0
	}
	rest := raw[len("PT"):]
	var total int64
	for _, unit := range []struct {
		suffix  string
		seconds int64
	}{
		{"H", 3600},
		{"M", 60},
		{"S", 1},
	} {
		idx := strings.Index(rest, unit.suffix)
		if idx < 0 {
			continue
		}
		v, err := strconv.ParseInt(rest[:idx], 10, 64)
		if err != nil {
			return 0
		}
		total += v * unit.seconds
		rest = rest[idx+1:]
	}
	return total
}
