package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO(t *testing.T) {
	t.Parallel()

	got, err := ParseISO("2025-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), got)

	got, err = ParseISO("2025-01-15T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC), got)

	_, err = ParseISO("not-a-timestamp")
	assert.Error(t, err)
}

func TestHoursSince(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.InDelta(t, 24.1, HoursSince(start, start.Add(24*time.Hour+6*time.Minute)), 0.001)
	assert.Equal(t, 0.0, HoursSince(start, start))
}

func TestDaysSince(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, DaysSince(start, start.Add(14*24*time.Hour)))
	assert.Equal(t, 0, DaysSince(start, start.Add(23*time.Hour)))
}

func TestDateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20250115, DateKey(time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)))
	// Conversion happens in UTC, not the source location.
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, 20250116, DateKey(time.Date(2025, 1, 15, 22, 0, 0, 0, est)))
}

func TestParseISODuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want int64
	}{
		{"PT1H2M30S", 3750},
		{"PT10M", 600},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT", 0},
		{"", 0},
		{"P1D", 0},
		{"PTxxM", 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseISODuration(tc.raw))
		})
	}
}
