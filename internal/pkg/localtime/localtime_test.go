package localtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeToMinutes(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"00:00", 0},
		{"03:00", 180},
		{"09:15", 555},
		{"12:00", 720},
		{"23:59", 1439},
		{"7:05", 425},
	}
	for _, c := range cases {
		got, err := ParseTimeToMinutes(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}
}

func TestParseTimeToMinutes_Invalid(t *testing.T) {
	invalid := []string{"", "24:00", "12:60", "-1:00", "12", "12:00:00", "ab:cd", "12:", ":30", "1a:00"}
	for _, input := range invalid {
		_, err := ParseTimeToMinutes(input)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, input)
	}
}

func TestParseTimeToMinutes_AllValidValues(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			got, err := ParseTimeToMinutes(FormatMinutes(h*60 + m))
			require.NoError(t, err)
			assert.Equal(t, h*60+m, got)
		}
	}
}

func TestDateInZone(t *testing.T) {
	// 2025-03-10 23:30 UTC is already the 11th in Jakarta (UTC+7) and still the 10th in New York.
	instant := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-10", DateInZone(instant, "UTC"))
	assert.Equal(t, "2025-03-11", DateInZone(instant, "Asia/Jakarta"))
	assert.Equal(t, "2025-03-10", DateInZone(instant, "America/New_York"))
}

func TestDateInZone_UnknownZoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", DateInZone(instant, "Mars/Olympus_Mons"))
	assert.Equal(t, time.UTC, LoadZone(""))
}

func TestPreviousDateInZone(t *testing.T) {
	instant := time.Date(2025, time.March, 1, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-02-28", PreviousDateInZone(instant, "UTC"))
	assert.Equal(t, "2025-02-28", PreviousDateInZone(instant, "Asia/Jakarta"))
	assert.Equal(t, "2025-02-27", PreviousDateInZone(instant, "America/Los_Angeles"))
}

func TestMinutesOfDayInZone(t *testing.T) {
	instant := time.Date(2025, time.June, 1, 2, 15, 0, 0, time.UTC)

	assert.Equal(t, 135, MinutesOfDayInZone(instant, "UTC"))
	assert.Equal(t, 555, MinutesOfDayInZone(instant, "Asia/Jakarta"))
	assert.Equal(t, MinutesOfDayInZone(instant, "Asia/Jakarta"), MinutesOfDayInZone(instant, "Asia/Jakarta"))
}

func TestMinutesOfDayInZone_MonotonicWithinDay(t *testing.T) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	prev := -1
	for i := 0; i < MinutesPerDay; i += 7 {
		got := MinutesOfDayInZone(start.Add(time.Duration(i)*time.Minute), "UTC")
		assert.GreaterOrEqual(t, got, prev)
		assert.Less(t, got, MinutesPerDay)
		prev = got
	}
}

func TestComposeLocalDateTime(t *testing.T) {
	assert.Equal(t, "2025-06-01T22:00", ComposeLocalDateTime("2025-06-01", "22:00"))
}

func TestParseLocalDateTime(t *testing.T) {
	got, err := ParseLocalDateTime("2025-06-01T22:00", "Asia/Jakarta")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, time.June, 1, 15, 0, 0, 0, time.UTC)))

	_, err = ParseLocalDateTime("2025-06-01 22:00", "UTC")
	assert.Error(t, err)
}

func TestIsValidZone(t *testing.T) {
	assert.True(t, IsValidZone("Asia/Jakarta"))
	assert.False(t, IsValidZone(""))
	assert.False(t, IsValidZone("Not/AZone"))
}
