package localtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DateLayout          = "2006-01-02"
	ClockLayout         = "15:04"
	MinutesPerDay       = 24 * 60
	localDateTimeLayout = "%sT%s"
)

var ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:mm")

var zoneCache sync.Map // map[string]*time.Location

// LoadZone returns the location for an IANA zone name.
// Unknown or empty zone names resolve to UTC.
func LoadZone(zone string) *time.Location {
	if cached, ok := zoneCache.Load(zone); ok {
		return cached.(*time.Location)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		loc = time.UTC
	}
	zoneCache.Store(zone, loc)
	return loc
}

// IsValidZone reports whether zone names a loadable IANA time zone.
func IsValidZone(zone string) bool {
	if strings.TrimSpace(zone) == "" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}

// ParseTimeToMinutes converts a wall-clock "HH:mm" string into minutes since midnight.
func ParseTimeToMinutes(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	hour, err := parseComponent(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	minute, err := parseComponent(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeFormat, value)
	}

	return hour*60 + minute, nil
}

func parseComponent(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTimeFormat
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTimeFormat
		}
	}
	return strconv.Atoi(s)
}

// DateInZone formats the calendar date of instant as observed in zone.
func DateInZone(instant time.Time, zone string) string {
	return instant.In(LoadZone(zone)).Format(DateLayout)
}

// PreviousDateInZone returns the calendar date 24 hours before instant, in zone.
func PreviousDateInZone(instant time.Time, zone string) string {
	return DateInZone(instant.Add(-24*time.Hour), zone)
}

// MinutesOfDayInZone returns the minutes elapsed since local midnight in zone.
func MinutesOfDayInZone(instant time.Time, zone string) int {
	local := instant.In(LoadZone(zone))
	return local.Hour()*60 + local.Minute()
}

// ComposeLocalDateTime joins a "YYYY-MM-DD" date and an "HH:mm" time. No zone conversion
// happens here; the zone is whatever the inputs were computed in.
func ComposeLocalDateTime(date, clock string) string {
	return fmt.Sprintf(localDateTimeLayout, date, clock)
}

// ParseLocalDateTime turns a composed "YYYY-MM-DDTHH:mm" value back into an instant in zone.
func ParseLocalDateTime(value, zone string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+"T"+ClockLayout, value, LoadZone(zone))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local date time %q: %w", value, err)
	}
	return t, nil
}

// FormatMinutes renders minutes since midnight as "HH:mm".
func FormatMinutes(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
