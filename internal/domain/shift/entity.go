package shift

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
)

// ShiftSegment is one contiguous scheduled window of a preset.
type ShiftSegment struct {
	ID               string
	PresetID         string
	SegmentNo        int
	StartTime        string // HH:mm
	EndTime          string // HH:mm
	CrossesMidnight  bool
	LateGraceMinutes int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ShiftPreset struct {
	ID        string
	CompanyID string
	Name      string
	TeamID    *string
	Segments  []ShiftSegment
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LatenessRule is bound to a resolved segment and evaluated later against the actual
// punch instant. Lateness depends only on the minute of day, never on the date.
type LatenessRule struct {
	StartMinutes     int
	LateGraceMinutes int
}

func (r LatenessRule) IsLate(at time.Time, zone string) bool {
	return localtime.MinutesOfDayInZone(at, zone) > r.StartMinutes+r.LateGraceMinutes
}

// LateMinutes counts minutes past the scheduled start when the instant is late, 0 otherwise.
func (r LatenessRule) LateMinutes(at time.Time, zone string) int {
	if !r.IsLate(at, zone) {
		return 0
	}
	return localtime.MinutesOfDayInZone(at, zone) - r.StartMinutes
}

// ResolvedShiftSegment is the segment active at a given instant with its concrete schedule.
type ResolvedShiftSegment struct {
	PresetID           string
	PresetName         string
	SegmentID          string
	SegmentNo          int
	StartTime          string
	EndTime            string
	CrossesMidnight    bool
	LateGraceMinutes   int
	ShiftDate          string // YYYY-MM-DD anchor date
	ScheduleStartLocal string // YYYY-MM-DDTHH:mm
	ScheduleEndLocal   string // YYYY-MM-DDTHH:mm
	Lateness           LatenessRule
}

func (r ResolvedShiftSegment) IsLateAt(at time.Time, zone string) bool {
	return r.Lateness.IsLate(at, zone)
}

// ScheduledMinutes is the nominal length of the segment window.
func (r ResolvedShiftSegment) ScheduledMinutes() int {
	return windowMinutes(r.StartTime, r.EndTime, r.CrossesMidnight)
}

// DurationMinutes is the length of the segment window, 0 when its times are malformed.
func (s ShiftSegment) DurationMinutes() int {
	return windowMinutes(s.StartTime, s.EndTime, s.CrossesMidnight)
}

func windowMinutes(startClock, endClock string, crossesMidnight bool) int {
	start, err := localtime.ParseTimeToMinutes(startClock)
	if err != nil {
		return 0
	}
	end, err := localtime.ParseTimeToMinutes(endClock)
	if err != nil {
		return 0
	}
	if crossesMidnight && end <= start {
		return end + localtime.MinutesPerDay - start
	}
	if end < start {
		return 0
	}
	return end - start
}

// ShiftOccurrence is one concrete scheduled window of a segment on a given shift date.
type ShiftOccurrence struct {
	PresetID   string
	PresetName string
	SegmentID  string
	SegmentNo  int
	ShiftDate  string
	Start      time.Time
	End        time.Time
}

// WorkContext is what attendance needs to know about an employee to resolve a shift.
type WorkContext struct {
	EmployeeID    string
	CompanyID     string
	TimeZone      string
	ShiftPresetID *string
	TeamID        *string
}
