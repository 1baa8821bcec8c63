package attendance

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
)

// SessionStatus enum
type SessionStatus string

const (
	SessionStatusOpen       SessionStatus = "open"
	SessionStatusClosed     SessionStatus = "closed"
	SessionStatusAutoClosed SessionStatus = "auto_closed"
)

var SessionStatusValues = []string{
	string(SessionStatusOpen),
	string(SessionStatusClosed),
	string(SessionStatusAutoClosed),
}

// AnomalyAutoClosed marks a punch-off written by the stale session job.
const AnomalyAutoClosed = "AUTO_CLOSED_AT_SCHEDULE_END"

// DutySession is one punch-on/punch-off pair anchored to a resolved shift segment.
type DutySession struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	ShiftPresetID string
	SegmentID     string
	SegmentNo     int
	TimeZone      string

	ShiftDate          string // YYYY-MM-DD
	ScheduleStartLocal string // YYYY-MM-DDTHH:mm
	ScheduleEndLocal   string
	ScheduledMinutes   int

	PunchOnAt       time.Time
	PunchOffAt      *time.Time
	IsLate          bool
	LateMinutes     int
	WorkedMinutes   *int
	OvertimeMinutes *int
	Status          SessionStatus

	PunchOnEvent  eventtime.Context
	PunchOffEvent *eventtime.Context

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
}

// BreakSession is a pause inside an open duty session.
type BreakSession struct {
	ID            string
	CompanyID     string
	DutySessionID string
	EmployeeID    string
	PolicyID      *string
	StartedAt     time.Time
	EndedAt       *time.Time
	Minutes       *int
	IsOverLimit   bool

	StartEvent eventtime.Context
	EndEvent   *eventtime.Context

	CreatedAt time.Time
}

// BreakPolicy caps break length and decides whether break time is paid.
type BreakPolicy struct {
	ID         string
	CompanyID  string
	Name       string
	MaxMinutes int
	IsPaid     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ElapsedMinutes counts whole minutes between two instants, never negative.
func ElapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
