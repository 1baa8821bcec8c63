package eventtime

import (
	"strings"
	"time"
)

// Source tells which clock the effective instant came from
type Source string

const (
	SourceServer Source = "SERVER"
	SourceClient Source = "CLIENT"
)

type TrustLevel string

const (
	TrustHigh   TrustLevel = "HIGH"
	TrustMedium TrustLevel = "MEDIUM"
	TrustLow    TrustLevel = "LOW"
)

// Anomaly codes recorded on the audit trail
const (
	AnomalyInvalidClientTimestamp = "INVALID_CLIENT_TIMESTAMP"
	AnomalyClientTooFarInFuture   = "CLIENT_TIME_TOO_FAR_IN_FUTURE"
	AnomalyClientTooOld           = "CLIENT_TIME_TOO_OLD"

	// Clamp codes appended by callers after resolution
	AnomalyBreakStartBeforeDutyStart = "BREAK_START_BEFORE_DUTY_START"
	AnomalyBreakEndBeforeBreakStart  = "BREAK_END_BEFORE_BREAK_START"
	AnomalyDutyEndBeforeDutyStart    = "DUTY_END_BEFORE_DUTY_START"
)

// Context is the resolved, trust-annotated instant for one attendance or break action.
type Context struct {
	ServerReceivedAt time.Time
	EffectiveAt      time.Time
	Source           Source
	TrustLevel       TrustLevel
	SkewMinutes      *int
	Anomaly          *string
}

// ClampNotBefore substitutes reference when the effective instant precedes it and
// appends code to the anomaly list. It reports whether a clamp happened.
func (c *Context) ClampNotBefore(reference time.Time, code string) bool {
	if !c.EffectiveAt.Before(reference) {
		return false
	}
	c.EffectiveAt = reference
	c.AppendAnomaly(code)
	return true
}

// AppendAnomaly adds code to the pipe-joined anomaly list.
func (c *Context) AppendAnomaly(code string) {
	if c.Anomaly == nil || *c.Anomaly == "" {
		c.Anomaly = &code
		return
	}
	joined := *c.Anomaly + "|" + code
	c.Anomaly = &joined
}

// HasAnomaly reports whether code is part of the anomaly list.
func (c Context) HasAnomaly(code string) bool {
	if c.Anomaly == nil {
		return false
	}
	for _, part := range strings.Split(*c.Anomaly, "|") {
		if part == code {
			return true
		}
	}
	return false
}

// Options bound how far a client clock may drift before it is distrusted.
type Options struct {
	MaxPastHours         int
	MaxFutureMinutes     int
	HighTrustSkewMinutes int
}

func DefaultOptions() Options {
	return Options{
		MaxPastHours:         72,
		MaxFutureMinutes:     2,
		HighTrustSkewMinutes: 2,
	}
}
