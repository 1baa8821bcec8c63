package postgresql

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
)

// eventColumns scans the five audit columns stored for every resolved event time.
type eventColumns struct {
	serverReceivedAt *time.Time
	source           *string
	trustLevel       *string
	skewMinutes      *int
	anomaly          *string
}

func (c *eventColumns) dest() []any {
	return []any{&c.serverReceivedAt, &c.source, &c.trustLevel, &c.skewMinutes, &c.anomaly}
}

// context rebuilds the event; it is nil when the event was never recorded.
func (c eventColumns) context(effectiveAt *time.Time) *eventtime.Context {
	if c.serverReceivedAt == nil || effectiveAt == nil {
		return nil
	}
	ev := eventtime.Context{
		ServerReceivedAt: *c.serverReceivedAt,
		EffectiveAt:      *effectiveAt,
		SkewMinutes:      c.skewMinutes,
		Anomaly:          c.anomaly,
	}
	if c.source != nil {
		ev.Source = eventtime.Source(*c.source)
	}
	if c.trustLevel != nil {
		ev.TrustLevel = eventtime.TrustLevel(*c.trustLevel)
	}
	return &ev
}

// eventArgs flattens ev into query arguments in eventColumns order.
func eventArgs(ev *eventtime.Context) []any {
	if ev == nil {
		return []any{nil, nil, nil, nil, nil}
	}
	return []any{ev.ServerReceivedAt, string(ev.Source), string(ev.TrustLevel), ev.SkewMinutes, ev.Anomaly}
}
