package eventtime

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
)

type Resolver struct {
	opts eventtime.Options
}

func NewResolver(opts eventtime.Options) *Resolver {
	defaults := eventtime.DefaultOptions()
	if opts.MaxPastHours <= 0 {
		opts.MaxPastHours = defaults.MaxPastHours
	}
	if opts.MaxFutureMinutes < 0 {
		opts.MaxFutureMinutes = defaults.MaxFutureMinutes
	}
	if opts.HighTrustSkewMinutes < 0 {
		opts.HighTrustSkewMinutes = defaults.HighTrustSkewMinutes
	}
	return &Resolver{opts: opts}
}

func (r *Resolver) Options() eventtime.Options {
	return r.opts
}

// Resolve decides which instant business logic should use for an action received at
// serverReceivedAt with an optional client-reported timestamp. It never fails; every
// deviation is reported through the anomaly code.
func (r *Resolver) Resolve(serverReceivedAt time.Time, clientTimestamp *string) eventtime.Context {
	if clientTimestamp == nil || strings.TrimSpace(*clientTimestamp) == "" {
		return eventtime.Context{
			ServerReceivedAt: serverReceivedAt,
			EffectiveAt:      serverReceivedAt,
			Source:           eventtime.SourceServer,
			TrustLevel:       eventtime.TrustHigh,
		}
	}

	client, ok := validator.IsValidDateTime(strings.TrimSpace(*clientTimestamp))
	if !ok {
		return eventtime.Context{
			ServerReceivedAt: serverReceivedAt,
			EffectiveAt:      serverReceivedAt,
			Source:           eventtime.SourceServer,
			TrustLevel:       eventtime.TrustLow,
			Anomaly:          anomaly(eventtime.AnomalyInvalidClientTimestamp),
		}
	}

	skew := skewMinutes(serverReceivedAt, client)

	if client.After(serverReceivedAt.Add(time.Duration(r.opts.MaxFutureMinutes) * time.Minute)) {
		return eventtime.Context{
			ServerReceivedAt: serverReceivedAt,
			EffectiveAt:      serverReceivedAt,
			Source:           eventtime.SourceServer,
			TrustLevel:       eventtime.TrustLow,
			SkewMinutes:      &skew,
			Anomaly:          anomaly(eventtime.AnomalyClientTooFarInFuture),
		}
	}

	// Old client times are kept but flagged; only future claims are discarded.
	if client.Before(serverReceivedAt.Add(-time.Duration(r.opts.MaxPastHours) * time.Hour)) {
		return eventtime.Context{
			ServerReceivedAt: serverReceivedAt,
			EffectiveAt:      client,
			Source:           eventtime.SourceClient,
			TrustLevel:       eventtime.TrustLow,
			SkewMinutes:      &skew,
			Anomaly:          anomaly(eventtime.AnomalyClientTooOld),
		}
	}

	trust := eventtime.TrustMedium
	if absInt(skew) <= r.opts.HighTrustSkewMinutes {
		trust = eventtime.TrustHigh
	}

	return eventtime.Context{
		ServerReceivedAt: serverReceivedAt,
		EffectiveAt:      client,
		Source:           eventtime.SourceClient,
		TrustLevel:       trust,
		SkewMinutes:      &skew,
	}
}

// skewMinutes is server minus client in whole minutes, rounding halves up.
func skewMinutes(server, client time.Time) int {
	diff := float64(server.Sub(client).Milliseconds()) / 60000
	return int(math.Floor(diff + 0.5))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func anomaly(code string) *string {
	return &code
}
