package eventtime

import "time"

// ContextResponse is the audit view of a resolved event time, serialized with ISO-8601
// timestamps and string enums.
type ContextResponse struct {
	ServerReceivedAt string  `json:"server_received_at"`
	EffectiveAt      string  `json:"effective_at"`
	Source           string  `json:"source"`
	TrustLevel       string  `json:"trust_level"`
	SkewMinutes      *int    `json:"skew_minutes"`
	Anomaly          *string `json:"anomaly"`
}

func (c Context) ToResponse() ContextResponse {
	return ContextResponse{
		ServerReceivedAt: c.ServerReceivedAt.UTC().Format(time.RFC3339Nano),
		EffectiveAt:      c.EffectiveAt.UTC().Format(time.RFC3339Nano),
		Source:           string(c.Source),
		TrustLevel:       string(c.TrustLevel),
		SkewMinutes:      c.SkewMinutes,
		Anomaly:          c.Anomaly,
	}
}
