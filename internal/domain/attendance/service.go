package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	PunchOn(ctx context.Context, req PunchRequest) (DutySessionResponse, error)
	PunchOff(ctx context.Context, req PunchRequest) (DutySessionResponse, error)
	StartBreak(ctx context.Context, req StartBreakRequest) (BreakSessionResponse, error)
	EndBreak(ctx context.Context, req PunchRequest) (BreakSessionResponse, error)
	GetMyStatus(ctx context.Context) (MyStatusResponse, error)
	ListSessions(ctx context.Context, filter DutySessionFilter) (ListDutySessionResponse, error)

	CreateBreakPolicy(ctx context.Context, req CreateBreakPolicyRequest) (BreakPolicyResponse, error)
	ListBreakPolicies(ctx context.Context) ([]BreakPolicyResponse, error)

	// AutoCloseStaleSessions closes sessions left open past their scheduled end plus grace.
	AutoCloseStaleSessions(ctx context.Context, now time.Time, grace time.Duration) (int, error)
}
