package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/repository/postgresql"
	eventtimesvc "github.com/cmlabs-hris/shift-payroll-go/internal/service/eventtime"
)

type AttendanceServiceImpl struct {
	transactor   postgresql.Transactor
	dutyRepo     attendance.DutySessionRepository
	breakRepo    attendance.BreakSessionRepository
	policyRepo   attendance.BreakPolicyRepository
	shiftService shift.ShiftService
	resolver     *eventtimesvc.Resolver
	now          func() time.Time
}

func NewAttendanceService(
	transactor postgresql.Transactor,
	dutyRepo attendance.DutySessionRepository,
	breakRepo attendance.BreakSessionRepository,
	policyRepo attendance.BreakPolicyRepository,
	shiftService shift.ShiftService,
	resolver *eventtimesvc.Resolver,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:   transactor,
		dutyRepo:     dutyRepo,
		breakRepo:    breakRepo,
		policyRepo:   policyRepo,
		shiftService: shiftService,
		resolver:     resolver,
		now:          time.Now,
	}
}

// PunchOn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOn(ctx context.Context, req attendance.PunchRequest) (attendance.DutySessionResponse, error) {
	serverReceivedAt := a.now()

	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return attendance.DutySessionResponse{}, err
	}

	ev := a.resolver.Resolve(serverReceivedAt, req.ClientTimestamp)

	_, err = a.dutyRepo.GetOpenSession(ctx, claims.EmployeeID, claims.CompanyID)
	if err == nil {
		return attendance.DutySessionResponse{}, attendance.ErrAlreadyOnDuty
	}
	if !errors.Is(err, attendance.ErrNotOnDuty) {
		return attendance.DutySessionResponse{}, fmt.Errorf("failed to check open duty session: %w", err)
	}

	resolved, wc, err := a.shiftService.ResolveAt(ctx, claims.CompanyID, claims.EmployeeID, ev.EffectiveAt)
	if err != nil {
		return attendance.DutySessionResponse{}, err
	}

	session := attendance.DutySession{
		CompanyID:          claims.CompanyID,
		EmployeeID:         claims.EmployeeID,
		ShiftPresetID:      resolved.PresetID,
		SegmentID:          resolved.SegmentID,
		SegmentNo:          resolved.SegmentNo,
		TimeZone:           wc.TimeZone,
		ShiftDate:          resolved.ShiftDate,
		ScheduleStartLocal: resolved.ScheduleStartLocal,
		ScheduleEndLocal:   resolved.ScheduleEndLocal,
		ScheduledMinutes:   resolved.ScheduledMinutes(),
		PunchOnAt:          ev.EffectiveAt,
		IsLate:             resolved.Lateness.IsLate(ev.EffectiveAt, wc.TimeZone),
		LateMinutes:        resolved.Lateness.LateMinutes(ev.EffectiveAt, wc.TimeZone),
		Status:             attendance.SessionStatusOpen,
		PunchOnEvent:       ev,
	}

	created, err := a.dutyRepo.CreateIfNoneOpen(ctx, session)
	if err != nil {
		return attendance.DutySessionResponse{}, err
	}

	logEventAnomaly("punch_on", claims.EmployeeID, ev)
	slog.Info("punched on",
		"employee_id", claims.EmployeeID,
		"session_id", created.ID,
		"shift_date", created.ShiftDate,
		"is_late", created.IsLate,
	)
	return created.ToResponse(), nil
}

// PunchOff implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOff(ctx context.Context, req attendance.PunchRequest) (attendance.DutySessionResponse, error) {
	serverReceivedAt := a.now()

	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return attendance.DutySessionResponse{}, err
	}

	session, err := a.dutyRepo.GetOpenSession(ctx, claims.EmployeeID, claims.CompanyID)
	if err != nil {
		return attendance.DutySessionResponse{}, err
	}

	ev := a.resolver.Resolve(serverReceivedAt, req.ClientTimestamp)
	ev.ClampNotBefore(session.PunchOnAt, eventtime.AnomalyDutyEndBeforeDutyStart)

	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		open, err := a.breakRepo.GetOpenBreak(txCtx, session.ID, claims.CompanyID)
		if err == nil {
			if _, err := a.closeBreak(txCtx, open, ev); err != nil {
				return err
			}
		} else if !errors.Is(err, attendance.ErrNoOpenBreak) {
			return fmt.Errorf("failed to check open break: %w", err)
		}

		closeSession(&session, ev, attendance.SessionStatusClosed)
		return a.dutyRepo.Close(txCtx, session)
	})
	if err != nil {
		return attendance.DutySessionResponse{}, err
	}

	logEventAnomaly("punch_off", claims.EmployeeID, ev)
	slog.Info("punched off",
		"employee_id", claims.EmployeeID,
		"session_id", session.ID,
		"worked_minutes", *session.WorkedMinutes,
		"overtime_minutes", *session.OvertimeMinutes,
	)
	return session.ToResponse(), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.BreakSessionResponse, error) {
	serverReceivedAt := a.now()

	if err := req.Validate(); err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	session, err := a.dutyRepo.GetOpenSession(ctx, claims.EmployeeID, claims.CompanyID)
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	if req.PolicyID != nil {
		if _, err := a.policyRepo.GetByID(ctx, *req.PolicyID, claims.CompanyID); err != nil {
			return attendance.BreakSessionResponse{}, err
		}
	}

	ev := a.resolver.Resolve(serverReceivedAt, req.ClientTimestamp)
	ev.ClampNotBefore(session.PunchOnAt, eventtime.AnomalyBreakStartBeforeDutyStart)

	created, err := a.breakRepo.CreateIfNoneOpen(ctx, attendance.BreakSession{
		CompanyID:     claims.CompanyID,
		DutySessionID: session.ID,
		EmployeeID:    claims.EmployeeID,
		PolicyID:      req.PolicyID,
		StartedAt:     ev.EffectiveAt,
		StartEvent:    ev,
	})
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	logEventAnomaly("break_start", claims.EmployeeID, ev)
	return created.ToResponse(), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.PunchRequest) (attendance.BreakSessionResponse, error) {
	serverReceivedAt := a.now()

	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	session, err := a.dutyRepo.GetOpenSession(ctx, claims.EmployeeID, claims.CompanyID)
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	open, err := a.breakRepo.GetOpenBreak(ctx, session.ID, claims.CompanyID)
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	ev := a.resolver.Resolve(serverReceivedAt, req.ClientTimestamp)
	closed, err := a.closeBreak(ctx, open, ev)
	if err != nil {
		return attendance.BreakSessionResponse{}, err
	}

	logEventAnomaly("break_end", claims.EmployeeID, *closed.EndEvent)
	if closed.IsOverLimit {
		slog.Warn("break exceeded policy limit", "employee_id", claims.EmployeeID, "break_id", closed.ID, "minutes", *closed.Minutes)
	}
	return closed.ToResponse(), nil
}

// closeBreak ends b at ev, clamped to the break start, and flags it against its policy limit.
func (a *AttendanceServiceImpl) closeBreak(ctx context.Context, b attendance.BreakSession, ev eventtime.Context) (attendance.BreakSession, error) {
	ev.ClampNotBefore(b.StartedAt, eventtime.AnomalyBreakEndBeforeBreakStart)

	minutes := attendance.ElapsedMinutes(b.StartedAt, ev.EffectiveAt)
	endedAt := ev.EffectiveAt
	b.EndedAt = &endedAt
	b.Minutes = &minutes
	b.EndEvent = &ev

	if b.PolicyID != nil {
		policy, err := a.policyRepo.GetByID(ctx, *b.PolicyID, b.CompanyID)
		if err != nil && !errors.Is(err, attendance.ErrBreakPolicyNotFound) {
			return attendance.BreakSession{}, fmt.Errorf("failed to load break policy: %w", err)
		}
		if err == nil {
			b.IsOverLimit = minutes > policy.MaxMinutes
		}
	}

	if err := a.breakRepo.Close(ctx, b); err != nil {
		return attendance.BreakSession{}, err
	}
	return b, nil
}

// closeSession fills the punch-off fields of session at ev.
func closeSession(session *attendance.DutySession, ev eventtime.Context, status attendance.SessionStatus) {
	worked := attendance.ElapsedMinutes(session.PunchOnAt, ev.EffectiveAt)
	overtime := max(0, worked-session.ScheduledMinutes)
	punchOffAt := ev.EffectiveAt

	session.PunchOffAt = &punchOffAt
	session.PunchOffEvent = &ev
	session.WorkedMinutes = &worked
	session.OvertimeMinutes = &overtime
	session.Status = status
}

func logEventAnomaly(action, employeeID string, ev eventtime.Context) {
	if ev.Anomaly == nil {
		return
	}
	slog.Warn("event time anomaly",
		"action", action,
		"employee_id", employeeID,
		"anomaly", *ev.Anomaly,
		"trust_level", ev.TrustLevel,
		"source", ev.Source,
	)
}

// GetMyStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyStatus(ctx context.Context) (attendance.MyStatusResponse, error) {
	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return attendance.MyStatusResponse{}, err
	}

	session, err := a.dutyRepo.GetOpenSession(ctx, claims.EmployeeID, claims.CompanyID)
	if errors.Is(err, attendance.ErrNotOnDuty) {
		return attendance.MyStatusResponse{OnDuty: false}, nil
	}
	if err != nil {
		return attendance.MyStatusResponse{}, err
	}

	sessionResp := session.ToResponse()
	resp := attendance.MyStatusResponse{OnDuty: true, Session: &sessionResp}

	open, err := a.breakRepo.GetOpenBreak(ctx, session.ID, claims.CompanyID)
	if err == nil {
		breakResp := open.ToResponse()
		resp.OpenBreak = &breakResp
	} else if !errors.Is(err, attendance.ErrNoOpenBreak) {
		return attendance.MyStatusResponse{}, err
	}

	return resp, nil
}

// ListSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListSessions(ctx context.Context, filter attendance.DutySessionFilter) (attendance.ListDutySessionResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListDutySessionResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListDutySessionResponse{}, err
	}

	sessions, total, err := a.dutyRepo.List(ctx, claims.CompanyID, filter)
	if err != nil {
		return attendance.ListDutySessionResponse{}, fmt.Errorf("failed to list duty sessions: %w", err)
	}

	items := make([]attendance.DutySessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, s.ToResponse())
	}

	return attendance.ListDutySessionResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Sessions:   items,
	}, nil
}

// CreateBreakPolicy implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CreateBreakPolicy(ctx context.Context, req attendance.CreateBreakPolicyRequest) (attendance.BreakPolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakPolicyResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.BreakPolicyResponse{}, err
	}

	created, err := a.policyRepo.Create(ctx, attendance.BreakPolicy{
		CompanyID:  claims.CompanyID,
		Name:       req.Name,
		MaxMinutes: req.MaxMinutes,
		IsPaid:     req.IsPaid,
	})
	if err != nil {
		return attendance.BreakPolicyResponse{}, err
	}
	return created.ToResponse(), nil
}

// ListBreakPolicies implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListBreakPolicies(ctx context.Context) ([]attendance.BreakPolicyResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	policies, err := a.policyRepo.List(ctx, claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list break policies: %w", err)
	}

	responses := make([]attendance.BreakPolicyResponse, 0, len(policies))
	for _, p := range policies {
		responses = append(responses, p.ToResponse())
	}
	return responses, nil
}

// AutoCloseStaleSessions implements attendance.AttendanceService.
// A session qualifies once its shift date is no later than yesterday in its own zone
// and its scheduled end plus grace has passed. It is closed at the scheduled end.
func (a *AttendanceServiceImpl) AutoCloseStaleSessions(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	sessions, err := a.dutyRepo.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open duty sessions: %w", err)
	}

	closed := 0
	var errs []error
	for _, session := range sessions {
		if session.ShiftDate > localtime.PreviousDateInZone(now, session.TimeZone) {
			continue
		}

		start, err := localtime.ParseLocalDateTime(session.ScheduleStartLocal, session.TimeZone)
		if err != nil {
			slog.Warn("skipping open session with malformed schedule", "session_id", session.ID, "error", err)
			continue
		}
		closeAt := start.Add(time.Duration(session.ScheduledMinutes) * time.Minute)
		if closeAt.Before(session.PunchOnAt) {
			closeAt = session.PunchOnAt
		}
		if now.Before(closeAt.Add(grace)) {
			continue
		}

		anomaly := attendance.AnomalyAutoClosed
		ev := eventtime.Context{
			ServerReceivedAt: now,
			EffectiveAt:      closeAt,
			Source:           eventtime.SourceServer,
			TrustLevel:       eventtime.TrustHigh,
			Anomaly:          &anomaly,
		}

		err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			closeEv := ev
			open, err := a.breakRepo.GetOpenBreak(txCtx, session.ID, session.CompanyID)
			if err == nil {
				// A break opened after the scheduled end pulls the close forward to its start.
				if closeEv.EffectiveAt.Before(open.StartedAt) {
					closeEv.EffectiveAt = open.StartedAt
				}
				if _, err := a.closeBreak(txCtx, open, closeEv); err != nil {
					return err
				}
			} else if !errors.Is(err, attendance.ErrNoOpenBreak) {
				return err
			}

			closeSession(&session, closeEv, attendance.SessionStatusAutoClosed)
			return a.dutyRepo.Close(txCtx, session)
		})
		if err != nil {
			slog.Error("failed to auto-close duty session", "session_id", session.ID, "error", err)
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID, err))
			continue
		}

		slog.Info("duty session auto-closed",
			"session_id", session.ID,
			"employee_id", session.EmployeeID,
			"shift_date", session.ShiftDate,
		)
		closed++
	}

	return closed, errors.Join(errs...)
}
