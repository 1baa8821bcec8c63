package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt/jwttest"
	eventtimesvc "github.com/cmlabs-hris/shift-payroll-go/internal/service/eventtime"
	shiftsvc "github.com/cmlabs-hris/shift-payroll-go/internal/service/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID  = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f60"
	employeeID = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f61"
	policyID   = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f80"
	jakarta    = "Asia/Jakarta"
)

// ---- fakes ----

type inlineTransactor struct{}

func (inlineTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDutyRepo struct {
	sessions map[string]attendance.DutySession
	seq      int
}

func (f *fakeDutyRepo) CreateIfNoneOpen(ctx context.Context, s attendance.DutySession) (attendance.DutySession, error) {
	if _, err := f.GetOpenSession(ctx, s.EmployeeID, s.CompanyID); err == nil {
		return attendance.DutySession{}, attendance.ErrAlreadyOnDuty
	}
	f.seq++
	s.ID = fmt.Sprintf("duty-%d", f.seq)
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeDutyRepo) GetOpenSession(ctx context.Context, employee, company string) (attendance.DutySession, error) {
	for _, s := range f.sessions {
		if s.EmployeeID == employee && s.CompanyID == company && s.Status == attendance.SessionStatusOpen {
			return s, nil
		}
	}
	return attendance.DutySession{}, attendance.ErrNotOnDuty
}

func (f *fakeDutyRepo) Close(ctx context.Context, s attendance.DutySession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeDutyRepo) List(ctx context.Context, company string, filter attendance.DutySessionFilter) ([]attendance.DutySession, int64, error) {
	var out []attendance.DutySession
	for _, s := range f.sessions {
		if s.CompanyID == company {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeDutyRepo) ListOpen(ctx context.Context) ([]attendance.DutySession, error) {
	var out []attendance.DutySession
	for _, s := range f.sessions {
		if s.Status == attendance.SessionStatusOpen {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeBreakRepo struct {
	breaks map[string]attendance.BreakSession
	seq    int
}

func (f *fakeBreakRepo) CreateIfNoneOpen(ctx context.Context, b attendance.BreakSession) (attendance.BreakSession, error) {
	if _, err := f.GetOpenBreak(ctx, b.DutySessionID, b.CompanyID); err == nil {
		return attendance.BreakSession{}, attendance.ErrBreakAlreadyOpen
	}
	f.seq++
	b.ID = fmt.Sprintf("break-%d", f.seq)
	f.breaks[b.ID] = b
	return b, nil
}

func (f *fakeBreakRepo) GetOpenBreak(ctx context.Context, dutySessionID, company string) (attendance.BreakSession, error) {
	for _, b := range f.breaks {
		if b.DutySessionID == dutySessionID && b.EndedAt == nil {
			return b, nil
		}
	}
	return attendance.BreakSession{}, attendance.ErrNoOpenBreak
}

func (f *fakeBreakRepo) Close(ctx context.Context, b attendance.BreakSession) error {
	f.breaks[b.ID] = b
	return nil
}

type fakePolicyRepo struct {
	policies map[string]attendance.BreakPolicy
}

func (f *fakePolicyRepo) Create(ctx context.Context, p attendance.BreakPolicy) (attendance.BreakPolicy, error) {
	p.ID = policyID
	f.policies[p.ID] = p
	return p, nil
}

func (f *fakePolicyRepo) GetByID(ctx context.Context, id, company string) (attendance.BreakPolicy, error) {
	p, ok := f.policies[id]
	if !ok || p.CompanyID != company {
		return attendance.BreakPolicy{}, attendance.ErrBreakPolicyNotFound
	}
	return p, nil
}

func (f *fakePolicyRepo) List(ctx context.Context, company string) ([]attendance.BreakPolicy, error) {
	var out []attendance.BreakPolicy
	for _, p := range f.policies {
		if p.CompanyID == company {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeShiftService resolves against a fixed preset with the real resolver.
type fakeShiftService struct {
	shift.ShiftService
	preset shift.ShiftPreset
}

func (f *fakeShiftService) ResolveAt(ctx context.Context, company, employee string, at time.Time) (shift.ResolvedShiftSegment, shift.WorkContext, error) {
	wc := shift.WorkContext{EmployeeID: employee, CompanyID: company, TimeZone: jakarta}
	resolved, err := shiftsvc.ResolveActiveSegment(f.preset, at, jakarta)
	if err != nil {
		return shift.ResolvedShiftSegment{}, wc, err
	}
	if resolved == nil {
		return shift.ResolvedShiftSegment{}, wc, shift.ErrNoActiveSegment
	}
	return *resolved, wc, nil
}

type harness struct {
	svc      *AttendanceServiceImpl
	duty     *fakeDutyRepo
	breaks   *fakeBreakRepo
	policies *fakePolicyRepo
	clock    time.Time
	ctx      context.Context
}

func (h *harness) at(t time.Time) { h.clock = t }

func newHarness() *harness {
	h := &harness{
		duty:     &fakeDutyRepo{sessions: map[string]attendance.DutySession{}},
		breaks:   &fakeBreakRepo{breaks: map[string]attendance.BreakSession{}},
		policies: &fakePolicyRepo{policies: map[string]attendance.BreakPolicy{}},
		ctx:      jwttest.Employee(companyID, employeeID),
	}
	h.policies.policies[policyID] = attendance.BreakPolicy{ID: policyID, CompanyID: companyID, Name: "Meal", MaxMinutes: 30}

	preset := shift.ShiftPreset{
		ID:   "preset-night",
		Name: "Night",
		Segments: []shift.ShiftSegment{
			{ID: "seg-n", SegmentNo: 1, StartTime: "22:00", EndTime: "03:00", CrossesMidnight: true, LateGraceMinutes: 5},
		},
	}

	h.svc = &AttendanceServiceImpl{
		transactor:   inlineTransactor{},
		dutyRepo:     h.duty,
		breakRepo:    h.breaks,
		policyRepo:   h.policies,
		shiftService: &fakeShiftService{preset: preset},
		resolver:     eventtimesvc.NewResolver(eventtime.DefaultOptions()),
		now:          func() time.Time { return h.clock },
	}
	return h
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

// ---- tests ----

func TestPunchOn_OnTime(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:02:00Z")) // 22:02 Jakarta

	resp, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, "2024-03-10", resp.ShiftDate)
	assert.Equal(t, "2024-03-10T22:00", resp.ScheduleStartLocal)
	assert.Equal(t, 300, resp.ScheduledMinutes)
	assert.False(t, resp.IsLate)
	assert.Equal(t, 0, resp.LateMinutes)
	assert.Equal(t, "SERVER", resp.PunchOnEvent.Source)
	assert.Equal(t, jakarta, resp.TimeZone)
}

func TestPunchOn_LateWithClientTimestamp(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:20:00Z"))

	resp, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{ClientTimestamp: strPtr("2024-03-10T15:19:30Z")})
	require.NoError(t, err)

	assert.True(t, resp.IsLate)
	assert.Equal(t, 19, resp.LateMinutes)
	assert.Equal(t, "2024-03-10T15:19:30Z", resp.PunchOnAt)
	assert.Equal(t, "CLIENT", resp.PunchOnEvent.Source)
	assert.Equal(t, "HIGH", resp.PunchOnEvent.TrustLevel)
	require.NotNil(t, resp.PunchOnEvent.SkewMinutes)
	assert.Equal(t, 1, *resp.PunchOnEvent.SkewMinutes)
}

func TestPunchOn_FutureClientTimestampFallsBackToServer(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:02:00Z"))

	resp, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{ClientTimestamp: strPtr("2024-03-10T15:30:00Z")})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10T15:02:00Z", resp.PunchOnAt)
	require.NotNil(t, resp.PunchOnEvent.Anomaly)
	assert.Equal(t, eventtime.AnomalyClientTooFarInFuture, *resp.PunchOnEvent.Anomaly)
}

func TestPunchOn_AlreadyOnDuty(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:02:00Z"))

	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	_, err = h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyOnDuty)
}

func TestPunchOn_NoActiveSegment(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T05:00:00Z")) // 12:00 Jakarta

	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, shift.ErrNoActiveSegment)
	assert.Empty(t, h.duty.sessions)
}

func TestPunchOn_RequiresEmployeeClaims(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:02:00Z"))

	_, err := h.svc.PunchOn(jwttest.Admin(companyID), attendance.PunchRequest{})
	assert.Error(t, err)
}

func TestPunchOff_ComputesWorkedAndOvertime(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z")) // 22:00 Jakarta
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T15:30:00Z"))
	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T20:30:00Z")) // 03:30 Jakarta next day
	resp, err := h.svc.PunchOff(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	assert.Equal(t, "closed", resp.Status)
	require.NotNil(t, resp.WorkedMinutes)
	assert.Equal(t, 330, *resp.WorkedMinutes)
	require.NotNil(t, resp.OvertimeMinutes)
	assert.Equal(t, 30, *resp.OvertimeMinutes)
	require.NotNil(t, resp.PunchOffAt)
	assert.Equal(t, "2024-03-10T20:30:00Z", *resp.PunchOffAt)

	// the open break is closed with the session
	for _, b := range h.breaks.breaks {
		require.NotNil(t, b.EndedAt)
		assert.Equal(t, 300, *b.Minutes)
	}
}

func TestPunchOff_ClampsToPunchOn(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T15:10:00Z"))
	resp, err := h.svc.PunchOff(h.ctx, attendance.PunchRequest{ClientTimestamp: strPtr("2024-03-10T14:55:00Z")})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10T15:00:00Z", *resp.PunchOffAt)
	assert.Equal(t, 0, *resp.WorkedMinutes)
	require.NotNil(t, resp.PunchOffEvent)
	assert.Equal(t, "MEDIUM", resp.PunchOffEvent.TrustLevel)
	require.NotNil(t, resp.PunchOffEvent.Anomaly)
	assert.Equal(t, eventtime.AnomalyDutyEndBeforeDutyStart, *resp.PunchOffEvent.Anomaly)
}

func TestPunchOff_NotOnDuty(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))

	_, err := h.svc.PunchOff(h.ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotOnDuty)
}

func TestBreaks_Lifecycle(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T17:00:00Z"))
	started, err := h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{PolicyID: strPtr(policyID)})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T17:00:00Z", started.StartedAt)

	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)

	h.at(utc("2024-03-10T17:40:00Z"))
	ended, err := h.svc.EndBreak(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)
	require.NotNil(t, ended.Minutes)
	assert.Equal(t, 40, *ended.Minutes)
	assert.True(t, ended.IsOverLimit)

	_, err = h.svc.EndBreak(h.ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)
}

func TestStartBreak_ClampsToDutyStart(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T15:01:00Z"))
	started, err := h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{ClientTimestamp: strPtr("2024-03-10T14:59:00Z")})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10T15:00:00Z", started.StartedAt)
	require.NotNil(t, started.StartEvent.Anomaly)
	assert.Equal(t, eventtime.AnomalyBreakStartBeforeDutyStart, *started.StartEvent.Anomaly)
}

func TestEndBreak_ClampsToBreakStart(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T16:00:00Z"))
	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)

	h.at(utc("2024-03-10T16:01:00Z"))
	ended, err := h.svc.EndBreak(h.ctx, attendance.PunchRequest{ClientTimestamp: strPtr("2024-03-10T15:58:00Z")})
	require.NoError(t, err)

	assert.Equal(t, 0, *ended.Minutes)
	assert.False(t, ended.IsOverLimit)
	require.NotNil(t, ended.EndEvent)
	assert.Equal(t, eventtime.AnomalyBreakEndBeforeBreakStart, *ended.EndEvent.Anomaly)
}

func TestStartBreak_UnknownPolicy(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{PolicyID: strPtr("0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f99")})
	assert.ErrorIs(t, err, attendance.ErrBreakPolicyNotFound)
}

func TestStartBreak_NotOnDuty(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))

	_, err := h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotOnDuty)
}

func TestGetMyStatus(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))

	status, err := h.svc.GetMyStatus(h.ctx)
	require.NoError(t, err)
	assert.False(t, status.OnDuty)
	assert.Nil(t, status.Session)

	_, err = h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)
	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)

	status, err = h.svc.GetMyStatus(h.ctx)
	require.NoError(t, err)
	assert.True(t, status.OnDuty)
	require.NotNil(t, status.Session)
	require.NotNil(t, status.OpenBreak)
	assert.Equal(t, status.Session.ID, status.OpenBreak.DutySessionID)
}

func TestAutoCloseStaleSessions(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)
	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)

	// Still within the grace window after the 03:00 Jakarta scheduled end.
	closed, err := h.svc.AutoCloseStaleSessions(context.Background(), utc("2024-03-10T21:00:00Z"), 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	closed, err = h.svc.AutoCloseStaleSessions(context.Background(), utc("2024-03-11T22:00:00Z"), 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	var session attendance.DutySession
	for _, s := range h.duty.sessions {
		session = s
	}
	assert.Equal(t, attendance.SessionStatusAutoClosed, session.Status)
	require.NotNil(t, session.PunchOffAt)
	assert.True(t, session.PunchOffAt.Equal(utc("2024-03-10T20:00:00Z")))
	assert.Equal(t, 300, *session.WorkedMinutes)
	assert.Equal(t, 0, *session.OvertimeMinutes)
	assert.True(t, session.PunchOffEvent.HasAnomaly(attendance.AnomalyAutoClosed))

	for _, b := range h.breaks.breaks {
		require.NotNil(t, b.EndedAt)
		assert.True(t, b.EndedAt.Equal(utc("2024-03-10T20:00:00Z")))
	}
}

func TestAutoCloseStaleSessions_BreakAfterScheduledEnd(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	// 04:00 Jakarta, an hour after the 03:00 scheduled end.
	h.at(utc("2024-03-10T21:00:00Z"))
	_, err = h.svc.StartBreak(h.ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)

	closed, err := h.svc.AutoCloseStaleSessions(context.Background(), utc("2024-03-11T22:00:00Z"), 2*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	var session attendance.DutySession
	for _, s := range h.duty.sessions {
		session = s
	}
	require.NotNil(t, session.PunchOffAt)
	assert.True(t, session.PunchOffAt.Equal(utc("2024-03-10T21:00:00Z")))
	assert.Equal(t, 360, *session.WorkedMinutes)
	assert.Equal(t, 60, *session.OvertimeMinutes)

	require.Len(t, h.breaks.breaks, 1)
	for _, b := range h.breaks.breaks {
		require.NotNil(t, b.EndedAt)
		assert.False(t, b.EndedAt.After(*session.PunchOffAt))
		assert.True(t, b.EndedAt.Equal(*session.PunchOffAt))
		assert.Equal(t, 0, *b.Minutes)
	}
}

func TestAutoCloseStaleSessions_SkipsCurrentShiftDate(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	// 2024-03-10T23:00 Jakarta: the previous date is 2024-03-09.
	closed, err := h.svc.AutoCloseStaleSessions(context.Background(), utc("2024-03-10T16:00:00Z"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestBreakPolicies(t *testing.T) {
	h := newHarness()
	admin := jwttest.Admin(companyID)

	_, err := h.svc.CreateBreakPolicy(admin, attendance.CreateBreakPolicyRequest{Name: "", MaxMinutes: 0})
	assert.Error(t, err)

	created, err := h.svc.CreateBreakPolicy(admin, attendance.CreateBreakPolicyRequest{Name: "Rest", MaxMinutes: 15, IsPaid: true})
	require.NoError(t, err)
	assert.Equal(t, "Rest", created.Name)

	list, err := h.svc.ListBreakPolicies(admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListSessions(t *testing.T) {
	h := newHarness()
	h.at(utc("2024-03-10T15:00:00Z"))
	_, err := h.svc.PunchOn(h.ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	resp, err := h.svc.ListSessions(jwttest.Admin(companyID), attendance.DutySessionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, 20, resp.Limit)

	bad := "paused"
	_, err = h.svc.ListSessions(jwttest.Admin(companyID), attendance.DutySessionFilter{Status: &bad})
	assert.Error(t, err)
}
