package shift

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt/jwttest"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID  = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f60"
	employeeID = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f61"
	presetID   = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f62"
	teamID     = "0190f3a4-7b2c-7d3e-8f4a-1b2c3d4e5f63"
)

type fakePresetRepo struct {
	presets  map[string]shift.ShiftPreset
	byTeam   map[string]string
	assigned map[string]string
}

func newFakePresetRepo() *fakePresetRepo {
	return &fakePresetRepo{
		presets:  map[string]shift.ShiftPreset{},
		byTeam:   map[string]string{},
		assigned: map[string]string{},
	}
}

func (f *fakePresetRepo) Create(ctx context.Context, preset shift.ShiftPreset) (shift.ShiftPreset, error) {
	for _, p := range f.presets {
		if p.CompanyID == preset.CompanyID && p.Name == preset.Name {
			return shift.ShiftPreset{}, shift.ErrShiftPresetNameExists
		}
	}
	if preset.ID == "" {
		preset.ID = presetID
	}
	f.presets[preset.ID] = preset
	if preset.TeamID != nil {
		f.byTeam[*preset.TeamID] = preset.ID
	}
	return preset, nil
}

func (f *fakePresetRepo) GetByID(ctx context.Context, id string, company string) (shift.ShiftPreset, error) {
	p, ok := f.presets[id]
	if !ok || p.CompanyID != company {
		return shift.ShiftPreset{}, shift.ErrShiftPresetNotFound
	}
	return p, nil
}

func (f *fakePresetRepo) List(ctx context.Context, company string, filter shift.ShiftPresetFilter) ([]shift.ShiftPreset, int64, error) {
	var out []shift.ShiftPreset
	for _, p := range f.presets {
		if p.CompanyID == company {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePresetRepo) Delete(ctx context.Context, id string, company string) error {
	if _, err := f.GetByID(ctx, id, company); err != nil {
		return err
	}
	delete(f.presets, id)
	return nil
}

func (f *fakePresetRepo) AssignToEmployee(ctx context.Context, preset, employee, company string) error {
	f.assigned[employee] = preset
	return nil
}

func (f *fakePresetRepo) GetForTeam(ctx context.Context, team string, company string) (shift.ShiftPreset, error) {
	id, ok := f.byTeam[team]
	if !ok {
		return shift.ShiftPreset{}, shift.ErrShiftPresetNotFound
	}
	return f.GetByID(ctx, id, company)
}

type fakeWorkContextRepo struct {
	contexts map[string]shift.WorkContext
}

func (f *fakeWorkContextRepo) GetWorkContext(ctx context.Context, employee string, company string) (shift.WorkContext, error) {
	wc, ok := f.contexts[employee]
	if !ok || wc.CompanyID != company {
		return shift.WorkContext{}, shift.ErrEmployeeNotFound
	}
	return wc, nil
}

func newTestService(now time.Time, wc shift.WorkContext, presets ...shift.ShiftPreset) (*shiftServiceImpl, *fakePresetRepo) {
	repo := newFakePresetRepo()
	for _, p := range presets {
		repo.presets[p.ID] = p
		if p.TeamID != nil {
			repo.byTeam[*p.TeamID] = p.ID
		}
	}
	svc := &shiftServiceImpl{
		presetRepo:      repo,
		workContextRepo: &fakeWorkContextRepo{contexts: map[string]shift.WorkContext{wc.EmployeeID: wc}},
		now:             func() time.Time { return now },
	}
	return svc, repo
}

func storedNightPreset() shift.ShiftPreset {
	p := nightPreset()
	p.ID = presetID
	p.CompanyID = companyID
	return p
}

func workContext(preset *string) shift.WorkContext {
	return shift.WorkContext{
		EmployeeID:    employeeID,
		CompanyID:     companyID,
		TimeZone:      jakarta,
		ShiftPresetID: preset,
	}
}

func TestShiftService_GetActiveSegment(t *testing.T) {
	id := presetID
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC) // 01:30 in Jakarta
	svc, _ := newTestService(now, workContext(&id), storedNightPreset())

	resp, err := svc.GetActiveSegment(jwttest.Employee(companyID, employeeID))
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10", resp.ShiftDate)
	assert.Equal(t, "2024-03-10T22:00", resp.ScheduleStartLocal)
	assert.Equal(t, "2024-03-11T03:00", resp.ScheduleEndLocal)
	assert.Equal(t, 300, resp.ScheduledMinutes)
	assert.False(t, resp.IsLateNow)
}

func TestShiftService_GetActiveSegment_NothingScheduled(t *testing.T) {
	id := presetID
	now := time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC) // 12:00 in Jakarta
	svc, _ := newTestService(now, workContext(&id), storedNightPreset())

	_, err := svc.GetActiveSegment(jwttest.Employee(companyID, employeeID))
	assert.ErrorIs(t, err, shift.ErrNoActiveSegment)
}

func TestShiftService_ResolveAt_TeamFallback(t *testing.T) {
	team := teamID
	preset := storedNightPreset()
	preset.TeamID = &team

	wc := workContext(nil)
	wc.TeamID = &team
	svc, _ := newTestService(time.Now(), wc, preset)

	at := time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC) // 23:00 in Jakarta
	resolved, gotWC, err := svc.ResolveAt(context.Background(), companyID, employeeID, at)
	require.NoError(t, err)
	assert.Equal(t, presetID, resolved.PresetID)
	assert.Equal(t, jakarta, gotWC.TimeZone)
}

func TestShiftService_ResolveAt_NoPreset(t *testing.T) {
	svc, _ := newTestService(time.Now(), workContext(nil))

	_, _, err := svc.ResolveAt(context.Background(), companyID, employeeID, time.Now())
	assert.ErrorIs(t, err, shift.ErrNoShiftPresetAssigned)
}

func TestShiftService_ResolveAt_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(time.Now(), workContext(nil))

	_, _, err := svc.ResolveAt(context.Background(), companyID, "someone-else", time.Now())
	assert.ErrorIs(t, err, shift.ErrEmployeeNotFound)
}

func TestShiftService_CreatePreset(t *testing.T) {
	svc, repo := newTestService(time.Now(), workContext(nil))

	resp, err := svc.CreatePreset(jwttest.Admin(companyID), shift.CreateShiftPresetRequest{
		Name: "  Night  ",
		Segments: []shift.CreateShiftSegmentRequest{
			{SegmentNo: 1, StartTime: "22:00", EndTime: "03:00", CrossesMidnight: true, LateGraceMinutes: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Night", resp.Name)
	assert.Equal(t, companyID, resp.CompanyID)
	require.Len(t, resp.Segments, 1)
	assert.Contains(t, repo.presets, resp.ID)
}

func TestShiftService_CreatePreset_Validation(t *testing.T) {
	svc, _ := newTestService(time.Now(), workContext(nil))

	_, err := svc.CreatePreset(jwttest.Admin(companyID), shift.CreateShiftPresetRequest{
		Name: "Broken",
		Segments: []shift.CreateShiftSegmentRequest{
			{SegmentNo: 1, StartTime: "9:00", EndTime: "17:00"},
			{SegmentNo: 1, StartTime: "18:00", EndTime: "20:00", CrossesMidnight: true},
			{SegmentNo: 2, StartTime: "12:00", EndTime: "08:00"},
		},
	})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "segments[0].start_time")
	assert.Contains(t, fields, "segments[1].segment_no")
	assert.Contains(t, fields, "segments[1].crosses_midnight")
	assert.Contains(t, fields, "segments[2].end_time")
}

func TestShiftService_AssignPreset(t *testing.T) {
	svc, repo := newTestService(time.Now(), workContext(nil), storedNightPreset())

	err := svc.AssignPreset(jwttest.Admin(companyID), shift.AssignShiftPresetRequest{PresetID: presetID, EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Equal(t, presetID, repo.assigned[employeeID])

	err = svc.AssignPreset(jwttest.Admin("0190f3a4-7b2c-7d3e-8f4a-000000000000"), shift.AssignShiftPresetRequest{PresetID: presetID, EmployeeID: employeeID})
	assert.ErrorIs(t, err, shift.ErrShiftPresetNotFound)
}

func TestShiftService_ExportCalendar(t *testing.T) {
	id := presetID
	now := time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now, workContext(&id), storedNightPreset())

	body, err := svc.ExportCalendar(jwttest.Employee(companyID, employeeID), shift.ShiftCalendarRequest{From: "2024-03-10", Days: 2})
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(text, "BEGIN:VEVENT"))
	// 22:00 Jakarta is 15:00 UTC; the window runs five hours.
	assert.Contains(t, text, "20240310T150000Z")
	assert.Contains(t, text, "20240310T200000Z")
}

func TestShiftService_ExportCalendar_InvalidDays(t *testing.T) {
	id := presetID
	svc, _ := newTestService(time.Now(), workContext(&id), storedNightPreset())

	_, err := svc.ExportCalendar(jwttest.Employee(companyID, employeeID), shift.ShiftCalendarRequest{Days: 90})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestExpandOccurrences(t *testing.T) {
	preset := shift.ShiftPreset{
		ID:   presetID,
		Name: "Split",
		Segments: []shift.ShiftSegment{
			{ID: "b", SegmentNo: 2, StartTime: "17:00", EndTime: "21:00"},
			{ID: "a", SegmentNo: 1, StartTime: "08:00", EndTime: "12:00"},
		},
	}

	occ, err := ExpandOccurrences(preset, "2024-02-28", 2, jakarta)
	require.NoError(t, err)
	require.Len(t, occ, 4)

	assert.Equal(t, "2024-02-28", occ[0].ShiftDate)
	assert.Equal(t, 1, occ[0].SegmentNo)
	assert.Equal(t, 2, occ[1].SegmentNo)
	assert.Equal(t, "2024-02-29", occ[2].ShiftDate)
	assert.Equal(t, 4*time.Hour, occ[3].End.Sub(occ[3].Start))

	_, err = ExpandOccurrences(preset, "28-02-2024", 1, jakarta)
	assert.Error(t, err)
}
