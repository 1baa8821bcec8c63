package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
)

type shiftServiceImpl struct {
	presetRepo      shift.ShiftPresetRepository
	workContextRepo shift.WorkContextRepository
	now             func() time.Time
}

// CreatePreset implements shift.ShiftService.
func (s *shiftServiceImpl) CreatePreset(ctx context.Context, req shift.CreateShiftPresetRequest) (shift.ShiftPresetResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftPresetResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return shift.ShiftPresetResponse{}, err
	}

	created, err := s.presetRepo.Create(ctx, req.ToPreset(claims.CompanyID))
	if err != nil {
		return shift.ShiftPresetResponse{}, err
	}

	slog.Info("shift preset created", "preset_id", created.ID, "company_id", created.CompanyID, "segments", len(created.Segments))
	return created.ToResponse(), nil
}

// GetPreset implements shift.ShiftService.
func (s *shiftServiceImpl) GetPreset(ctx context.Context, id string) (shift.ShiftPresetResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return shift.ShiftPresetResponse{}, err
	}

	preset, err := s.presetRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return shift.ShiftPresetResponse{}, err
	}
	return preset.ToResponse(), nil
}

// ListPresets implements shift.ShiftService.
func (s *shiftServiceImpl) ListPresets(ctx context.Context, filter shift.ShiftPresetFilter) (shift.ListShiftPresetResponse, error) {
	if err := filter.Validate(); err != nil {
		return shift.ListShiftPresetResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return shift.ListShiftPresetResponse{}, err
	}

	presets, total, err := s.presetRepo.List(ctx, claims.CompanyID, filter)
	if err != nil {
		return shift.ListShiftPresetResponse{}, fmt.Errorf("failed to list shift presets: %w", err)
	}

	items := make([]shift.ShiftPresetResponse, 0, len(presets))
	for _, p := range presets {
		items = append(items, p.ToResponse())
	}

	return shift.ListShiftPresetResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Presets:    items,
	}, nil
}

// DeletePreset implements shift.ShiftService.
func (s *shiftServiceImpl) DeletePreset(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.presetRepo.Delete(ctx, id, claims.CompanyID); err != nil {
		return err
	}

	slog.Info("shift preset deleted", "preset_id", id, "company_id", claims.CompanyID)
	return nil
}

// AssignPreset implements shift.ShiftService.
func (s *shiftServiceImpl) AssignPreset(ctx context.Context, req shift.AssignShiftPresetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.presetRepo.GetByID(ctx, req.PresetID, claims.CompanyID); err != nil {
		return err
	}
	if err := s.presetRepo.AssignToEmployee(ctx, req.PresetID, req.EmployeeID, claims.CompanyID); err != nil {
		return err
	}

	slog.Info("shift preset assigned", "preset_id", req.PresetID, "employee_id", req.EmployeeID)
	return nil
}

// GetActiveSegment implements shift.ShiftService.
func (s *shiftServiceImpl) GetActiveSegment(ctx context.Context) (shift.ResolvedShiftSegmentResponse, error) {
	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return shift.ResolvedShiftSegmentResponse{}, err
	}

	now := s.now()
	resolved, wc, err := s.ResolveAt(ctx, claims.CompanyID, claims.EmployeeID, now)
	if err != nil {
		return shift.ResolvedShiftSegmentResponse{}, err
	}
	return resolved.ToResponse(resolved.IsLateAt(now, wc.TimeZone)), nil
}

// ResolveAt implements shift.ShiftService.
func (s *shiftServiceImpl) ResolveAt(ctx context.Context, companyID, employeeID string, at time.Time) (shift.ResolvedShiftSegment, shift.WorkContext, error) {
	wc, preset, err := s.employeePreset(ctx, companyID, employeeID)
	if err != nil {
		return shift.ResolvedShiftSegment{}, shift.WorkContext{}, err
	}

	resolved, err := ResolveActiveSegment(preset, at, wc.TimeZone)
	if err != nil {
		slog.Error("shift preset has malformed segment times", "preset_id", preset.ID, "error", err)
		return shift.ResolvedShiftSegment{}, wc, err
	}
	if resolved == nil {
		return shift.ResolvedShiftSegment{}, wc, shift.ErrNoActiveSegment
	}
	return *resolved, wc, nil
}

// ExportCalendar implements shift.ShiftService.
func (s *shiftServiceImpl) ExportCalendar(ctx context.Context, req shift.ShiftCalendarRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := jwt.EmployeeClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	wc, preset, err := s.employeePreset(ctx, claims.CompanyID, claims.EmployeeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := req.From
	if from == "" {
		from = localtime.DateInZone(now, wc.TimeZone)
	}

	occurrences, err := ExpandOccurrences(preset, from, req.Days, wc.TimeZone)
	if err != nil {
		return nil, err
	}
	return EncodeCalendar(claims.EmployeeID, occurrences, now)
}

// employeePreset loads the employee's work context and the preset that applies to them:
// the directly assigned preset first, then the team preset.
func (s *shiftServiceImpl) employeePreset(ctx context.Context, companyID, employeeID string) (shift.WorkContext, shift.ShiftPreset, error) {
	wc, err := s.workContextRepo.GetWorkContext(ctx, employeeID, companyID)
	if err != nil {
		return shift.WorkContext{}, shift.ShiftPreset{}, err
	}

	if wc.ShiftPresetID != nil {
		preset, err := s.presetRepo.GetByID(ctx, *wc.ShiftPresetID, companyID)
		if err != nil {
			return wc, shift.ShiftPreset{}, err
		}
		return wc, preset, nil
	}

	if wc.TeamID != nil {
		preset, err := s.presetRepo.GetForTeam(ctx, *wc.TeamID, companyID)
		if err == nil {
			return wc, preset, nil
		}
		if !errors.Is(err, shift.ErrShiftPresetNotFound) {
			return wc, shift.ShiftPreset{}, err
		}
	}

	return wc, shift.ShiftPreset{}, shift.ErrNoShiftPresetAssigned
}

func NewShiftService(presetRepo shift.ShiftPresetRepository, workContextRepo shift.WorkContextRepository) shift.ShiftService {
	return &shiftServiceImpl{
		presetRepo:      presetRepo,
		workContextRepo: workContextRepo,
		now:             time.Now,
	}
}
