package shift

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
)

type CreateShiftSegmentRequest struct {
	SegmentNo        int    `json:"segment_no"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	CrossesMidnight  bool   `json:"crosses_midnight"`
	LateGraceMinutes int    `json:"late_grace_minutes"`
}

type CreateShiftPresetRequest struct {
	Name     string                      `json:"name"`
	TeamID   *string                     `json:"team_id,omitempty"`
	Segments []CreateShiftSegmentRequest `json:"segments"`
}

func (r *CreateShiftPresetRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if r.TeamID != nil && !validator.IsValidUUID(*r.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: "team_id must be a valid UUID",
		})
	}
	if len(r.Segments) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "segments",
			Message: "at least one segment is required",
		})
	}

	seen := make(map[int]bool, len(r.Segments))
	for i, seg := range r.Segments {
		prefix := fmt.Sprintf("segments[%d]", i)

		if seg.SegmentNo < 1 {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".segment_no",
				Message: "segment_no must be a positive number",
			})
		} else if seen[seg.SegmentNo] {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".segment_no",
				Message: ErrDuplicateSegmentNumber.Error(),
			})
		}
		seen[seg.SegmentNo] = true

		if seg.LateGraceMinutes < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".late_grace_minutes",
				Message: "late_grace_minutes must be a non-negative number",
			})
		}

		startOK := validator.IsValidClock(seg.StartTime)
		endOK := validator.IsValidClock(seg.EndTime)
		if !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".start_time",
				Message: "start_time must be in HH:mm format",
			})
		}
		if !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".end_time",
				Message: "end_time must be in HH:mm format",
			})
		}
		if !startOK || !endOK {
			continue
		}

		start, _ := localtime.ParseTimeToMinutes(seg.StartTime)
		end, _ := localtime.ParseTimeToMinutes(seg.EndTime)
		if seg.CrossesMidnight && end > start {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".crosses_midnight",
				Message: "crosses_midnight requires end_time at or before start_time",
			})
		}
		if !seg.CrossesMidnight && end <= start {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".end_time",
				Message: "end_time must be after start_time unless crosses_midnight is set",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToPreset builds the unsaved preset entity for companyID.
func (r CreateShiftPresetRequest) ToPreset(companyID string) ShiftPreset {
	preset := ShiftPreset{
		CompanyID: companyID,
		Name:      r.Name,
		TeamID:    r.TeamID,
	}
	for _, seg := range r.Segments {
		preset.Segments = append(preset.Segments, ShiftSegment{
			SegmentNo:        seg.SegmentNo,
			StartTime:        seg.StartTime,
			EndTime:          seg.EndTime,
			CrossesMidnight:  seg.CrossesMidnight,
			LateGraceMinutes: seg.LateGraceMinutes,
		})
	}
	return preset
}

type AssignShiftPresetRequest struct {
	PresetID   string `json:"-"`
	EmployeeID string `json:"-"`
}

func (r *AssignShiftPresetRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PresetID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "preset id must be a valid UUID",
		})
	}
	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftPresetFilter struct {
	Name   *string `json:"name,omitempty"`
	TeamID *string `json:"team_id,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ShiftPresetFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}
	if f.TeamID != nil && !validator.IsValidUUID(*f.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: "team_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftSegmentResponse struct {
	ID               string `json:"id"`
	SegmentNo        int    `json:"segment_no"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	CrossesMidnight  bool   `json:"crosses_midnight"`
	LateGraceMinutes int    `json:"late_grace_minutes"`
}

type ShiftPresetResponse struct {
	ID        string                 `json:"id"`
	CompanyID string                 `json:"company_id"`
	Name      string                 `json:"name"`
	TeamID    *string                `json:"team_id,omitempty"`
	Segments  []ShiftSegmentResponse `json:"segments"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

type ListShiftPresetResponse struct {
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Presets    []ShiftPresetResponse `json:"presets"`
}

type ResolvedShiftSegmentResponse struct {
	PresetID           string `json:"preset_id"`
	PresetName         string `json:"preset_name"`
	SegmentID          string `json:"segment_id"`
	SegmentNo          int    `json:"segment_no"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	CrossesMidnight    bool   `json:"crosses_midnight"`
	LateGraceMinutes   int    `json:"late_grace_minutes"`
	ShiftDate          string `json:"shift_date"`
	ScheduleStartLocal string `json:"schedule_start_local"`
	ScheduleEndLocal   string `json:"schedule_end_local"`
	ScheduledMinutes   int    `json:"scheduled_minutes"`
	IsLateNow          bool   `json:"is_late_now"`
}

func (p ShiftPreset) ToResponse() ShiftPresetResponse {
	segments := make([]ShiftSegmentResponse, 0, len(p.Segments))
	for _, s := range p.Segments {
		segments = append(segments, ShiftSegmentResponse{
			ID:               s.ID,
			SegmentNo:        s.SegmentNo,
			StartTime:        s.StartTime,
			EndTime:          s.EndTime,
			CrossesMidnight:  s.CrossesMidnight,
			LateGraceMinutes: s.LateGraceMinutes,
		})
	}
	return ShiftPresetResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Name:      p.Name,
		TeamID:    p.TeamID,
		Segments:  segments,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type ShiftCalendarRequest struct {
	From string `json:"from"`
	Days int    `json:"days"`
}

func (r *ShiftCalendarRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.From); r.From != "" && !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}
	if r.Days == 0 {
		r.Days = 14
	}
	if r.Days < 1 || r.Days > 62 {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be between 1 and 62",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r ResolvedShiftSegment) ToResponse(isLateNow bool) ResolvedShiftSegmentResponse {
	return ResolvedShiftSegmentResponse{
		PresetID:           r.PresetID,
		PresetName:         r.PresetName,
		SegmentID:          r.SegmentID,
		SegmentNo:          r.SegmentNo,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		CrossesMidnight:    r.CrossesMidnight,
		LateGraceMinutes:   r.LateGraceMinutes,
		ShiftDate:          r.ShiftDate,
		ScheduleStartLocal: r.ScheduleStartLocal,
		ScheduleEndLocal:   r.ScheduleEndLocal,
		ScheduledMinutes:   r.ScheduledMinutes(),
		IsLateNow:          isLateNow,
	}
}
