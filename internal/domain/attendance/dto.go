package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
)

// ========== REQUESTS ==========

// PunchRequest carries the optional device clock reading of the action.
type PunchRequest struct {
	ClientTimestamp *string `json:"client_timestamp,omitempty"`
}

type StartBreakRequest struct {
	PolicyID        *string `json:"policy_id,omitempty"`
	ClientTimestamp *string `json:"client_timestamp,omitempty"`
}

func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PolicyID != nil && !validator.IsValidUUID(*r.PolicyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "policy_id",
			Message: "policy_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateBreakPolicyRequest struct {
	Name       string `json:"name"`
	MaxMinutes int    `json:"max_minutes"`
	IsPaid     bool   `json:"is_paid"`
}

func (r *CreateBreakPolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if r.MaxMinutes <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_minutes",
			Message: "max_minutes must be a positive number",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DutySessionFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // shift date, inclusive
	EndDate    *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *DutySessionFilter) Validate() error {
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
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, SessionStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(SessionStatusValues, ", "),
		})
	}

	var start, end time.Time
	var startOK, endOK bool
	if f.StartDate != nil {
		if start, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if end, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type DutySessionResponse struct {
	ID                 string                     `json:"id"`
	EmployeeID         string                     `json:"employee_id"`
	EmployeeName       *string                    `json:"employee_name,omitempty"`
	ShiftPresetID      string                     `json:"shift_preset_id"`
	SegmentID          string                     `json:"segment_id"`
	SegmentNo          int                        `json:"segment_no"`
	TimeZone           string                     `json:"time_zone"`
	ShiftDate          string                     `json:"shift_date"`
	ScheduleStartLocal string                     `json:"schedule_start_local"`
	ScheduleEndLocal   string                     `json:"schedule_end_local"`
	ScheduledMinutes   int                        `json:"scheduled_minutes"`
	PunchOnAt          string                     `json:"punch_on_at"`
	PunchOffAt         *string                    `json:"punch_off_at,omitempty"`
	IsLate             bool                       `json:"is_late"`
	LateMinutes        int                        `json:"late_minutes"`
	WorkedMinutes      *int                       `json:"worked_minutes,omitempty"`
	OvertimeMinutes    *int                       `json:"overtime_minutes,omitempty"`
	Status             string                     `json:"status"`
	PunchOnEvent       eventtime.ContextResponse  `json:"punch_on_event"`
	PunchOffEvent      *eventtime.ContextResponse `json:"punch_off_event,omitempty"`
}

type BreakSessionResponse struct {
	ID            string                     `json:"id"`
	DutySessionID string                     `json:"duty_session_id"`
	PolicyID      *string                    `json:"policy_id,omitempty"`
	StartedAt     string                     `json:"started_at"`
	EndedAt       *string                    `json:"ended_at,omitempty"`
	Minutes       *int                       `json:"minutes,omitempty"`
	IsOverLimit   bool                       `json:"is_over_limit"`
	StartEvent    eventtime.ContextResponse  `json:"start_event"`
	EndEvent      *eventtime.ContextResponse `json:"end_event,omitempty"`
}

type BreakPolicyResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MaxMinutes int    `json:"max_minutes"`
	IsPaid     bool   `json:"is_paid"`
}

type MyStatusResponse struct {
	OnDuty    bool                  `json:"on_duty"`
	Session   *DutySessionResponse  `json:"session,omitempty"`
	OpenBreak *BreakSessionResponse `json:"open_break,omitempty"`
}

type ListDutySessionResponse struct {
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Sessions   []DutySessionResponse `json:"sessions"`
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (s DutySession) ToResponse() DutySessionResponse {
	resp := DutySessionResponse{
		ID:                 s.ID,
		EmployeeID:         s.EmployeeID,
		EmployeeName:       s.EmployeeName,
		ShiftPresetID:      s.ShiftPresetID,
		SegmentID:          s.SegmentID,
		SegmentNo:          s.SegmentNo,
		TimeZone:           s.TimeZone,
		ShiftDate:          s.ShiftDate,
		ScheduleStartLocal: s.ScheduleStartLocal,
		ScheduleEndLocal:   s.ScheduleEndLocal,
		ScheduledMinutes:   s.ScheduledMinutes,
		PunchOnAt:          formatInstant(s.PunchOnAt),
		IsLate:             s.IsLate,
		LateMinutes:        s.LateMinutes,
		WorkedMinutes:      s.WorkedMinutes,
		OvertimeMinutes:    s.OvertimeMinutes,
		Status:             string(s.Status),
		PunchOnEvent:       s.PunchOnEvent.ToResponse(),
	}
	if s.PunchOffAt != nil {
		v := formatInstant(*s.PunchOffAt)
		resp.PunchOffAt = &v
	}
	if s.PunchOffEvent != nil {
		v := s.PunchOffEvent.ToResponse()
		resp.PunchOffEvent = &v
	}
	return resp
}

func (b BreakSession) ToResponse() BreakSessionResponse {
	resp := BreakSessionResponse{
		ID:            b.ID,
		DutySessionID: b.DutySessionID,
		PolicyID:      b.PolicyID,
		StartedAt:     formatInstant(b.StartedAt),
		Minutes:       b.Minutes,
		IsOverLimit:   b.IsOverLimit,
		StartEvent:    b.StartEvent.ToResponse(),
	}
	if b.EndedAt != nil {
		v := formatInstant(*b.EndedAt)
		resp.EndedAt = &v
	}
	if b.EndEvent != nil {
		v := b.EndEvent.ToResponse()
		resp.EndEvent = &v
	}
	return resp
}

func (p BreakPolicy) ToResponse() BreakPolicyResponse {
	return BreakPolicyResponse{
		ID:         p.ID,
		Name:       p.Name,
		MaxMinutes: p.MaxMinutes,
		IsPaid:     p.IsPaid,
	}
}
