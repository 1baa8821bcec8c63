package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// maxRunPeriodDays bounds a single payroll run.
const maxRunPeriodDays = 62

// ========== SALARY RULE DTOs ==========

type CreateSalaryRuleRequest struct {
	Name                 string          `json:"name"`
	BaseHourlyRate       decimal.Decimal `json:"base_hourly_rate"`
	OvertimeMultiplier   decimal.Decimal `json:"overtime_multiplier"`
	LatePenaltyPerMinute decimal.Decimal `json:"late_penalty_per_minute"`
	BreakDeductionMode   string          `json:"break_deduction_mode"`
}

func (r *CreateSalaryRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.BaseHourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_hourly_rate", Message: "must be non-negative"})
	}
	if r.OvertimeMultiplier.IsZero() {
		r.OvertimeMultiplier = decimal.NewFromInt(1)
	}
	if r.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		errs = append(errs, validator.ValidationError{Field: "overtime_multiplier", Message: "must be at least 1"})
	}
	if r.LatePenaltyPerMinute.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "late_penalty_per_minute", Message: "must be non-negative"})
	}
	if r.BreakDeductionMode == "" {
		r.BreakDeductionMode = string(BreakDeductionNone)
	}
	if !validator.IsInSlice(r.BreakDeductionMode, BreakDeductionModeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "break_deduction_mode",
			Message: "must be one of: " + strings.Join(BreakDeductionModeValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignSalaryRuleRequest struct {
	RuleID     string `json:"-"`
	EmployeeID string `json:"-"`
}

func (r *AssignSalaryRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.RuleID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryRuleResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	BaseHourlyRate       decimal.Decimal `json:"base_hourly_rate"`
	OvertimeMultiplier   decimal.Decimal `json:"overtime_multiplier"`
	LatePenaltyPerMinute decimal.Decimal `json:"late_penalty_per_minute"`
	BreakDeductionMode   string          `json:"break_deduction_mode"`
	CreatedAt            string          `json:"created_at"`
}

func (r SalaryRule) ToResponse() SalaryRuleResponse {
	return SalaryRuleResponse{
		ID:                   r.ID,
		Name:                 r.Name,
		BaseHourlyRate:       r.BaseHourlyRate,
		OvertimeMultiplier:   r.OvertimeMultiplier,
		LatePenaltyPerMinute: r.LatePenaltyPerMinute,
		BreakDeductionMode:   string(r.BreakDeductionMode),
		CreatedAt:            r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ========== RUN DTOs ==========

type GenerateRunRequest struct {
	PeriodStart string `json:"period_start"` // YYYY-MM-DD, shift date
	PeriodEnd   string `json:"period_end"`   // YYYY-MM-DD, inclusive
}

// Validate checks the period and returns the parsed bounds.
func (r *GenerateRunRequest) Validate() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be in YYYY-MM-DD format"})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must not be before period_start"})
		} else if end.Sub(start) >= maxRunPeriodDays*24*time.Hour {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "period must not exceed 62 days"})
		}
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

type PayrollRunFilter struct {
	Status *string `json:"status,omitempty"`
	Year   *int    `json:"year,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *PayrollRunFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must not exceed 100"})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(RunStatusDraft), string(RunStatusFinalized)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft' or 'finalized'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollItemResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       *string         `json:"employee_name,omitempty"`
	SalaryRuleID       string          `json:"salary_rule_id"`
	BreakDeductionMode string          `json:"break_deduction_mode"`
	SessionCount       int             `json:"session_count"`
	WorkedMinutes      int             `json:"worked_minutes"`
	BreakMinutes       int             `json:"break_minutes"`
	OvertimeMinutes    int             `json:"overtime_minutes"`
	LateMinutes        int             `json:"late_minutes"`
	PayableMinutes     int             `json:"payable_minutes"`
	RegularMinutes     int             `json:"regular_minutes"`
	RegularPay         decimal.Decimal `json:"regular_pay"`
	OvertimePay        decimal.Decimal `json:"overtime_pay"`
	GrossPay           decimal.Decimal `json:"gross_pay"`
	LatePenalty        decimal.Decimal `json:"late_penalty"`
	FinalPay           decimal.Decimal `json:"final_pay"`
}

type PayrollRunResponse struct {
	ID            string                `json:"id"`
	PeriodStart   string                `json:"period_start"`
	PeriodEnd     string                `json:"period_end"`
	Status        string                `json:"status"`
	EmployeeCount int                   `json:"employee_count"`
	TotalFinalPay decimal.Decimal       `json:"total_final_pay"`
	FinalizedAt   *string               `json:"finalized_at,omitempty"`
	CreatedAt     string                `json:"created_at"`
	Items         []PayrollItemResponse `json:"items,omitempty"`
}

type ListPayrollRunResponse struct {
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
	Runs       []PayrollRunResponse `json:"runs"`
}

func (i PayrollItem) ToResponse() PayrollItemResponse {
	return PayrollItemResponse{
		ID:                 i.ID,
		EmployeeID:         i.EmployeeID,
		EmployeeName:       i.EmployeeName,
		SalaryRuleID:       i.SalaryRuleID,
		BreakDeductionMode: string(i.Rule.BreakDeductionMode),
		SessionCount:       i.SessionCount,
		WorkedMinutes:      i.WorkedMinutes,
		BreakMinutes:       i.BreakMinutes,
		OvertimeMinutes:    i.OvertimeMinutes,
		LateMinutes:        i.LateMinutes,
		PayableMinutes:     i.PayableMinutes,
		RegularMinutes:     i.RegularMinutes,
		RegularPay:         i.RegularPay,
		OvertimePay:        i.OvertimePay,
		GrossPay:           i.GrossPay,
		LatePenalty:        i.LatePenalty,
		FinalPay:           i.FinalPay,
	}
}

func (r PayrollRun) ToResponse() PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:            r.ID,
		PeriodStart:   r.PeriodStart.Format(localtime.DateLayout),
		PeriodEnd:     r.PeriodEnd.Format(localtime.DateLayout),
		Status:        string(r.Status),
		EmployeeCount: r.EmployeeCount,
		TotalFinalPay: r.TotalFinalPay,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.FinalizedAt != nil {
		s := r.FinalizedAt.UTC().Format(time.RFC3339)
		resp.FinalizedAt = &s
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, item.ToResponse())
	}
	return resp
}
