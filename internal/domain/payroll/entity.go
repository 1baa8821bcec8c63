package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// BreakDeductionMode decides how break minutes reduce payable time.
type BreakDeductionMode string

const (
	BreakDeductionNone               BreakDeductionMode = "NONE"
	BreakDeductionUnpaidAllBreaks    BreakDeductionMode = "UNPAID_ALL_BREAKS"
	BreakDeductionUnpaidOvertimeOnly BreakDeductionMode = "UNPAID_OVERTIME_ONLY"
)

var BreakDeductionModeValues = []string{
	string(BreakDeductionNone),
	string(BreakDeductionUnpaidAllBreaks),
	string(BreakDeductionUnpaidOvertimeOnly),
}

// PayrollRuleSnapshot is a salary rule frozen at computation time.
type PayrollRuleSnapshot struct {
	BaseHourlyRate       float64
	OvertimeMultiplier   float64
	LatePenaltyPerMinute float64
	BreakDeductionMode   BreakDeductionMode
}

// MinuteTotals are one employee's aggregated minutes for a pay period.
type MinuteTotals struct {
	Worked   int
	Break    int
	Overtime int
	Late     int
}

type PayrollComputationResult struct {
	WorkedMinutes   int
	BreakMinutes    int
	OvertimeMinutes int
	LateMinutes     int
	PayableMinutes  int
	RegularMinutes  int
	RegularPay      float64
	OvertimePay     float64
	GrossPay        float64
	LatePenalty     float64
	FinalPay        float64
}

// SalaryRule - Company pay rule, assigned to employees
type SalaryRule struct {
	ID                   string
	CompanyID            string
	Name                 string
	BaseHourlyRate       decimal.Decimal
	OvertimeMultiplier   decimal.Decimal
	LatePenaltyPerMinute decimal.Decimal
	BreakDeductionMode   BreakDeductionMode
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (r SalaryRule) Snapshot() PayrollRuleSnapshot {
	return PayrollRuleSnapshot{
		BaseHourlyRate:       r.BaseHourlyRate.InexactFloat64(),
		OvertimeMultiplier:   r.OvertimeMultiplier.InexactFloat64(),
		LatePenaltyPerMinute: r.LatePenaltyPerMinute.InexactFloat64(),
		BreakDeductionMode:   r.BreakDeductionMode,
	}
}

// EmployeeSalaryRule - Employee joined with the rule assigned to them
type EmployeeSalaryRule struct {
	EmployeeID   string
	EmployeeName string
	Rule         SalaryRule
}

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft     RunStatus = "draft"
	RunStatusFinalized RunStatus = "finalized"
)

// PayrollRun - One payroll generation over a period of shift dates
type PayrollRun struct {
	ID            string
	CompanyID     string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Status        RunStatus
	EmployeeCount int
	TotalFinalPay decimal.Decimal
	GeneratedBy   *string
	FinalizedAt   *time.Time
	FinalizedBy   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []PayrollItem
}

// PayrollItem - Computed pay for one employee within a run
type PayrollItem struct {
	ID           string
	RunID        string
	EmployeeID   string
	SalaryRuleID string
	Rule         PayrollRuleSnapshot

	SessionCount    int
	WorkedMinutes   int
	BreakMinutes    int
	OvertimeMinutes int
	LateMinutes     int
	PayableMinutes  int
	RegularMinutes  int

	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	GrossPay    decimal.Decimal
	LatePenalty decimal.Decimal
	FinalPay    decimal.Decimal

	CreatedAt time.Time

	// Joined fields
	EmployeeName *string
}

// AttendanceSummary - Aggregate of closed duty sessions by shift date
type AttendanceSummary struct {
	EmployeeID   string
	EmployeeName string
	SessionCount int
	LateCount    int
	MinuteTotals
}
