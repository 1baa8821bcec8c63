package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access.
type PayrollRepository interface {
	// Salary rules
	CreateRule(ctx context.Context, rule SalaryRule) (SalaryRule, error)
	GetRuleByID(ctx context.Context, id string, companyID string) (SalaryRule, error)
	ListRules(ctx context.Context, companyID string) ([]SalaryRule, error)
	AssignRuleToEmployee(ctx context.Context, ruleID, employeeID, companyID string) error
	ListEmployeeRules(ctx context.Context, companyID string) ([]EmployeeSalaryRule, error)

	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	CreateItem(ctx context.Context, item PayrollItem) (PayrollItem, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	GetRunByPeriod(ctx context.Context, companyID string, start, end time.Time) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter PayrollRunFilter) ([]PayrollRun, int64, error)
	FinalizeRun(ctx context.Context, id, companyID, finalizedBy string, at time.Time) error
	DeleteRun(ctx context.Context, id string, companyID string) error
	GetItem(ctx context.Context, runID, employeeID, companyID string) (PayrollItem, error)
}

// AttendanceSummarizer aggregates closed duty sessions whose shift date lies in [start, end].
type AttendanceSummarizer interface {
	SummarizeAttendance(ctx context.Context, companyID string, start, end time.Time) ([]AttendanceSummary, error)
}
