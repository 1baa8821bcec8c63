package payroll

import "context"

type PayrollService interface {
	CreateRule(ctx context.Context, req CreateSalaryRuleRequest) (SalaryRuleResponse, error)
	ListRules(ctx context.Context) ([]SalaryRuleResponse, error)
	AssignRule(ctx context.Context, req AssignSalaryRuleRequest) error

	GenerateRun(ctx context.Context, req GenerateRunRequest) (PayrollRunResponse, error)
	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter PayrollRunFilter) (ListPayrollRunResponse, error)
	FinalizeRun(ctx context.Context, id string) (PayrollRunResponse, error)
	DeleteRun(ctx context.Context, id string) error

	// Payslip renders one employee's item of a run as a PDF document.
	Payslip(ctx context.Context, runID, employeeID string) ([]byte, error)
}
