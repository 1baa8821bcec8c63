package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	transactor  postgresql.Transactor
	payrollRepo payroll.PayrollRepository
	summarizer  payroll.AttendanceSummarizer
	now         func() time.Time
}

func NewPayrollService(
	transactor postgresql.Transactor,
	payrollRepo payroll.PayrollRepository,
	summarizer payroll.AttendanceSummarizer,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		transactor:  transactor,
		payrollRepo: payrollRepo,
		summarizer:  summarizer,
		now:         time.Now,
	}
}

// ========== SALARY RULES ==========

func (s *PayrollServiceImpl) CreateRule(ctx context.Context, req payroll.CreateSalaryRuleRequest) (payroll.SalaryRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRuleResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryRuleResponse{}, err
	}

	created, err := s.payrollRepo.CreateRule(ctx, payroll.SalaryRule{
		CompanyID:            claims.CompanyID,
		Name:                 req.Name,
		BaseHourlyRate:       req.BaseHourlyRate,
		OvertimeMultiplier:   req.OvertimeMultiplier,
		LatePenaltyPerMinute: req.LatePenaltyPerMinute,
		BreakDeductionMode:   payroll.BreakDeductionMode(req.BreakDeductionMode),
	})
	if err != nil {
		return payroll.SalaryRuleResponse{}, err
	}
	return created.ToResponse(), nil
}

func (s *PayrollServiceImpl) ListRules(ctx context.Context) ([]payroll.SalaryRuleResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := s.payrollRepo.ListRules(ctx, claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary rules: %w", err)
	}

	responses := make([]payroll.SalaryRuleResponse, 0, len(rules))
	for _, r := range rules {
		responses = append(responses, r.ToResponse())
	}
	return responses, nil
}

func (s *PayrollServiceImpl) AssignRule(ctx context.Context, req payroll.AssignSalaryRuleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.payrollRepo.GetRuleByID(ctx, req.RuleID, claims.CompanyID); err != nil {
		return err
	}
	return s.payrollRepo.AssignRuleToEmployee(ctx, req.RuleID, req.EmployeeID, claims.CompanyID)
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) GenerateRun(ctx context.Context, req payroll.GenerateRunRequest) (payroll.PayrollRunResponse, error) {
	start, end, err := req.Validate()
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	_, err = s.payrollRepo.GetRunByPeriod(ctx, claims.CompanyID, start, end)
	if err == nil {
		return payroll.PayrollRunResponse{}, payroll.ErrPayrollRunAlreadyExists
	}
	if !errors.Is(err, payroll.ErrPayrollRunNotFound) {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to check existing payroll run: %w", err)
	}

	employeeRules, err := s.payrollRepo.ListEmployeeRules(ctx, claims.CompanyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get employee salary rules: %w", err)
	}
	if len(employeeRules) == 0 {
		return payroll.PayrollRunResponse{}, payroll.ErrNoEmployeesWithSalaryRule
	}

	summaries, err := s.summarizer.SummarizeAttendance(ctx, claims.CompanyID, start, end)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}
	summaryMap := make(map[string]payroll.AttendanceSummary, len(summaries))
	for _, sum := range summaries {
		summaryMap[sum.EmployeeID] = sum
	}

	items := make([]payroll.PayrollItem, 0, len(employeeRules))
	total := decimal.Zero
	for _, er := range employeeRules {
		summary := summaryMap[er.EmployeeID]
		item := buildItem(er, summary)
		total = total.Add(item.FinalPay)
		items = append(items, item)
	}

	var generatedBy *string
	if claims.UserID != "" {
		generatedBy = &claims.UserID
	}

	var run payroll.PayrollRun
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := s.payrollRepo.CreateRun(txCtx, payroll.PayrollRun{
			CompanyID:     claims.CompanyID,
			PeriodStart:   start,
			PeriodEnd:     end,
			Status:        payroll.RunStatusDraft,
			EmployeeCount: len(items),
			TotalFinalPay: total,
			GeneratedBy:   generatedBy,
		})
		if err != nil {
			return err
		}

		for _, item := range items {
			item.RunID = created.ID
			saved, err := s.payrollRepo.CreateItem(txCtx, item)
			if err != nil {
				return fmt.Errorf("failed to create payroll item for employee %s: %w", item.EmployeeID, err)
			}
			created.Items = append(created.Items, saved)
		}
		run = created
		return nil
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	slog.Info("payroll run generated",
		"run_id", run.ID,
		"company_id", claims.CompanyID,
		"employees", run.EmployeeCount,
		"total_final_pay", run.TotalFinalPay.StringFixed(2),
	)
	return run.ToResponse(), nil
}

// buildItem computes one employee's pay from their period summary.
func buildItem(er payroll.EmployeeSalaryRule, summary payroll.AttendanceSummary) payroll.PayrollItem {
	snapshot := er.Rule.Snapshot()
	result := ComputePayrollItem(summary.MinuteTotals, snapshot)

	name := er.EmployeeName
	return payroll.PayrollItem{
		EmployeeID:      er.EmployeeID,
		SalaryRuleID:    er.Rule.ID,
		Rule:            snapshot,
		SessionCount:    summary.SessionCount,
		WorkedMinutes:   result.WorkedMinutes,
		BreakMinutes:    result.BreakMinutes,
		OvertimeMinutes: result.OvertimeMinutes,
		LateMinutes:     result.LateMinutes,
		PayableMinutes:  result.PayableMinutes,
		RegularMinutes:  result.RegularMinutes,
		RegularPay:      decimal.NewFromFloat(result.RegularPay).Round(2),
		OvertimePay:     decimal.NewFromFloat(result.OvertimePay).Round(2),
		GrossPay:        decimal.NewFromFloat(result.GrossPay),
		LatePenalty:     decimal.NewFromFloat(result.LatePenalty),
		FinalPay:        decimal.NewFromFloat(result.FinalPay),
		EmployeeName:    &name,
	}
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, claims.CompanyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	return run.ToResponse(), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.PayrollRunFilter) (payroll.ListPayrollRunResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRunResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, err
	}

	runs, total, err := s.payrollRepo.ListRuns(ctx, claims.CompanyID, filter)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, fmt.Errorf("failed to list payroll runs: %w", err)
	}

	responses := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, r := range runs {
		responses = append(responses, r.ToResponse())
	}

	return payroll.ListPayrollRunResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Runs:       responses,
	}, nil
}

func (s *PayrollServiceImpl) FinalizeRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, claims.CompanyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if run.Status == payroll.RunStatusFinalized {
		return payroll.PayrollRunResponse{}, payroll.ErrPayrollRunFinalized
	}

	now := s.now()
	if err := s.payrollRepo.FinalizeRun(ctx, id, claims.CompanyID, claims.UserID, now); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run.Status = payroll.RunStatusFinalized
	run.FinalizedAt = &now
	run.FinalizedBy = &claims.UserID

	slog.Info("payroll run finalized", "run_id", id, "company_id", claims.CompanyID)
	return run.ToResponse(), nil
}

func (s *PayrollServiceImpl) DeleteRun(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, claims.CompanyID)
	if err != nil {
		return err
	}
	if run.Status == payroll.RunStatusFinalized {
		return payroll.ErrCannotDeleteFinalizedRun
	}

	return s.payrollRepo.DeleteRun(ctx, id, claims.CompanyID)
}

func (s *PayrollServiceImpl) Payslip(ctx context.Context, runID, employeeID string) ([]byte, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin && claims.EmployeeID != employeeID {
		return nil, payroll.ErrPayrollItemNotFound
	}

	run, err := s.payrollRepo.GetRunByID(ctx, runID, claims.CompanyID)
	if err != nil {
		return nil, err
	}
	item, err := s.payrollRepo.GetItem(ctx, runID, employeeID, claims.CompanyID)
	if err != nil {
		return nil, err
	}

	return RenderPayslip(run, item)
}
