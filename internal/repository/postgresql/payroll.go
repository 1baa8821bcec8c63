package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SALARY RULES ==========

func (r *payrollRepository) CreateRule(ctx context.Context, rule payroll.SalaryRule) (payroll.SalaryRule, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return payroll.SalaryRule{}, err
	}

	query := `
		INSERT INTO salary_rules (id, company_id, name, base_hourly_rate, overtime_multiplier, late_penalty_per_minute, break_deduction_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		id, rule.CompanyID, rule.Name, rule.BaseHourlyRate, rule.OvertimeMultiplier, rule.LatePenaltyPerMinute, string(rule.BreakDeductionMode),
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_salary_rule_name") {
			return payroll.SalaryRule{}, payroll.ErrSalaryRuleNameExists
		}
		return payroll.SalaryRule{}, fmt.Errorf("failed to create salary rule: %w", err)
	}

	return rule, nil
}

func (r *payrollRepository) GetRuleByID(ctx context.Context, id string, companyID string) (payroll.SalaryRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, base_hourly_rate, overtime_multiplier, late_penalty_per_minute,
			   break_deduction_mode, created_at, updated_at
		FROM salary_rules
		WHERE id = $1 AND company_id = $2
	`

	var rule payroll.SalaryRule
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&rule.ID, &rule.CompanyID, &rule.Name, &rule.BaseHourlyRate, &rule.OvertimeMultiplier, &rule.LatePenaltyPerMinute,
		&rule.BreakDeductionMode, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRule{}, payroll.ErrSalaryRuleNotFound
		}
		return payroll.SalaryRule{}, fmt.Errorf("failed to get salary rule: %w", err)
	}

	return rule, nil
}

func (r *payrollRepository) ListRules(ctx context.Context, companyID string) ([]payroll.SalaryRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, base_hourly_rate, overtime_multiplier, late_penalty_per_minute,
			   break_deduction_mode, created_at, updated_at
		FROM salary_rules
		WHERE company_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary rules: %w", err)
	}
	defer rows.Close()

	var rules []payroll.SalaryRule
	for rows.Next() {
		var rule payroll.SalaryRule
		if err := rows.Scan(
			&rule.ID, &rule.CompanyID, &rule.Name, &rule.BaseHourlyRate, &rule.OvertimeMultiplier, &rule.LatePenaltyPerMinute,
			&rule.BreakDeductionMode, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func (r *payrollRepository) AssignRuleToEmployee(ctx context.Context, ruleID, employeeID, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET salary_rule_id = $1, updated_at = NOW()
		WHERE id = $2 AND company_id = $3
	`

	result, err := q.Exec(ctx, query, ruleID, employeeID, companyID)
	if err != nil {
		return fmt.Errorf("failed to assign salary rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrEmployeeNotFound
	}
	return nil
}

// ListEmployeeRules returns every employee of the company that has a salary rule.
func (r *payrollRepository) ListEmployeeRules(ctx context.Context, companyID string) ([]payroll.EmployeeSalaryRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.full_name,
			   sr.id, sr.company_id, sr.name, sr.base_hourly_rate, sr.overtime_multiplier, sr.late_penalty_per_minute,
			   sr.break_deduction_mode, sr.created_at, sr.updated_at
		FROM employees e
		JOIN salary_rules sr ON sr.id = e.salary_rule_id
		WHERE e.company_id = $1
		ORDER BY e.full_name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee salary rules: %w", err)
	}
	defer rows.Close()

	var result []payroll.EmployeeSalaryRule
	for rows.Next() {
		var er payroll.EmployeeSalaryRule
		if err := rows.Scan(
			&er.EmployeeID, &er.EmployeeName,
			&er.Rule.ID, &er.Rule.CompanyID, &er.Rule.Name, &er.Rule.BaseHourlyRate, &er.Rule.OvertimeMultiplier,
			&er.Rule.LatePenaltyPerMinute, &er.Rule.BreakDeductionMode, &er.Rule.CreatedAt, &er.Rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee salary rule: %w", err)
		}
		result = append(result, er)
	}

	return result, rows.Err()
}

// ========== RUNS ==========

const payrollRunColumns = `
	id, company_id, period_start, period_end, status, employee_count, total_final_pay,
	generated_by, finalized_at, finalized_by, created_at, updated_at
`

func scanPayrollRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.PeriodStart, &run.PeriodEnd, &run.Status, &run.EmployeeCount, &run.TotalFinalPay,
		&run.GeneratedBy, &run.FinalizedAt, &run.FinalizedBy, &run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	query := `
		INSERT INTO payroll_runs (id, company_id, period_start, period_end, status, employee_count, total_final_pay, generated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		id, run.CompanyID, run.PeriodStart, run.PeriodEnd, string(run.Status), run.EmployeeCount, run.TotalFinalPay, run.GeneratedBy,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_run_period") {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) CreateItem(ctx context.Context, item payroll.PayrollItem) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return payroll.PayrollItem{}, err
	}

	query := `
		INSERT INTO payroll_items (
			id, run_id, company_id, employee_id, salary_rule_id,
			base_hourly_rate, overtime_multiplier, late_penalty_per_minute, break_deduction_mode,
			session_count, worked_minutes, break_minutes, overtime_minutes, late_minutes,
			payable_minutes, regular_minutes,
			regular_pay, overtime_pay, gross_pay, late_penalty, final_pay
		)
		VALUES (
			$1, $2, (SELECT company_id FROM payroll_runs WHERE id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query,
		id, item.RunID, item.EmployeeID, item.SalaryRuleID,
		item.Rule.BaseHourlyRate, item.Rule.OvertimeMultiplier, item.Rule.LatePenaltyPerMinute, string(item.Rule.BreakDeductionMode),
		item.SessionCount, item.WorkedMinutes, item.BreakMinutes, item.OvertimeMinutes, item.LateMinutes,
		item.PayableMinutes, item.RegularMinutes,
		item.RegularPay, item.OvertimePay, item.GrossPay, item.LatePenalty, item.FinalPay,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return payroll.PayrollItem{}, fmt.Errorf("failed to create payroll item: %w", err)
	}

	return item, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	items, err := r.listItems(ctx, q, `WHERE pi.run_id = $1 AND pi.company_id = $2 ORDER BY e.full_name ASC`, id, companyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	run.Items = items

	return run, nil
}

func (r *payrollRepository) GetRunByPeriod(ctx context.Context, companyID string, start, end time.Time) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs WHERE company_id = $1 AND period_start = $2 AND period_end = $3`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, companyID, start, end))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string, filter payroll.PayrollRunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payroll_runs WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND EXTRACT(YEAR FROM period_start) = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY period_start DESC LIMIT $%d OFFSET $%d`,
		payrollRunColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanPayrollRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, totalCount, nil
}

func (r *payrollRepository) FinalizeRun(ctx context.Context, id, companyID, finalizedBy string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	var by *string
	if finalizedBy != "" {
		by = &finalizedBy
	}

	query := `
		UPDATE payroll_runs
		SET status = 'finalized', finalized_at = $3, finalized_by = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'draft'
	`

	result, err := q.Exec(ctx, query, id, companyID, at, by)
	if err != nil {
		return fmt.Errorf("failed to finalize payroll run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrPayrollRunFinalized
	}
	return nil
}

func (r *payrollRepository) DeleteRun(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_runs WHERE id = $1 AND company_id = $2 AND status = 'draft'`

	result, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrCannotDeleteFinalizedRun
	}
	return nil
}

// ========== ITEMS ==========

func (r *payrollRepository) GetItem(ctx context.Context, runID, employeeID, companyID string) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	items, err := r.listItems(ctx, q, `WHERE pi.run_id = $1 AND pi.employee_id = $2 AND pi.company_id = $3`, runID, employeeID, companyID)
	if err != nil {
		return payroll.PayrollItem{}, err
	}
	if len(items) == 0 {
		return payroll.PayrollItem{}, payroll.ErrPayrollItemNotFound
	}
	return items[0], nil
}

func (r *payrollRepository) listItems(ctx context.Context, q database.Querier, where string, args ...interface{}) ([]payroll.PayrollItem, error) {
	query := `
		SELECT pi.id, pi.run_id, pi.employee_id, pi.salary_rule_id,
			   pi.base_hourly_rate, pi.overtime_multiplier, pi.late_penalty_per_minute, pi.break_deduction_mode,
			   pi.session_count, pi.worked_minutes, pi.break_minutes, pi.overtime_minutes, pi.late_minutes,
			   pi.payable_minutes, pi.regular_minutes,
			   pi.regular_pay, pi.overtime_pay, pi.gross_pay, pi.late_penalty, pi.final_pay,
			   pi.created_at, e.full_name
		FROM payroll_items pi
		LEFT JOIN employees e ON e.id = pi.employee_id
	` + where

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PayrollItem
	for rows.Next() {
		var it payroll.PayrollItem
		if err := rows.Scan(
			&it.ID, &it.RunID, &it.EmployeeID, &it.SalaryRuleID,
			&it.Rule.BaseHourlyRate, &it.Rule.OvertimeMultiplier, &it.Rule.LatePenaltyPerMinute, &it.Rule.BreakDeductionMode,
			&it.SessionCount, &it.WorkedMinutes, &it.BreakMinutes, &it.OvertimeMinutes, &it.LateMinutes,
			&it.PayableMinutes, &it.RegularMinutes,
			&it.RegularPay, &it.OvertimePay, &it.GrossPay, &it.LatePenalty, &it.FinalPay,
			&it.CreatedAt, &it.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll items: %w", err)
	}

	return items, nil
}
