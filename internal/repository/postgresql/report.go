package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

// NewAttendanceSummaryRepository backs both payroll runs and the monthly attendance report.
func NewAttendanceSummaryRepository(db *database.DB) payroll.AttendanceSummarizer {
	return &reportRepositoryImpl{db: db}
}

// SummarizeAttendance totals closed and auto-closed duty sessions whose shift date lies in
// [start, end]. Break minutes count only breaks without a policy or under an unpaid policy.
func (r *reportRepositoryImpl) SummarizeAttendance(ctx context.Context, companyID string, start, end time.Time) ([]payroll.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			ds.employee_id,
			e.full_name,
			COUNT(*) AS session_count,
			COUNT(*) FILTER (WHERE ds.is_late) AS late_count,
			COALESCE(SUM(ds.worked_minutes), 0) AS worked_minutes,
			COALESCE(SUM(b.break_minutes), 0) AS break_minutes,
			COALESCE(SUM(ds.overtime_minutes), 0) AS overtime_minutes,
			COALESCE(SUM(ds.late_minutes), 0) AS late_minutes
		FROM duty_sessions ds
		JOIN employees e ON e.id = ds.employee_id
		LEFT JOIN LATERAL (
			SELECT SUM(bs.minutes) AS break_minutes
			FROM break_sessions bs
			LEFT JOIN break_policies bp ON bp.id = bs.policy_id
			WHERE bs.duty_session_id = ds.id
			  AND bs.ended_at IS NOT NULL
			  AND COALESCE(bp.is_paid, FALSE) = FALSE
		) b ON TRUE
		WHERE ds.company_id = $1
		  AND ds.status <> 'open'
		  AND ds.shift_date BETWEEN $2 AND $3
		GROUP BY ds.employee_id, e.full_name
		ORDER BY e.full_name ASC
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	defer rows.Close()

	var summaries []payroll.AttendanceSummary
	for rows.Next() {
		var s payroll.AttendanceSummary
		if err := rows.Scan(
			&s.EmployeeID, &s.EmployeeName, &s.SessionCount, &s.LateCount,
			&s.Worked, &s.Break, &s.Overtime, &s.Late,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance summaries: %w", err)
	}

	return summaries, nil
}
