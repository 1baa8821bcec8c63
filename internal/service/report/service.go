package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/report"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
)

type ReportServiceImpl struct {
	summarizer payroll.AttendanceSummarizer
	now        func() time.Time
}

func NewReportService(summarizer payroll.AttendanceSummarizer) report.ReportService {
	return &ReportServiceImpl{
		summarizer: summarizer,
		now:        time.Now,
	}
}

// GenerateMonthlyAttendanceReport totals closed duty sessions per employee for one calendar
// month of shift dates, using the same aggregation as payroll runs.
func (s *ReportServiceImpl) GenerateMonthlyAttendanceReport(ctx context.Context, req report.MonthlyAttendanceReportRequest) (report.MonthlyAttendanceReport, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyAttendanceReport{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return report.MonthlyAttendanceReport{}, err
	}

	periodStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	summaries, err := s.summarizer.SummarizeAttendance(ctx, claims.CompanyID, periodStart, periodEnd)
	if err != nil {
		return report.MonthlyAttendanceReport{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	var totals report.AttendanceSummary
	employees := make([]report.MonthlyAttendanceEmployee, 0, len(summaries))
	for _, sum := range summaries {
		row := report.MonthlyAttendanceEmployee{
			EmployeeID:   sum.EmployeeID,
			EmployeeName: sum.EmployeeName,
			Summary: report.AttendanceSummary{
				TotalSessions:        sum.SessionCount,
				TotalLateDays:        sum.LateCount,
				TotalWorkedMinutes:   sum.Worked,
				TotalWorkHours:       report.MinutesToHours(sum.Worked),
				TotalBreakMinutes:    sum.Break,
				TotalOvertimeMinutes: sum.Overtime,
				TotalLateMinutes:     sum.Late,
			},
		}
		totals.Add(row.Summary)
		employees = append(employees, row)
	}

	return report.MonthlyAttendanceReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		PeriodStart: periodStart.Format(localtime.DateLayout),
		PeriodEnd:   periodEnd.Format(localtime.DateLayout),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Totals:      totals,
		Employees:   employees,
	}, nil
}
