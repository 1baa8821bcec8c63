package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
)

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type MonthlyAttendanceReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyAttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyAttendanceReport struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`

	Totals    AttendanceSummary           `json:"totals"`
	Employees []MonthlyAttendanceEmployee `json:"employees"`
}

type MonthlyAttendanceEmployee struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`

	Summary AttendanceSummary `json:"summary"`
}

type AttendanceSummary struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalLateDays        int     `json:"total_late_days"`
	TotalWorkedMinutes   int     `json:"total_worked_minutes"`
	TotalWorkHours       float64 `json:"total_work_hours"`
	TotalBreakMinutes    int     `json:"total_break_minutes"`
	TotalOvertimeMinutes int     `json:"total_overtime_minutes"`
	TotalLateMinutes     int     `json:"total_late_minutes"`
}

// Add accumulates other into s, recomputing the hour figure from minutes.
func (s *AttendanceSummary) Add(other AttendanceSummary) {
	s.TotalSessions += other.TotalSessions
	s.TotalLateDays += other.TotalLateDays
	s.TotalWorkedMinutes += other.TotalWorkedMinutes
	s.TotalBreakMinutes += other.TotalBreakMinutes
	s.TotalOvertimeMinutes += other.TotalOvertimeMinutes
	s.TotalLateMinutes += other.TotalLateMinutes
	s.TotalWorkHours = MinutesToHours(s.TotalWorkedMinutes)
}

// MinutesToHours converts minutes to hours, truncated to two decimals.
func MinutesToHours(minutes int) float64 {
	return float64(minutes*100/60) / 100
}
