// Package app assembles repositories and services for the binaries under cmd/.
package app

import (
	"log/slog"

	"github.com/cmlabs-hris/shift-payroll-go/internal/config"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/report"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/shift-payroll-go/internal/service/attendance"
	eventtimeService "github.com/cmlabs-hris/shift-payroll-go/internal/service/eventtime"
	payrollService "github.com/cmlabs-hris/shift-payroll-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/shift-payroll-go/internal/service/report"
	shiftService "github.com/cmlabs-hris/shift-payroll-go/internal/service/shift"
)

type Services struct {
	JWT        jwt.Service
	Shift      shift.ShiftService
	Attendance attendance.AttendanceService
	Payroll    payroll.PayrollService
	Report     report.ReportService

	ShiftPresets shift.ShiftPresetRepository
}

func NewServices(cfg *config.Config, db *database.DB) *Services {
	transactor := postgresql.NewTransactor(db)

	shiftPresetRepo := postgresql.NewShiftPresetRepository(db)
	workContextRepo := postgresql.NewWorkContextRepository(db)
	dutySessionRepo := postgresql.NewDutySessionRepository(db)
	breakSessionRepo := postgresql.NewBreakSessionRepository(db)
	breakPolicyRepo := postgresql.NewBreakPolicyRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	summaryRepo := postgresql.NewAttendanceSummaryRepository(db)

	resolver := eventtimeService.NewResolver(cfg.EventTime)
	shiftSvc := shiftService.NewShiftService(shiftPresetRepo, workContextRepo)

	return &Services{
		JWT:   jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
		Shift: shiftSvc,
		Attendance: attendanceService.NewAttendanceService(
			transactor,
			dutySessionRepo,
			breakSessionRepo,
			breakPolicyRepo,
			shiftSvc,
			resolver,
		),
		Payroll:      payrollService.NewPayrollService(transactor, payrollRepo, summaryRepo),
		Report:       reportService.NewReportService(summaryRepo),
		ShiftPresets: shiftPresetRepo,
	}
}

// NewScheduler registers every background job on a fresh scheduler.
func (s *Services) NewScheduler(cfg *config.Config, logger *slog.Logger) *cron.Scheduler {
	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(s.Attendance, cfg.Jobs.AutoCloseEvery, cfg.Jobs.AutoCloseGrace, logger).RegisterJobs(scheduler)
	return scheduler
}
