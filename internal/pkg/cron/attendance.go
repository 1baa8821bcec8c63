package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
)

const AutoCloseStaleDutySessions = "auto_close_stale_duty_sessions"

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
	grace             time.Duration
	now               func() time.Time
	logger            *slog.Logger
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval, grace time.Duration, logger *slog.Logger) *AttendanceJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
		grace:             grace,
		now:               time.Now,
		logger:            logger,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(AutoCloseStaleDutySessions, j.interval, j.AutoCloseStaleDutySessions)
}

// AutoCloseStaleDutySessions closes duty sessions nobody punched off from once
// their scheduled end is older than the grace period.
func (j *AttendanceJobs) AutoCloseStaleDutySessions(ctx context.Context) error {
	now := j.now().UTC()
	j.logger.Info("Cron: Starting auto-close stale duty sessions job", "now", now, "grace", j.grace)

	closed, err := j.attendanceService.AutoCloseStaleSessions(ctx, now, j.grace)
	if err != nil {
		return fmt.Errorf("failed to auto-close stale duty sessions: %w", err)
	}

	if closed == 0 {
		j.logger.Info("Cron: No stale duty sessions found")
		return nil
	}

	j.logger.Info("Cron: Auto-closed stale duty sessions", "count", closed)
	return nil
}
