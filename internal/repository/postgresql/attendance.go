package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const dutySessionSelect = `
	SELECT ds.id, ds.company_id, ds.employee_id, ds.shift_preset_id, ds.segment_id, ds.segment_no,
		   ds.time_zone, ds.shift_date::text, ds.schedule_start_local, ds.schedule_end_local, ds.scheduled_minutes,
		   ds.punch_on_at, ds.punch_off_at, ds.is_late, ds.late_minutes, ds.worked_minutes, ds.overtime_minutes,
		   ds.status,
		   ds.punch_on_server_received_at, ds.punch_on_source, ds.punch_on_trust_level,
		   ds.punch_on_skew_minutes, ds.punch_on_anomaly,
		   ds.punch_off_server_received_at, ds.punch_off_source, ds.punch_off_trust_level,
		   ds.punch_off_skew_minutes, ds.punch_off_anomaly,
		   ds.created_at, ds.updated_at,
		   e.full_name
	FROM duty_sessions ds
	LEFT JOIN employees e ON e.id = ds.employee_id
`

type attendanceRepository struct {
	db *database.DB
}

func NewDutySessionRepository(db *database.DB) attendance.DutySessionRepository {
	return &attendanceRepository{db: db}
}

func scanDutySession(row pgx.Row) (attendance.DutySession, error) {
	var s attendance.DutySession
	var on, off eventColumns

	dest := []any{
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.ShiftPresetID, &s.SegmentID, &s.SegmentNo,
		&s.TimeZone, &s.ShiftDate, &s.ScheduleStartLocal, &s.ScheduleEndLocal, &s.ScheduledMinutes,
		&s.PunchOnAt, &s.PunchOffAt, &s.IsLate, &s.LateMinutes, &s.WorkedMinutes, &s.OvertimeMinutes,
		&s.Status,
	}
	dest = append(dest, on.dest()...)
	dest = append(dest, off.dest()...)
	dest = append(dest, &s.CreatedAt, &s.UpdatedAt, &s.EmployeeName)

	if err := row.Scan(dest...); err != nil {
		return attendance.DutySession{}, err
	}

	if ev := on.context(&s.PunchOnAt); ev != nil {
		s.PunchOnEvent = *ev
	}
	s.PunchOffEvent = off.context(s.PunchOffAt)
	return s, nil
}

// CreateIfNoneOpen implements attendance.DutySessionRepository.
// The partial unique index on open sessions turns a concurrent second punch-on into a no-op.
func (a *attendanceRepository) CreateIfNoneOpen(ctx context.Context, session attendance.DutySession) (attendance.DutySession, error) {
	q := GetQuerier(ctx, a.db)

	id, err := newID()
	if err != nil {
		return attendance.DutySession{}, err
	}

	query := `
		INSERT INTO duty_sessions (
			id, company_id, employee_id, shift_preset_id, segment_id, segment_no,
			time_zone, shift_date, schedule_start_local, schedule_end_local, scheduled_minutes,
			punch_on_at, is_late, late_minutes, status,
			punch_on_server_received_at, punch_on_source, punch_on_trust_level,
			punch_on_skew_minutes, punch_on_anomaly
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		ON CONFLICT (employee_id) WHERE status = 'open' DO NOTHING
		RETURNING id, created_at, updated_at
	`

	args := []any{
		id, session.CompanyID, session.EmployeeID, session.ShiftPresetID, session.SegmentID, session.SegmentNo,
		session.TimeZone, session.ShiftDate, session.ScheduleStartLocal, session.ScheduleEndLocal, session.ScheduledMinutes,
		session.PunchOnAt, session.IsLate, session.LateMinutes, string(attendance.SessionStatusOpen),
	}
	args = append(args, eventArgs(&session.PunchOnEvent)...)

	err = q.QueryRow(ctx, query, args...).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DutySession{}, attendance.ErrAlreadyOnDuty
		}
		return attendance.DutySession{}, fmt.Errorf("failed to create duty session: %w", err)
	}

	session.Status = attendance.SessionStatusOpen
	return session, nil
}

// GetOpenSession implements attendance.DutySessionRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, companyID string) (attendance.DutySession, error) {
	q := GetQuerier(ctx, a.db)

	query := dutySessionSelect + `
		WHERE ds.employee_id = $1 AND ds.company_id = $2 AND ds.status = 'open'
		LIMIT 1
	`

	s, err := scanDutySession(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DutySession{}, attendance.ErrNotOnDuty
		}
		return attendance.DutySession{}, fmt.Errorf("failed to get open duty session: %w", err)
	}
	return s, nil
}

// Close implements attendance.DutySessionRepository.
func (a *attendanceRepository) Close(ctx context.Context, session attendance.DutySession) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE duty_sessions
		SET punch_off_at = $3, worked_minutes = $4, overtime_minutes = $5, status = $6,
			punch_off_server_received_at = $7, punch_off_source = $8, punch_off_trust_level = $9,
			punch_off_skew_minutes = $10, punch_off_anomaly = $11,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'open'
	`

	args := []any{
		session.ID, session.CompanyID, session.PunchOffAt, session.WorkedMinutes, session.OvertimeMinutes, string(session.Status),
	}
	args = append(args, eventArgs(session.PunchOffEvent)...)

	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to close duty session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return attendance.ErrNotOnDuty
	}
	return nil
}

// List implements attendance.DutySessionRepository.
func (a *attendanceRepository) List(ctx context.Context, companyID string, filter attendance.DutySessionFilter) ([]attendance.DutySession, int64, error) {
	q := GetQuerier(ctx, a.db)

	where := ` WHERE ds.company_id = $1`
	args := []any{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND ds.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND ds.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND ds.shift_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND ds.shift_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM duty_sessions ds"+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count duty sessions: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	query := dutySessionSelect + where + fmt.Sprintf(`
		ORDER BY ds.shift_date DESC, ds.punch_on_at DESC
		LIMIT $%d OFFSET $%d
	`, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	sessions, err := a.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return sessions, totalCount, nil
}

// ListOpen implements attendance.DutySessionRepository.
func (a *attendanceRepository) ListOpen(ctx context.Context) ([]attendance.DutySession, error) {
	q := GetQuerier(ctx, a.db)

	query := dutySessionSelect + `
		WHERE ds.status = 'open'
		ORDER BY ds.shift_date ASC, ds.punch_on_at ASC
	`
	return a.query(ctx, q, query)
}

func (a *attendanceRepository) query(ctx context.Context, q database.Querier, query string, args ...any) ([]attendance.DutySession, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list duty sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.DutySession
	for rows.Next() {
		s, err := scanDutySession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duty session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duty sessions: %w", err)
	}
	return sessions, nil
}
