package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type breakSessionRepository struct {
	db *database.DB
}

func NewBreakSessionRepository(db *database.DB) attendance.BreakSessionRepository {
	return &breakSessionRepository{db: db}
}

func (r *breakSessionRepository) CreateIfNoneOpen(ctx context.Context, b attendance.BreakSession) (attendance.BreakSession, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.BreakSession{}, err
	}

	query := `
		INSERT INTO break_sessions (
			id, company_id, duty_session_id, employee_id, policy_id, started_at,
			start_server_received_at, start_source, start_trust_level, start_skew_minutes, start_anomaly
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (duty_session_id) WHERE ended_at IS NULL DO NOTHING
		RETURNING id, created_at
	`

	args := []any{id, b.CompanyID, b.DutySessionID, b.EmployeeID, b.PolicyID, b.StartedAt}
	args = append(args, eventArgs(&b.StartEvent)...)

	err = q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BreakSession{}, attendance.ErrBreakAlreadyOpen
		}
		return attendance.BreakSession{}, fmt.Errorf("failed to create break session: %w", err)
	}
	return b, nil
}

func (r *breakSessionRepository) GetOpenBreak(ctx context.Context, dutySessionID string, companyID string) (attendance.BreakSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, duty_session_id, employee_id, policy_id, started_at, ended_at, minutes, is_over_limit,
			   start_server_received_at, start_source, start_trust_level, start_skew_minutes, start_anomaly,
			   created_at
		FROM break_sessions
		WHERE duty_session_id = $1 AND company_id = $2 AND ended_at IS NULL
		LIMIT 1
	`

	var b attendance.BreakSession
	var start eventColumns
	dest := []any{&b.ID, &b.CompanyID, &b.DutySessionID, &b.EmployeeID, &b.PolicyID, &b.StartedAt, &b.EndedAt, &b.Minutes, &b.IsOverLimit}
	dest = append(dest, start.dest()...)
	dest = append(dest, &b.CreatedAt)

	if err := q.QueryRow(ctx, query, dutySessionID, companyID).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BreakSession{}, attendance.ErrNoOpenBreak
		}
		return attendance.BreakSession{}, fmt.Errorf("failed to get open break: %w", err)
	}

	if ev := start.context(&b.StartedAt); ev != nil {
		b.StartEvent = *ev
	}
	return b, nil
}

func (r *breakSessionRepository) Close(ctx context.Context, b attendance.BreakSession) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE break_sessions
		SET ended_at = $3, minutes = $4, is_over_limit = $5,
			end_server_received_at = $6, end_source = $7, end_trust_level = $8,
			end_skew_minutes = $9, end_anomaly = $10
		WHERE id = $1 AND company_id = $2 AND ended_at IS NULL
	`

	args := []any{b.ID, b.CompanyID, b.EndedAt, b.Minutes, b.IsOverLimit}
	args = append(args, eventArgs(b.EndEvent)...)

	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to close break session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return attendance.ErrNoOpenBreak
	}
	return nil
}
