package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type breakPolicyRepository struct {
	db *database.DB
}

func NewBreakPolicyRepository(db *database.DB) attendance.BreakPolicyRepository {
	return &breakPolicyRepository{db: db}
}

func (r *breakPolicyRepository) Create(ctx context.Context, policy attendance.BreakPolicy) (attendance.BreakPolicy, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.BreakPolicy{}, err
	}

	query := `
		INSERT INTO break_policies (id, company_id, name, max_minutes, is_paid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query, id, policy.CompanyID, policy.Name, policy.MaxMinutes, policy.IsPaid).
		Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_break_policy_name") {
			return attendance.BreakPolicy{}, attendance.ErrBreakPolicyNameExists
		}
		return attendance.BreakPolicy{}, fmt.Errorf("failed to create break policy: %w", err)
	}
	return policy, nil
}

func (r *breakPolicyRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.BreakPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, max_minutes, is_paid, created_at, updated_at
		FROM break_policies
		WHERE id = $1 AND company_id = $2
	`

	var p attendance.BreakPolicy
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.MaxMinutes, &p.IsPaid, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BreakPolicy{}, attendance.ErrBreakPolicyNotFound
		}
		return attendance.BreakPolicy{}, fmt.Errorf("failed to get break policy: %w", err)
	}
	return p, nil
}

func (r *breakPolicyRepository) List(ctx context.Context, companyID string) ([]attendance.BreakPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, max_minutes, is_paid, created_at, updated_at
		FROM break_policies
		WHERE company_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list break policies: %w", err)
	}
	defer rows.Close()

	var policies []attendance.BreakPolicy
	for rows.Next() {
		var p attendance.BreakPolicy
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.MaxMinutes, &p.IsPaid, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan break policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
