package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewWorkContextRepository(db *database.DB) shift.WorkContextRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetWorkContext implements shift.WorkContextRepository.
func (e *employeeRepositoryImpl) GetWorkContext(ctx context.Context, employeeID string, companyID string) (shift.WorkContext, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, company_id, time_zone, shift_preset_id, team_id
		FROM employees
		WHERE id = $1 AND company_id = $2
	`

	var wc shift.WorkContext
	err := q.QueryRow(ctx, query, employeeID, companyID).Scan(
		&wc.EmployeeID, &wc.CompanyID, &wc.TimeZone, &wc.ShiftPresetID, &wc.TeamID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.WorkContext{}, shift.ErrEmployeeNotFound
		}
		return shift.WorkContext{}, fmt.Errorf("failed to get work context for employee %s: %w", employeeID, err)
	}

	return wc, nil
}
