package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftPresetRepository struct {
	db         *database.DB
	transactor Transactor
}

func NewShiftPresetRepository(db *database.DB) shift.ShiftPresetRepository {
	return &shiftPresetRepository{db: db, transactor: NewTransactor(db)}
}

// Create inserts the preset and all of its segments atomically.
func (r *shiftPresetRepository) Create(ctx context.Context, preset shift.ShiftPreset) (shift.ShiftPreset, error) {
	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		id, err := newID()
		if err != nil {
			return err
		}

		query := `
			INSERT INTO shift_presets (id, company_id, name, team_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`
		err = q.QueryRow(ctx, query, id, preset.CompanyID, preset.Name, preset.TeamID).
			Scan(&preset.ID, &preset.CreatedAt, &preset.UpdatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "uk_shift_preset_name") {
				return shift.ErrShiftPresetNameExists
			}
			return fmt.Errorf("failed to create shift preset: %w", err)
		}

		for i := range preset.Segments {
			seg := &preset.Segments[i]
			segID, err := newID()
			if err != nil {
				return err
			}

			segQuery := `
				INSERT INTO shift_segments (id, preset_id, segment_no, start_time, end_time, crosses_midnight, late_grace_minutes)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, created_at, updated_at
			`
			err = q.QueryRow(ctx, segQuery,
				segID, preset.ID, seg.SegmentNo, seg.StartTime, seg.EndTime, seg.CrossesMidnight, seg.LateGraceMinutes,
			).Scan(&seg.ID, &seg.CreatedAt, &seg.UpdatedAt)
			if err != nil {
				if strings.Contains(err.Error(), "uk_shift_segment_no") {
					return shift.ErrDuplicateSegmentNumber
				}
				return fmt.Errorf("failed to create shift segment %d: %w", seg.SegmentNo, err)
			}
			seg.PresetID = preset.ID
		}
		return nil
	})
	if err != nil {
		return shift.ShiftPreset{}, err
	}
	return preset, nil
}

func (r *shiftPresetRepository) GetByID(ctx context.Context, id string, companyID string) (shift.ShiftPreset, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, team_id, created_at, updated_at
		FROM shift_presets
		WHERE id = $1 AND company_id = $2
	`

	var p shift.ShiftPreset
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.TeamID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ShiftPreset{}, shift.ErrShiftPresetNotFound
		}
		return shift.ShiftPreset{}, fmt.Errorf("failed to get shift preset: %w", err)
	}

	if err := r.attachSegments(ctx, q, []*shift.ShiftPreset{&p}); err != nil {
		return shift.ShiftPreset{}, err
	}
	return p, nil
}

func (r *shiftPresetRepository) GetForTeam(ctx context.Context, teamID string, companyID string) (shift.ShiftPreset, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, team_id, created_at, updated_at
		FROM shift_presets
		WHERE team_id = $1 AND company_id = $2
		ORDER BY created_at
		LIMIT 1
	`

	var p shift.ShiftPreset
	err := q.QueryRow(ctx, query, teamID, companyID).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.TeamID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ShiftPreset{}, shift.ErrShiftPresetNotFound
		}
		return shift.ShiftPreset{}, fmt.Errorf("failed to get team shift preset: %w", err)
	}

	if err := r.attachSegments(ctx, q, []*shift.ShiftPreset{&p}); err != nil {
		return shift.ShiftPreset{}, err
	}
	return p, nil
}

func (r *shiftPresetRepository) List(ctx context.Context, companyID string, filter shift.ShiftPresetFilter) ([]shift.ShiftPreset, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM shift_presets sp
		WHERE sp.company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Name != nil {
		baseQuery += fmt.Sprintf(" AND sp.name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.Name+"%")
		argIdx++
	}
	if filter.TeamID != nil {
		baseQuery += fmt.Sprintf(" AND sp.team_id = $%d", argIdx)
		args = append(args, *filter.TeamID)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count shift presets: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT sp.id, sp.company_id, sp.name, sp.team_id, sp.created_at, sp.updated_at
		%s
		ORDER BY sp.name ASC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shift presets: %w", err)
	}
	defer rows.Close()

	var presets []shift.ShiftPreset
	for rows.Next() {
		var p shift.ShiftPreset
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.TeamID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift preset: %w", err)
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate shift presets: %w", err)
	}

	ptrs := make([]*shift.ShiftPreset, len(presets))
	for i := range presets {
		ptrs[i] = &presets[i]
	}
	if err := r.attachSegments(ctx, q, ptrs); err != nil {
		return nil, 0, err
	}

	return presets, totalCount, nil
}

// attachSegments loads segments for all presets in one query, ordered by segment number.
func (r *shiftPresetRepository) attachSegments(ctx context.Context, q database.Querier, presets []*shift.ShiftPreset) error {
	if len(presets) == 0 {
		return nil
	}

	byID := make(map[string]*shift.ShiftPreset, len(presets))
	ids := make([]string, 0, len(presets))
	for _, p := range presets {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := `
		SELECT id, preset_id, segment_no, start_time, end_time, crosses_midnight, late_grace_minutes, created_at, updated_at
		FROM shift_segments
		WHERE preset_id = ANY($1)
		ORDER BY preset_id, segment_no
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to get shift segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s shift.ShiftSegment
		if err := rows.Scan(
			&s.ID, &s.PresetID, &s.SegmentNo, &s.StartTime, &s.EndTime, &s.CrossesMidnight, &s.LateGraceMinutes,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan shift segment: %w", err)
		}
		if p, ok := byID[s.PresetID]; ok {
			p.Segments = append(p.Segments, s)
		}
	}
	return rows.Err()
}

func (r *shiftPresetRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM shift_presets WHERE id = $1 AND company_id = $2`

	result, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		if strings.Contains(err.Error(), "fk_duty_session_preset") {
			return shift.ErrShiftPresetInUse
		}
		return fmt.Errorf("failed to delete shift preset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shift.ErrShiftPresetNotFound
	}
	return nil
}

func (r *shiftPresetRepository) AssignToEmployee(ctx context.Context, presetID, employeeID, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees e
		SET shift_preset_id = sp.id, updated_at = NOW()
		FROM shift_presets sp
		WHERE sp.id = $1 AND sp.company_id = $3
		  AND e.id = $2 AND e.company_id = $3
	`

	result, err := q.Exec(ctx, query, presetID, employeeID, companyID)
	if err != nil {
		return fmt.Errorf("failed to assign shift preset: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM shift_presets WHERE id = $1 AND company_id = $2)`, presetID, companyID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check shift preset: %w", err)
	}
	if !exists {
		return shift.ErrShiftPresetNotFound
	}
	return shift.ErrEmployeeNotFound
}
