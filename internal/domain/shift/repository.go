package shift

import "context"

// ShiftPresetRepository defines data access for presets and their segments.
// All methods include companyID to keep tenants isolated.
type ShiftPresetRepository interface {
	Create(ctx context.Context, preset ShiftPreset) (ShiftPreset, error)
	GetByID(ctx context.Context, id string, companyID string) (ShiftPreset, error)
	List(ctx context.Context, companyID string, filter ShiftPresetFilter) ([]ShiftPreset, int64, error)
	Delete(ctx context.Context, id string, companyID string) error
	AssignToEmployee(ctx context.Context, presetID, employeeID, companyID string) error

	// GetForTeam returns the preset scoped to a team, if any.
	GetForTeam(ctx context.Context, teamID string, companyID string) (ShiftPreset, error)
}

// WorkContextRepository reads the employee attributes shift resolution depends on.
type WorkContextRepository interface {
	GetWorkContext(ctx context.Context, employeeID string, companyID string) (WorkContext, error)
}
