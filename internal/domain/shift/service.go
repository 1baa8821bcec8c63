package shift

import (
	"context"
	"time"
)

type ShiftService interface {
	CreatePreset(ctx context.Context, req CreateShiftPresetRequest) (ShiftPresetResponse, error)
	GetPreset(ctx context.Context, id string) (ShiftPresetResponse, error)
	ListPresets(ctx context.Context, filter ShiftPresetFilter) (ListShiftPresetResponse, error)
	DeletePreset(ctx context.Context, id string) error
	AssignPreset(ctx context.Context, req AssignShiftPresetRequest) error

	// GetActiveSegment resolves the authenticated employee's segment for the current instant.
	GetActiveSegment(ctx context.Context) (ResolvedShiftSegmentResponse, error)

	// ResolveAt resolves an employee's segment at an arbitrary instant. It returns
	// ErrNoActiveSegment when nothing is scheduled.
	ResolveAt(ctx context.Context, companyID, employeeID string, at time.Time) (ResolvedShiftSegment, WorkContext, error)

	// ExportCalendar renders the caller's upcoming shifts as an iCalendar document.
	ExportCalendar(ctx context.Context, req ShiftCalendarRequest) ([]byte, error)
}
