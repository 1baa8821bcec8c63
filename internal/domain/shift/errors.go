package shift

import "errors"

var (
	ErrShiftPresetNotFound    = errors.New("shift preset not found")
	ErrShiftPresetNameExists  = errors.New("shift preset with this name already exists")
	ErrShiftPresetInUse       = errors.New("shift preset is referenced by duty sessions")
	ErrNoActiveSegment        = errors.New("no shift currently scheduled")
	ErrNoShiftPresetAssigned  = errors.New("no shift preset assigned to employee")
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrDuplicateSegmentNumber = errors.New("duplicate segment number in preset")
)
