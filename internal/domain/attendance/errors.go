package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyOnDuty = errors.New("you are already on duty")
	ErrNotOnDuty     = errors.New("you are not on duty")

	// Break errors
	ErrBreakAlreadyOpen      = errors.New("a break is already in progress")
	ErrNoOpenBreak           = errors.New("no break in progress")
	ErrBreakPolicyNotFound   = errors.New("break policy not found")
	ErrBreakPolicyNameExists = errors.New("break policy with this name already exists")
)
