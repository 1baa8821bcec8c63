package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrCompanyIDRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrEmployeeIDRequired):
		Forbidden(w, "This action requires an employee account")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyOnDuty):
		Conflict(w, "You are already on duty")
	case errors.Is(err, attendance.ErrNotOnDuty):
		Conflict(w, "You are not on duty")
	case errors.Is(err, attendance.ErrBreakAlreadyOpen):
		Conflict(w, "A break is already in progress")
	case errors.Is(err, attendance.ErrNoOpenBreak):
		Conflict(w, "No break in progress")
	case errors.Is(err, attendance.ErrBreakPolicyNotFound):
		NotFound(w, "Break policy not found")
	case errors.Is(err, attendance.ErrBreakPolicyNameExists):
		Conflict(w, "Break policy with this name already exists")

	// Shift domain errors
	case errors.Is(err, shift.ErrNoActiveSegment):
		writeError(w, http.StatusNotFound, "NO_ACTIVE_SEGMENT", "No shift currently scheduled", nil)
	case errors.Is(err, shift.ErrNoShiftPresetAssigned):
		UnprocessableEntity(w, "NO_SHIFT_PRESET", "No shift preset assigned to employee")
	case errors.Is(err, shift.ErrShiftPresetNotFound):
		NotFound(w, "Shift preset not found")
	case errors.Is(err, shift.ErrShiftPresetNameExists):
		Conflict(w, "Shift preset with this name already exists")
	case errors.Is(err, shift.ErrShiftPresetInUse):
		Conflict(w, "Shift preset is referenced by duty sessions")
	case errors.Is(err, shift.ErrDuplicateSegmentNumber):
		Conflict(w, "Duplicate segment number in preset")
	case errors.Is(err, shift.ErrEmployeeNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, localtime.ErrInvalidTimeFormat):
		UnprocessableEntity(w, "INVALID_SHIFT_CONFIGURATION", "Shift preset contains a malformed time, expected HH:mm")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSalaryRuleNotFound):
		NotFound(w, "Salary rule not found")
	case errors.Is(err, payroll.ErrSalaryRuleNameExists):
		Conflict(w, "Salary rule name already exists")
	case errors.Is(err, payroll.ErrPayrollRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPayrollItemNotFound):
		NotFound(w, "Payroll item not found")
	case errors.Is(err, payroll.ErrPayrollRunAlreadyExists):
		Conflict(w, "Payroll run already exists for this period")
	case errors.Is(err, payroll.ErrPayrollRunFinalized):
		Conflict(w, "Payroll run already finalized")
	case errors.Is(err, payroll.ErrCannotDeleteFinalizedRun):
		Conflict(w, "Cannot delete finalized payroll run")
	case errors.Is(err, payroll.ErrNoEmployeesWithSalaryRule):
		UnprocessableEntity(w, "NO_SALARY_RULES", "No employees with an assigned salary rule")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
