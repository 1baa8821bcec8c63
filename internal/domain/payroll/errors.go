package payroll

import "errors"

var (
	ErrSalaryRuleNotFound        = errors.New("salary rule not found")
	ErrSalaryRuleNameExists      = errors.New("salary rule name already exists")
	ErrPayrollRunNotFound        = errors.New("payroll run not found")
	ErrPayrollRunAlreadyExists   = errors.New("payroll run already exists for this period")
	ErrPayrollRunFinalized       = errors.New("payroll run already finalized, cannot modify")
	ErrCannotDeleteFinalizedRun  = errors.New("cannot delete finalized payroll run")
	ErrPayrollItemNotFound       = errors.New("payroll item not found")
	ErrNoEmployeesWithSalaryRule = errors.New("no employees with an assigned salary rule")
	ErrEmployeeNotFound          = errors.New("employee not found")
)
