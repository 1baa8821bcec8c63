package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrCompanyIDRequired      = errors.New("company_id claim is missing or invalid")
	ErrEmployeeIDRequired     = errors.New("employee_id claim is missing or invalid")
)
