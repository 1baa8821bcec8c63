// Package jwttest builds request contexts carrying verified access claims for tests.
package jwttest

import (
	"context"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	jwxt "github.com/lestrrat-go/jwx/v2/jwt"
)

// Context returns ctx as jwtauth.Verifier would leave it after accepting a token with claims.
func Context(ctx context.Context, claims jwt.Claims) context.Context {
	token := jwxt.New()
	_ = token.Set("user_id", claims.UserID)
	_ = token.Set("company_id", claims.CompanyID)
	_ = token.Set("employee_id", claims.EmployeeID)
	_ = token.Set("is_admin", claims.IsAdmin)
	_ = token.Set("type", "access")
	return jwtauth.NewContext(ctx, token, nil)
}

func Employee(companyID, employeeID string) context.Context {
	return Context(context.Background(), jwt.Claims{UserID: "user-" + employeeID, CompanyID: companyID, EmployeeID: employeeID})
}

func Admin(companyID string) context.Context {
	return Context(context.Background(), jwt.Claims{UserID: "admin", CompanyID: companyID, IsAdmin: true})
}
