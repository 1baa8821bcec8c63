package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/shift-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.ClaimsFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !claims.IsAdmin {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
