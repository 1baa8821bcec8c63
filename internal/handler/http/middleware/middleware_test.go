package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt/jwttest"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID_KeepsValidInbound(t *testing.T) {
	inbound := uuid.NewString()
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chiMiddleware.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, inbound, seen)
	assert.Equal(t, inbound, w.Header().Get(RequestIDHeader))
}

func TestRequestID_ReplacesGarbage(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chiMiddleware.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestAdminOnly(t *testing.T) {
	called := false
	h := AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	tests := []struct {
		name   string
		req    *http.Request
		status int
		called bool
	}{
		{
			name:   "admin passes",
			req:    httptest.NewRequest(http.MethodGet, "/", nil).WithContext(jwttest.Admin("company-1")),
			status: http.StatusOK,
			called: true,
		},
		{
			name:   "employee forbidden",
			req:    httptest.NewRequest(http.MethodGet, "/", nil).WithContext(jwttest.Employee("company-1", "employee-1")),
			status: http.StatusForbidden,
		},
		{
			name:   "no claims",
			req:    httptest.NewRequest(http.MethodGet, "/", nil),
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			w := httptest.NewRecorder()
			h.ServeHTTP(w, tt.req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.called, called)
		})
	}
}
