package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/shift-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the ambient settings the router needs.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

type Handlers struct {
	Attendance AttendanceHandler
	Shift      ShiftHandler
	Payroll    PayrollHandler
	Report     ReportHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/punch-on", h.Attendance.PunchOn)
			r.Post("/punch-off", h.Attendance.PunchOff)
			r.Post("/breaks/start", h.Attendance.StartBreak)
			r.Post("/breaks/end", h.Attendance.EndBreak)
			r.Get("/me", h.Attendance.MyStatus)

			r.With(middleware.AdminOnly).Get("/sessions", h.Attendance.ListSessions)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/active", h.Shift.ActiveSegment)
			r.Get("/me/calendar.ics", h.Shift.Calendar)

			// Admin only
			r.Route("/presets", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/", h.Shift.CreatePreset)
				r.Get("/", h.Shift.ListPresets)
				r.Get("/{id}", h.Shift.GetPreset)
				r.Delete("/{id}", h.Shift.DeletePreset)
				r.Put("/{id}/employees/{employeeID}", h.Shift.AssignPreset)
			})
		})

		r.Route("/breaks/policies", func(r chi.Router) {
			r.Use(middleware.AdminOnly)
			r.Post("/", h.Attendance.CreateBreakPolicy)
			r.Get("/", h.Attendance.ListBreakPolicies)
		})

		r.Route("/payroll", func(r chi.Router) {
			// Employees may fetch their own payslip; the service enforces ownership.
			r.Get("/runs/{id}/items/{employeeID}/payslip", h.Payroll.Payslip)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Post("/rules", h.Payroll.CreateRule)
				r.Get("/rules", h.Payroll.ListRules)
				r.Put("/rules/{id}/employees/{employeeID}", h.Payroll.AssignRule)

				r.Post("/runs", h.Payroll.GenerateRun)
				r.Get("/runs", h.Payroll.ListRuns)
				r.Get("/runs/{id}", h.Payroll.GetRun)
				r.Delete("/runs/{id}", h.Payroll.DeleteRun)
				r.Post("/runs/{id}/finalize", h.Payroll.FinalizeRun)
			})
		})

		r.With(middleware.AdminOnly).Get("/reports/monthly", h.Report.MonthlyAttendance)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	return r
}

// NewLogger builds the JSON logger used for both application and access logs.
func NewLogger(level slog.Level, app, version, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
