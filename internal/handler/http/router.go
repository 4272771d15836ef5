package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries what NewRouter needs besides the handlers.
type RouterConfig struct {
	Env            string
	Version        string
	CORSOrigins    []string
	CronSecret     string
	MetricsHandler http.Handler
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
	cronHandler CronHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.CronSecretHeader},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// External schedulers
		r.Route("/cron", func(r chi.Router) {
			r.Use(middleware.RequireCronSecret(cfg.CronSecret))
			r.Post("/run-auto-logout", cronHandler.RunAutoLogout)
		})

		r.Route("/attendance", func(r chi.Router) {
			// SSE authenticates with a short-lived token in the query string
			r.Get("/events", attendanceHandler.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/mark-login", attendanceHandler.MarkLogin)
					r.Post("/mark-leave", attendanceHandler.MarkLeave)
					r.Post("/mark-absent", attendanceHandler.MarkAbsent)
					r.Post("/mark-logout", attendanceHandler.MarkLogout)
					r.Post("/start-break", attendanceHandler.StartBreak)
					r.Post("/end-break", attendanceHandler.EndBreak)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/my", attendanceHandler.GetMyAttendance)
					r.Get("/today", attendanceHandler.GetTodayStatus)
					r.Get("/sse-token", attendanceHandler.GetSSEToken)
					r.Get("/{id}", attendanceHandler.Get)
				})

				// Manager or owner
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", attendanceHandler.List)
					r.With(middleware.RequirePermission(user.PermissionAttendanceApprove)).Put("/{id}", attendanceHandler.Update)
				})
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequirePermission(user.PermissionReportsView))
			r.Get("/cron-logs", reportHandler.GetCronLogs)
		})
	})
	return r
}
