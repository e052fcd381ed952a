package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const (
	HealthMessage = "Employee Attendance API is running"

	maxJSONBody = 1 << 20
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	UploadsDir     string
}

type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Employee     EmployeeHandler
	Dashboard    DashboardHandler
	Report       ReportHandler
	File         FileHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Set before any route so they apply to the whole tree
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found: "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: false,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(middleware.Recover)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(HealthMessage))
	})

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", staticFiles(cfg.UploadsDir)))
	}

	r.Route("/api", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Use(chiMiddleware.RequestSize(maxJSONBody))
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// Event stream authenticates with a short-lived query token
		r.Get("/events/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/auth/me", func(r chi.Router) {
				r.Use(chiMiddleware.RequestSize(maxJSONBody))
				r.Get("/", h.Auth.Me)
				r.Put("/", h.Auth.UpdateProfile)
				r.Put("/password", h.Auth.ChangePassword)
			})
			r.Post("/auth/logout", h.Auth.Logout)
			r.Post("/auth/stream-token", h.Auth.StreamToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/me", h.Attendance.ListMine)
				r.Get("/{id}", h.Attendance.Get)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Use(chiMiddleware.RequestSize(maxJSONBody))
				r.Post("/", h.Leave.Apply)
				r.Get("/me", h.Leave.ListMine)
				r.Get("/{id}", h.Leave.Get)

				// Admin and boss only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", h.Leave.List)
					r.Put("/{id}/status", h.Leave.Decide)
				})
			})

			r.Route("/file", func(r chi.Router) {
				r.Post("/upload", h.File.Upload)
				r.Get("/attendance/{id}/photo", h.Attendance.Photo)
			})

			// Admin and boss only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Use(chiMiddleware.RequestSize(maxJSONBody))

				r.Get("/dashboard", h.Dashboard.GetDashboard)

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", h.Attendance.List)
					r.With(chiMiddleware.Timeout(2*time.Minute)).Get("/export", h.Report.ExportAttendance)
				})

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", h.Employee.List)
					r.Post("/", h.Employee.Create)
					r.Get("/{id}", h.Employee.Get)
					r.Put("/{id}", h.Employee.Update)
					r.Put("/{id}/password", h.Employee.ResetPassword)
				})
			})
		})
	})
	return r
}

// staticFiles serves files under dir without directory listings
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			response.NotFound(w, "File not found")
			return
		}
		fs.ServeHTTP(w, r)
	})
}
