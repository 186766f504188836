package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/botucare/clinic-backend/internal/http/handlers"
	httpmiddleware "github.com/botucare/clinic-backend/internal/http/middleware"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger   *logging.Logger
	Identity *identity.Service
	Metrics  *metrics.ClinicMetrics

	Auth         *handlers.AuthHandler
	Patients     *handlers.PatientsHandler
	Injections   *handlers.InjectionsHandler
	FollowUps    *handlers.FollowUpsHandler
	Appointments *handlers.AppointmentsHandler
	Dashboard    *handlers.DashboardHandler
	Reports      *handlers.ReportsHandler
	Catalog      *handlers.CatalogHandler
	Users        *handlers.UsersHandler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.Metrics))
	}
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httpmiddleware.RateLimit(float64(cfg.RateLimitPerMinute)/60.0, cfg.RateLimitPerMinute))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/healthz", handlers.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Post("/api/auth/login", cfg.Auth.Login)
	})

	// Authenticated API
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.Auth(cfg.Identity))

		api.Post("/auth/logout", cfg.Auth.Logout)

		api.Route("/patients", func(r chi.Router) {
			r.Get("/", cfg.Patients.List)
			r.Post("/", cfg.Patients.Create)
			r.Get("/{patientID}", cfg.Patients.Get)
			r.Patch("/{patientID}", cfg.Patients.Update)
			r.Delete("/{patientID}", cfg.Patients.Delete)
		})

		api.Route("/injections", func(r chi.Router) {
			r.Get("/", cfg.Injections.List)
			r.Post("/", cfg.Injections.Create)
			r.Patch("/{injectionID}", cfg.Injections.Update)
		})

		api.Route("/followups", func(r chi.Router) {
			r.Get("/", cfg.FollowUps.List)
			r.Post("/", cfg.FollowUps.Create)
		})

		api.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.Appointments.List)
			r.Post("/", cfg.Appointments.Create)
			r.Get("/upcoming", cfg.Appointments.Upcoming)
			r.Patch("/{appointmentID}/status", cfg.Appointments.UpdateStatus)
		})

		api.Get("/dashboard", cfg.Dashboard.Overview)

		api.Route("/reports", func(r chi.Router) {
			r.Get("/overview", cfg.Reports.Overview)
			r.Get("/products", cfg.Reports.Products)
			r.Get("/diagnoses", cfg.Reports.Diagnoses)
			r.Get("/muscles", cfg.Reports.Muscles)
			r.Get("/events", cfg.Reports.Events)
		})

		api.Get("/catalog", cfg.Catalog.Get)

		// Admin-only surface
		api.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)
			admin.Patch("/catalog", cfg.Catalog.Update)
			admin.Get("/users", cfg.Users.List)
			admin.Post("/users", cfg.Users.Create)
		})
	})

	return r
}
