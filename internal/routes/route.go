package routes

import (
	"net/http"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/config"
	"rewind-bknd/internal/handlers"
	"rewind-bknd/internal/logger"
	mdlwr "rewind-bknd/internal/middleware"
	"rewind-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

// NewRouter wires the API. ref may wrap the database with a cache; when nil the
// reference tables are read directly. Project writes require a bearer token
// when tokens is non-nil.
func NewRouter(db *bun.DB, ref services.ReferenceStore, tokens *auth.TokenManager, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if ref == nil {
		ref = services.NewReferenceService(db)
	}
	wireCalc := services.NewWireCalculator(ref)
	turnsCalc := services.NewTurnsCalculator(ref)
	projectSvc := services.NewProjectService(db, cfg.ProjectDedupWindow)

	calcHandler := handlers.NewCalculationHandler(wireCalc, turnsCalc, logr.Logger)
	refHandler := handlers.NewReferenceHandler(ref, logr.Logger)
	projectHandler := handlers.NewProjectHandler(projectSvc, wireCalc, turnsCalc, logr.Logger)

	protect := func(r chi.Router) {}
	var authHandler *handlers.AuthHandler
	if tokens != nil {
		var dir auth.Directory
		if cfg.LDAPServer != "" && cfg.LDAPBaseDN != "" {
			dir = auth.NewLDAPDirectory(cfg.LDAPServer, cfg.LDAPBaseDN, cfg.LDAPUserDomain)
		}
		authSvc := services.NewAuthService(db, tokens, dir, cfg, logr)
		authMW := mdlwr.NewAuthMiddleware(authSvc, logr)
		authHandler = handlers.NewAuthHandler(authSvc, logr.Logger, cfg.Environment == "production")
		protect = func(r chi.Router) { r.Use(authMW.JWTAuth) }
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if authHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", authHandler.LoginLocal)
				r.Post("/ldap", authHandler.LoginLDAP)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})
		}

		r.Get("/safety", calcHandler.Safety)

		r.Route("/calculations", func(r chi.Router) {
			r.Post("/wire", calcHandler.CalculateWire)
			r.Get("/wire/defaults", calcHandler.WireDefaults)
			r.Post("/turns", calcHandler.CalculateTurns)
			r.Get("/turns/defaults", calcHandler.TurnsDefaults)
		})

		r.Route("/reference", func(r chi.Router) {
			r.Get("/wires", refHandler.ListWires)
			r.Get("/winding-factors", refHandler.ListWindingFactors)
			r.Get("/guidelines", refHandler.Guidelines)
			r.Get("/export.xlsx", refHandler.Export)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Get("/export.xlsx", projectHandler.Export)
			r.Get("/{id}", projectHandler.Get)
			r.Get("/{id}/sheet.pdf", projectHandler.Sheet)

			r.Group(func(r chi.Router) {
				protect(r)
				r.Post("/", projectHandler.Create)
				r.Post("/wire", projectHandler.SaveWire)
				r.Post("/turns", projectHandler.SaveTurns)
				r.Delete("/{id}", projectHandler.Delete)
			})
		})
	})

	return r
}
