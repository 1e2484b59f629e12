package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/notes-api/internal/auth"
	"github.com/crucial707/notes-api/internal/config"
	"github.com/crucial707/notes-api/internal/handlers"
	"github.com/crucial707/notes-api/internal/middleware"
	"github.com/crucial707/notes-api/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repos, handlers and middleware. A nil limiter leaves the
// auth routes unthrottled.
func newRouter(database *sql.DB, cfg config.Config, limiter *middleware.IPRateLimiter) http.Handler {
	ttl := time.Duration(cfg.JWTExpireHours) * time.Hour
	if ttl <= 0 {
		ttl = auth.DefaultTTL
	}
	tokens := auth.NewService([]byte(cfg.JWTSecret), ttl)

	userRepo := repo.NewUserRepo(database)
	noteRepo := repo.NewNoteRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Tokens: tokens}
	noteHandler := &handlers.NoteHandler{Repo: noteRepo, AuditRepo: auditRepo}
	userHandler := &handlers.UserHandler{Repo: userRepo, AuditRepo: auditRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBytes(int64(cfg.MaxBodyBytes)))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	// ==========================
	// Probes
	// ==========================
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ==========================
	// API
	// ==========================
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(tokens))

			r.Get("/notes", noteHandler.ListNotes)
			r.Post("/notes", noteHandler.CreateNote)
			r.Get("/notes/{id}", noteHandler.GetNote)
			r.Put("/notes/{id}", noteHandler.UpdateNote)
			r.Delete("/notes/{id}", noteHandler.DeleteNote)

			r.Get("/user/profile", userHandler.Profile)
			r.Put("/user/password", userHandler.ChangePassword)
			r.Delete("/user/account", userHandler.DeleteAccount)
			r.Get("/user/activity", auditHandler.ListActivity)
		})
	})

	return r
}
