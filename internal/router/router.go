// Package router sets up all HTTP routes and middleware chains for the
// Apothek API. It organizes routes into public, auth, and admin groups
// with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"apothek/internal/handlers"
	"apothek/internal/middleware"
	"apothek/internal/session"
)

// Options carries the dependencies and settings for route construction.
type Options struct {
	Sessions   *session.Store
	Categories *handlers.Categories
	Products   *handlers.Products
	Auth       *handlers.Auth
	Secure     bool // marks CSRF cookies HTTPS-only
}

// loginRateLimit allows 10 login attempts per IP per minute.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(opts.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	csrf := middleware.NewCSRF(opts.Secure)
	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)

	r.Route("/api", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/categories", opts.Categories.Tree)
		r.Get("/products", opts.Products.List)

		// Authentication.
		r.Route("/auth", func(r chi.Router) {
			r.Use(csrf)

			r.With(loginLimiter.Middleware).Post("/login", opts.Auth.Login)
			r.Post("/logout", opts.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", opts.Auth.Me)
				r.Get("/2fa/setup", opts.Auth.TwoFASetup)
				r.Post("/2fa/verify", opts.Auth.TwoFAVerify)
			})
		})

		// Admin surface — session, completed 2FA, and CSRF required.
		// The handlers additionally re-check the admin role against the
		// database on every mutation.
		r.Route("/admin", func(r chi.Router) {
			r.Use(csrf)
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", opts.Categories.Create)
				r.Put("/{id}", opts.Categories.Update)
				r.Delete("/{id}", opts.Categories.Delete)
				r.Post("/{id}/image", opts.Categories.UploadImage)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
