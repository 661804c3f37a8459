// Package router sets up all HTTP routes and middleware chains for the
// EduHansa site. Routes are split into the public HTML pages and the
// rate-limited JSON API.
package router

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eduhansa/internal/handlers"
	"eduhansa/internal/markdown"
	"eduhansa/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. static is served under /static/.
func New(public *handlers.Public, api *handlers.API, limiter *middleware.RateLimiter, static fs.FS) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Metrics)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/assets/highlight.css", highlightCSSHandler)

	// Public pages.
	r.Get("/", public.Home)
	r.Get("/library", public.Library)
	r.Get("/library/{slug}", public.Book)
	r.Get("/blog", public.Blog)
	r.Get("/blog/{slug}", public.Post)
	r.Get("/about", public.About)
	r.Get("/contact", public.Contact)

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Method(http.MethodGet, "/books", api.Books())
		r.Method(http.MethodGet, "/books/{slug}", api.Book())
		r.Method(http.MethodGet, "/posts", api.Posts())
		r.Method(http.MethodGet, "/posts/{slug}", api.Post())
	})

	r.NotFound(public.NotFound)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// highlightCSSHandler serves the stylesheet for highlighted code blocks.
func highlightCSSHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := markdown.HighlightCSS(w); err != nil {
		slog.ErrorContext(r.Context(), "write highlight css", "error", err)
	}
}
