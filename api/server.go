/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the browser UI

  Contract export additionally passes through a token-bucket limiter
  (RouterOptions.ExportLimiter) since every call writes a file.

ROUTE GROUPS:
  /api/projects/*       Project lifecycle, history, ITC rate, audit
  /api/calculate        Stateless calculator
  /api/dashboard        Portfolio summary
  /api/alerts           Project deadline alerts
  /api/groups           Strategic group guidance
  /api/contracts/*      Contract generator
  /api/guidance/*       Compliance guide
  /api/scenarios/*      Demo scenarios
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built UI from RouterOptions.StaticDir when it exists.
  Falls back to index.html for client-side routing.

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// RouterOptions configures NewRouter. Zero values fall back to the
// development defaults.
type RouterOptions struct {
	AllowedOrigins []string
	StaticDir      string
	// ExportLimiter throttles POST /api/contracts/export. Nil means unlimited.
	ExportLimiter *rate.Limiter
}

var errRateLimited = errors.New("rate limit exceeded")

// rateLimit rejects requests with 429 once limiter has no tokens left.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too many export requests", errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Contract-Number"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Patch("/{id}/compliance", h.UpdateCompliance)
			r.Get("/{id}/history", h.GetHistory)
			r.Get("/{id}/itc", h.GetITCRate)
			r.Get("/{id}/audit", h.GetAudit)
			r.Get("/{id}/contract", h.GetProjectContract)
		})

		r.Post("/calculate", h.Calculate)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/alerts", h.ListAlerts)
		r.Get("/groups", h.ListGroups)

		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", h.DraftContract)
			r.Post("/download", h.DownloadContract)
			r.With(rateLimit(opts.ExportLimiter)).Post("/export", h.ExportContract)
		})

		// Guidance routes
		r.Route("/guidance", func(r chi.Router) {
			r.Get("/", h.GetGuidance)
			r.Get("/sections", h.ListGuideSections)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetPortfolio)
		})
	})

	mountStatic(r, opts.StaticDir)
	return r
}

// mountStatic serves the built UI, or a short API index when there is none.
func mountStatic(r chi.Router, staticDir string) {
	if staticDir == "" {
		staticDir = "./web/dist"
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

			// SPA routing: serve index.html for unknown paths
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
		return
	}

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Safe Harbor Compliance Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Safe Harbor Compliance Engine API</h1>
<p>The frontend is not built. API endpoints:</p>
<ul>
<li><a href="/api/projects">/api/projects</a> - Tracked projects</li>
<li><a href="/api/dashboard">/api/dashboard</a> - Portfolio dashboard</li>
<li><a href="/api/groups">/api/groups</a> - Strategic groups</li>
<li><a href="/api/guidance">/api/guidance</a> - Compliance guide</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})
}
