/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions for
  the read-only results API. This is the wiring layer that connects URLs
  to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

ROUTE GROUPS:
  /api/findings/*       Findings listing and lookup
  /api/summary          Severity and rule aggregates
  /api/reconciliation   Ledger vs snapshot rows
  /api/exposure         Indicative LSL exposure
  /api/health           Server status
  /reports/*            Rendered reports and raw outputs
  /                     Endpoint index page

STATIC FILE SERVING:
  /reports/* serves the output directory directly, so the rendered HTML
  and PDF reports are browsable without extra tooling.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/auditor/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/summary", h.GetSummary)
		r.Get("/reconciliation", h.GetReconciliation)
		r.Get("/exposure", h.GetExposure)

		// Finding routes
		r.Route("/findings", func(r chi.Router) {
			r.Get("/", h.ListFindings)
			r.Get("/{id}", h.GetFinding)
		})
	})

	// Rendered reports and raw outputs, served straight from the
	// output directory.
	outputs := http.FileServer(http.Dir(h.Paths.OutDir))
	r.Get("/reports/*", http.StripPrefix("/reports/", outputs).ServeHTTP)

	// Index page listing the available endpoints
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Leave Audit API</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Leave Audit API</h1>
<p>Read-only API over the outputs of an audit run.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/findings">/api/findings</a> - List findings (filters: module, rule, severity, employee)</li>
<li><a href="/api/summary">/api/summary</a> - Severity and rule aggregates per module</li>
<li><a href="/api/reconciliation">/api/reconciliation</a> - Ledger vs snapshot comparison</li>
<li><a href="/api/exposure">/api/exposure</a> - Indicative LSL exposure estimate</li>
<li><a href="/api/health">/api/health</a> - Server status</li>
</ul>
<h2>Reports</h2>
<ul>
<li><a href="/reports/report.html">/reports/report.html</a> - Findings report</li>
<li><a href="/reports/lsl_report.html">/reports/lsl_report.html</a> - LSL exposure report</li>
<li><a href="/reports/combined_overview.html">/reports/combined_overview.html</a> - Combined overview</li>
</ul>
</body>
</html>`))
	})

	return r
}
