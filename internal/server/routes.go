package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/ternarybob/bravix/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.apiKeyMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	system := s.app.SystemHandler
	r.Get("/", system.RootHandler)
	r.Get("/health", system.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", system.HealthHandler)
		r.Get("/version", system.VersionHandler)

		// Extraction, scoring and analysis
		r.Post("/upload", s.app.AnalysisHandler.UploadHandler)
		r.Post("/indicators", s.app.AnalysisHandler.IndicatorsHandler)
		r.Post("/analyze", s.app.AnalysisHandler.AnalyzeHandler)

		// Stored analyses and reports
		r.Get("/reports", s.app.ReportHandler.ListHandler)
		r.Get("/reports/latest", s.app.ReportHandler.LatestHandler)
		r.Get("/reports/{id}", s.app.ReportHandler.GetHandler)
		r.Get("/report/download", s.app.ReportHandler.DownloadHandler)
	})

	return r
}
