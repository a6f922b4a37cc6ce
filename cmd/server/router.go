package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/snapvocab/snapvocab-api/internal/api"
	"github.com/snapvocab/snapvocab-api/internal/api/middleware"
)

// setupRouter builds the HTTP routes. Everything under /api requires a
// learner token and is rate limited per learner.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	healthHandler := api.NewHealthHandler(app.backend.db, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	exportHandler := api.NewExportHandler(app.reviewService, app.clock, app.logger)
	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(middleware.RateLimit(app.limiter))

			r.Get("/review/due", reviewHandler.GetDueItems)
			r.Post("/items/{id}/attempts", reviewHandler.RecordAttempt)
			r.Post("/items/{id}/preview", reviewHandler.PreviewNextReview)
			r.Get("/attempts/export", exportHandler.ExportAttempts)
		})
	})

	return r
}
