// Package api serves the module catalog as JSON.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/folio/internal/catalog"
)

// SetupRoutes configures routes for the api feature.
func SetupRoutes(router chi.Router, source catalog.Source, logger *slog.Logger) error {
	handlers := NewHandlers(source, logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/modules", handlers.Modules)
		r.Get("/health", handlers.Health)
	})
	return nil
}
