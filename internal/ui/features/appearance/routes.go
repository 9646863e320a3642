// Package appearance handles the dark mode toggle.
package appearance

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/folio/internal/theme"
)

// SetupRoutes configures routes for the appearance feature.
func SetupRoutes(router chi.Router, themes *theme.Store, logger *slog.Logger) error {
	handlers := NewHandlers(themes, logger)
	router.Post("/theme", handlers.Toggle)
	return nil
}
