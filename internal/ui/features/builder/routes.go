// Package builder provides the resume builder page and its canvas events.
package builder

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/folio/internal/theme"
	"github.com/leapstack-labs/folio/internal/ui/notifier"
	"github.com/leapstack-labs/folio/internal/workspace"
)

// SetupRoutes configures routes for the builder feature.
func SetupRoutes(
	router chi.Router,
	workspaces *workspace.Manager,
	themes *theme.Store,
	notify *notifier.Notifier,
	isDev bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(workspaces, themes, notify, isDev, logger)

	router.Get("/", handlers.Page)
	router.Get("/events", handlers.Events)

	router.Route("/canvas", func(r chi.Router) {
		r.Post("/add", handlers.AddModule)
		r.Post("/reorder", handlers.Reorder)
		r.Post("/settings", handlers.OpenSettings)
	})

	router.Route("/dialog", func(r chi.Router) {
		r.Post("/confirm", handlers.ConfirmDialog)
		r.Post("/cancel", handlers.CancelDialog)
	})

	return nil
}
