// Package router sets up HTTP routes for the UI server.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/theme"
	apiFeature "github.com/leapstack-labs/folio/internal/ui/features/api"
	appearanceFeature "github.com/leapstack-labs/folio/internal/ui/features/appearance"
	builderFeature "github.com/leapstack-labs/folio/internal/ui/features/builder"
	"github.com/leapstack-labs/folio/internal/ui/notifier"
	"github.com/leapstack-labs/folio/internal/ui/resources"
	"github.com/leapstack-labs/folio/internal/workspace"
)

// Deps holds what the feature routes need.
type Deps struct {
	Source     catalog.Source
	Workspaces *workspace.Manager
	Themes     *theme.Store
	Notifier   *notifier.Notifier
	IsDev      bool
	Logger     *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	static, err := resources.Handler(resources.Options{Dev: deps.IsDev, Logger: deps.Logger})
	if err != nil {
		return fmt.Errorf("failed to load static assets: %w", err)
	}
	router.Handle("/static/*", static)

	if err := builderFeature.SetupRoutes(router, deps.Workspaces, deps.Themes, deps.Notifier, deps.IsDev, deps.Logger); err != nil {
		return err
	}

	if err := appearanceFeature.SetupRoutes(router, deps.Themes, deps.Logger); err != nil {
		return err
	}

	if err := apiFeature.SetupRoutes(router, deps.Source, deps.Logger); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
