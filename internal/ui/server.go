// Package ui provides the web-based resume builder.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/render"
	"github.com/leapstack-labs/folio/internal/theme"
	"github.com/leapstack-labs/folio/internal/ui/notifier"
	"github.com/leapstack-labs/folio/internal/ui/router"
	"github.com/leapstack-labs/folio/internal/workspace"
)

const (
	shutdownTimeout = 5 * time.Second
	debounceDelay   = 100 * time.Millisecond
)

// Server is the main UI server.
type Server struct {
	source       catalog.Source
	sessionStore *sessions.CookieStore
	workspaces   *workspace.Manager
	themes       *theme.Store
	notifier     *notifier.Notifier
	host         string
	port         int
	watch        bool
	watchPath    string
	dev          bool
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Source catalog.Source
	// WatchPath is the catalog file to watch. Empty disables watching.
	WatchPath     string
	Host          string
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	Preselect     bool
	WorkspaceTTL  time.Duration
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 365)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		source:       cfg.Source,
		sessionStore: sessionStore,
		workspaces: workspace.NewManager(workspace.Config{
			Source:    cfg.Source,
			Renderer:  render.New(logger),
			Preselect: cfg.Preselect,
			TTL:       cfg.WorkspaceTTL,
			Logger:    logger,
		}),
		themes:    theme.NewStore(sessionStore),
		notifier:  notifier.New(),
		host:      cfg.Host,
		port:      cfg.Port,
		watch:     cfg.Watch && cfg.WatchPath != "",
		watchPath: cfg.WatchPath,
		dev:       cfg.Dev,
		logger:    logger,
	}
}

// Handler builds the HTTP handler with all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	if s.dev {
		r.Use(middleware.Logger)
	}

	err := router.SetupRoutes(r, router.Deps{
		Source:     s.source,
		Workspaces: s.workspaces,
		Themes:     s.themes,
		Notifier:   s.notifier,
		IsDev:      s.dev,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until the context is cancelled. The listener
// is closed on return.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting UI server", "addr", "http://"+ln.Addr().String())

	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchCatalog(egctx)
		})
	}

	eg.Go(func() error {
		return s.workspaces.Run(egctx)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Workspaces returns the server's workspace manager.
func (s *Server) Workspaces() *workspace.Manager {
	return s.workspaces
}

// watchCatalog reloads open pages when the catalog file changes. The
// directory is watched so that editors replacing the file by rename are
// seen too.
func (s *Server) watchCatalog(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.watchPath)
	name := filepath.Base(s.watchPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch catalog directory", "dir", dir, "error", err)
		// Don't fail - continue without watching
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			path := event.Name
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.logger.Debug("catalog changed, reloading pages", "file", path)
				s.notifier.Broadcast(notifier.Event{Reason: "catalog", Path: path})
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
