// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/render"
	"github.com/leapstack-labs/folio/internal/testutil"
	"github.com/leapstack-labs/folio/internal/theme"
	"github.com/leapstack-labs/folio/internal/ui/notifier"
	"github.com/leapstack-labs/folio/internal/workspace"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Catalog      *catalog.Catalog
	Source       catalog.Source
	Workspaces   *workspace.Manager
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Themes       *theme.Store
}

// FixtureOption customizes SetupTestFixture.
type FixtureOption func(*workspace.Config)

// WithSource replaces the fixture catalog source.
func WithSource(src catalog.Source) FixtureOption {
	return func(c *workspace.Config) { c.Source = src }
}

// WithPreselect sets whether dialogs check the current selection.
func WithPreselect(on bool) FixtureOption {
	return func(c *workspace.Config) { c.Preselect = on }
}

// WithTTL sets how long idle workspaces are kept.
func WithTTL(ttl time.Duration) FixtureOption {
	return func(c *workspace.Config) { c.TTL = ttl }
}

// SetupTestFixture creates a fixture backed by the shared test catalog.
func SetupTestFixture(t *testing.T, opts ...FixtureOption) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	cat := testutil.NewCatalog(t)

	cfg := workspace.Config{
		Source: catalog.SourceFunc(func(context.Context) (*catalog.Catalog, error) {
			return cat, nil
		}),
		Renderer:  render.New(logger),
		Preselect: true,
		Logger:    logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sessionStore := NewTestSessionStore()
	return &TestFixture{
		Catalog:      cat,
		Source:       cfg.Source,
		Workspaces:   workspace.NewManager(cfg),
		Notifier:     notifier.New(),
		SessionStore: sessionStore,
		Themes:       theme.NewStore(sessionStore),
	}
}

// FailingSource is a catalog source that always fails to load.
func FailingSource() catalog.Source {
	return catalog.SourceFunc(func(context.Context) (*catalog.Catalog, error) {
		return nil, catalog.ErrUnavailable
	})
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// SignalsRequest builds a datastar POST carrying signals as its JSON body.
func SignalsRequest(t *testing.T, target string, signals any) *http.Request {
	t.Helper()

	body, err := json.Marshal(signals)
	if err != nil {
		t.Fatalf("failed to encode signals: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return req
}
