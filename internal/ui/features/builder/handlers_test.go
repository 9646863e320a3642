package builder

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/folio/internal/render"
	"github.com/leapstack-labs/folio/internal/testutil"
	"github.com/leapstack-labs/folio/internal/theme"
	"github.com/leapstack-labs/folio/internal/ui/features"
	"github.com/leapstack-labs/folio/internal/ui/notifier"
	"github.com/leapstack-labs/folio/internal/workspace"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T, opts ...features.FixtureOption) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, opts...)
	handlers := NewHandlers(
		fixture.Workspaces,
		fixture.Themes,
		fixture.Notifier,
		false,
		testutil.NewTestLogger(t),
	)
	return handlers, fixture
}

func newWorkspace(t *testing.T, f *features.TestFixture) *workspace.Workspace {
	t.Helper()
	return f.Workspaces.Create(context.Background())
}

func post(t *testing.T, handler http.HandlerFunc, target string, signals any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, features.SignalsRequest(t, target, signals))
	return rec
}

func drop(t *testing.T, h *Handlers, wsID, item, module string, index int) *httptest.ResponseRecorder {
	t.Helper()
	return post(t, h.AddModule, "/canvas/add", AddSignals{
		Workspace: wsID,
		Drop:      DropSignal{Item: item, Module: module, Index: index},
	})
}

// =============================================================================
// Page
// =============================================================================

func TestPage(t *testing.T) {
	h, f := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.HintHeader, rec.Header().Get("Accept-CH"))
	assert.Equal(t, 1, f.Workspaces.Len())

	body := rec.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`id="` + render.ToolboxID + `"`,
		`id="` + render.CanvasID + `"`,
		`id="` + render.PlaceholderID + `"`,
		`data-module-id="` + testutil.ChartModule + `"`,
		`data-module-id="` + testutil.PetModule + `"`,
		"data-on:folio-drop",
		"data-on:folio-reorder",
		"@get('/events')",
		`data-theme-source="system"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, render.ToolboxErrorMessage)
	assert.NotContains(t, body, "/reload", "reload hook is dev only")
}

func TestPage_ToolboxOrder(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	stats := strings.Index(body, `data-module-id="`+testutil.StatsModule+`"`)
	stack := strings.Index(body, `data-module-id="`+testutil.StackModule+`"`)
	chart := strings.Index(body, `data-module-id="`+testutil.ChartModule+`"`)
	pet := strings.Index(body, `data-module-id="`+testutil.PetModule+`"`)
	require.True(t, stats >= 0 && stack >= 0 && chart >= 0 && pet >= 0)
	assert.True(t, stats < stack && stack < chart && chart < pet, "cards follow catalog order")
}

func TestPage_CatalogUnavailable(t *testing.T) {
	h, f := setupTestHandlers(t, features.WithSource(features.FailingSource()))

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, render.ToolboxErrorMessage)
	assert.NotContains(t, body, "toolbox-card")
	assert.Equal(t, 1, f.Workspaces.Len())
}

func TestPage_StoredTheme(t *testing.T) {
	h, f := setupTestHandlers(t)

	save := httptest.NewRecorder()
	require.NoError(t, f.Themes.Save(save, httptest.NewRequest(http.MethodPost, "/theme", nil), theme.Dark))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range save.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `<body class="dark-theme"`)
	assert.Contains(t, body, `data-theme-source="store"`)
	assert.Contains(t, body, `id="theme-toggle"`)
	assert.Contains(t, body, " checked>")
}

func TestPage_HintedTheme(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(theme.HintHeader, "dark")
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `<body class="dark-theme"`)
	assert.Contains(t, body, `data-theme-source="hint"`)
}

func TestPage_DevReload(t *testing.T) {
	f := features.SetupTestFixture(t)
	h := NewHandlers(f.Workspaces, f.Themes, f.Notifier, true, nil)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "/reload")
}

// =============================================================================
// Canvas events
// =============================================================================

func TestAddModule(t *testing.T) {
	tests := []struct {
		name     string
		module   string
		wantBody []string
		notBody  []string
	}{
		{
			name:     "tech stack renders tags",
			module:   testutil.StackModule,
			wantBody: []string{"datastar-patch-elements", `id="n1"`, "SQLite", "display: none"},
			notBody:  []string{"console.error", "folio.charts"},
		},
		{
			name:     "chart mounts and binds its defaults",
			module:   testutil.ChartModule,
			wantBody: []string{`id="n1"`, "chart-n1", "folio.charts.create", "tinyqueue", "dotfiles", "settings-btn"},
			notBody:  []string{"ledger", "console.error"},
		},
		{
			name:     "unknown module stays inert",
			module:   "nope",
			wantBody: []string{"display: none"},
			notBody:  []string{"console.error", "module-content"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, f := setupTestHandlers(t)
			ws := newWorkspace(t, f)

			rec := drop(t, h, ws.ID, "n1", tt.module, 0)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			for _, not := range tt.notBody {
				assert.NotContains(t, body, not)
			}
		})
	}
}

func TestAddModule_PlaceholderHiddenOnce(t *testing.T) {
	h, f := setupTestHandlers(t)
	ws := newWorkspace(t, f)

	first := drop(t, h, ws.ID, "n1", testutil.StackModule, 0)
	second := drop(t, h, ws.ID, "n2", testutil.PetModule, 1)

	assert.Contains(t, first.Body.String(), render.PlaceholderID)
	assert.NotContains(t, second.Body.String(), render.PlaceholderID)
	assert.Contains(t, second.Body.String(), "tinyqueue")
}

func TestAddModule_Errors(t *testing.T) {
	t.Run("unknown workspace", func(t *testing.T) {
		h, _ := setupTestHandlers(t)
		rec := drop(t, h, "missing", "n1", testutil.StackModule, 0)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), ReloadScript)
		assert.NotContains(t, rec.Body.String(), "console.error")
	})

	t.Run("malformed signals", func(t *testing.T) {
		h, _ := setupTestHandlers(t)
		req := httptest.NewRequest(http.MethodPost, "/canvas/add", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		h.AddModule(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing item id", func(t *testing.T) {
		h, f := setupTestHandlers(t)
		rec := drop(t, h, newWorkspace(t, f).ID, "", testutil.StackModule, 0)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "console.error")
	})

	t.Run("duplicate item id", func(t *testing.T) {
		h, f := setupTestHandlers(t)
		ws := newWorkspace(t, f)
		drop(t, h, ws.ID, "n1", testutil.StackModule, 0)
		rec := drop(t, h, ws.ID, "n1", testutil.PetModule, 1)
		assert.Contains(t, rec.Body.String(), "console.error")
	})

	t.Run("catalog unavailable", func(t *testing.T) {
		h, f := setupTestHandlers(t, features.WithSource(features.FailingSource()))
		rec := drop(t, h, newWorkspace(t, f).ID, "n1", testutil.StackModule, 0)
		body := rec.Body.String()
		assert.Contains(t, body, "console.error")
		assert.NotContains(t, body, `id="n1"`)
	})
}

func TestReorder(t *testing.T) {
	h, f := setupTestHandlers(t)
	ws := newWorkspace(t, f)
	drop(t, h, ws.ID, "n1", testutil.StackModule, 0)
	drop(t, h, ws.ID, "n2", testutil.PetModule, 1)

	rec := post(t, h.Reorder, "/canvas/reorder", ReorderSignals{Workspace: ws.ID, Order: []string{"n2", "n1"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "console.error")

	_, err := ws.Do(func(s *workspace.Session) error {
		assert.Equal(t, []string{"n2", "n1"}, s.Document.Order())
		return nil
	})
	require.NoError(t, err)

	rec = post(t, h.Reorder, "/canvas/reorder", ReorderSignals{Workspace: ws.ID, Order: []string{"n1"}})
	assert.Contains(t, rec.Body.String(), "console.error")
}

// =============================================================================
// Settings dialog
// =============================================================================

func openChartSettings(t *testing.T, preselect bool) (*Handlers, *workspace.Workspace, *httptest.ResponseRecorder) {
	t.Helper()
	h, f := setupTestHandlers(t, features.WithPreselect(preselect))
	ws := newWorkspace(t, f)
	drop(t, h, ws.ID, "n1", testutil.ChartModule, 0)

	rec := post(t, h.OpenSettings, "/canvas/settings", SettingsSignals{Workspace: ws.ID, Target: "n1"})
	return h, ws, rec
}

func TestOpenSettings(t *testing.T) {
	_, _, rec := openChartSettings(t, true)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, render.DialogID)
	assert.Contains(t, body, "selector body")
	assert.Contains(t, body, "mode append")
	for _, name := range []string{"tinyqueue", "dotfiles", "ledger"} {
		assert.Contains(t, body, name)
	}
	assert.NotContains(t, body, "console.error")
}

func TestOpenSettings_NotConfigurable(t *testing.T) {
	h, f := setupTestHandlers(t)
	ws := newWorkspace(t, f)
	drop(t, h, ws.ID, "n1", testutil.StackModule, 0)

	rec := post(t, h.OpenSettings, "/canvas/settings", SettingsSignals{Workspace: ws.ID, Target: "n1"})
	body := rec.Body.String()
	assert.NotContains(t, body, render.DialogID)
	assert.NotContains(t, body, "console.error")
}

func TestConfirmDialog(t *testing.T) {
	h, ws, _ := openChartSettings(t, true)

	rec := post(t, h.ConfirmDialog, "/dialog/confirm", DialogSignals{Workspace: ws.ID, Picked: []string{"p3", "ghost"}})

	body := rec.Body.String()
	assert.Contains(t, body, "mode remove")
	assert.Contains(t, body, "#"+render.DialogID)
	assert.Contains(t, body, "folio.charts.update")
	assert.Contains(t, body, "ledger")
	assert.NotContains(t, body, "tinyqueue")
	assert.NotContains(t, body, "console.error")

	_, err := ws.Do(func(s *workspace.Session) error {
		inst, ok := s.Controller.Instance("n1")
		require.True(t, ok)
		assert.Equal(t, []string{"p3"}, inst.Selection())
		assert.Equal(t, 1, s.Charts.Live())
		return nil
	})
	require.NoError(t, err)
}

func TestConfirmDialog_NoneOpen(t *testing.T) {
	h, f := setupTestHandlers(t)
	ws := newWorkspace(t, f)

	rec := post(t, h.ConfirmDialog, "/dialog/confirm", DialogSignals{Workspace: ws.ID, Picked: []string{"p1"}})
	assert.Contains(t, rec.Body.String(), "console.error")
}

func TestCancelDialog(t *testing.T) {
	h, ws, _ := openChartSettings(t, true)

	rec := post(t, h.CancelDialog, "/dialog/cancel", map[string]any{"workspace": ws.ID})
	body := rec.Body.String()
	assert.Contains(t, body, "#"+render.DialogID)
	assert.NotContains(t, body, "folio.charts")

	_, err := ws.Do(func(s *workspace.Session) error {
		inst, _ := s.Controller.Instance("n1")
		assert.Equal(t, []string{"p1", "p2"}, inst.Selection())
		return nil
	})
	require.NoError(t, err)

	// A second cancel has nothing to close.
	rec = post(t, h.CancelDialog, "/dialog/cancel", map[string]any{"workspace": ws.ID})
	assert.NotContains(t, rec.Body.String(), render.DialogID)
}

// =============================================================================
// Events
// =============================================================================

func TestEvents_ReloadsOnCatalogChange(t *testing.T) {
	f := features.SetupTestFixture(t)
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, f.Workspaces, f.Themes, f.Notifier, false, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Eventually(t, func() bool { return f.Notifier.Len() == 1 }, time.Second, 10*time.Millisecond)
	f.Notifier.Broadcast(notifier.Event{Reason: "catalog", Path: "catalog.json"})

	found := make(chan bool, 1)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if strings.Contains(scanner.Text(), ReloadScript) {
				found <- true
				return
			}
		}
		found <- false
	}()

	select {
	case ok := <-found:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload script")
	}

	cancel()
	assert.Eventually(t, func() bool { return f.Notifier.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func eventsURL(base, wsID string) string {
	return base + "/events?datastar=" + url.QueryEscape(`{"workspace":"`+wsID+`"}`)
}

func TestEvents_KeepsWorkspaceAlive(t *testing.T) {
	f := features.SetupTestFixture(t, features.WithTTL(time.Nanosecond))
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, f.Workspaces, f.Themes, f.Notifier, false, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws := newWorkspace(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventsURL(srv.URL, ws.ID), nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Eventually(t, func() bool { return f.Notifier.Len() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 0, f.Workspaces.Prune())
	_, err = f.Workspaces.Get(ws.ID)
	require.NoError(t, err)

	cancel()
	require.Eventually(t, func() bool { return f.Notifier.Len() == 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return f.Workspaces.Prune() == 1 }, time.Second, 10*time.Millisecond)
}

func TestEvents_UnknownWorkspaceReloads(t *testing.T) {
	h, f := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, eventsURL("", "gone"), nil)
	rec := httptest.NewRecorder()
	h.Events(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ReloadScript)
	assert.Equal(t, 0, f.Notifier.Len())
}
