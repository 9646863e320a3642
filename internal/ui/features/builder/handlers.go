package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/folio/internal/dom"
	"github.com/leapstack-labs/folio/internal/placement"
	"github.com/leapstack-labs/folio/internal/render"
	"github.com/leapstack-labs/folio/internal/settings"
	"github.com/leapstack-labs/folio/internal/theme"
	"github.com/leapstack-labs/folio/internal/ui/notifier"
	"github.com/leapstack-labs/folio/internal/workspace"
)

// ReloadScript reloads the page after the catalog changed.
const ReloadScript = "window.location.reload()"

// Handlers provides HTTP handlers for the builder feature.
type Handlers struct {
	workspaces *workspace.Manager
	themes     *theme.Store
	notifier   *notifier.Notifier
	isDev      bool
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(workspaces *workspace.Manager, themes *theme.Store, notify *notifier.Notifier, isDev bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		workspaces: workspaces,
		themes:     themes,
		notifier:   notify,
		isDev:      isDev,
		logger:     logger,
	}
}

// Page opens a workspace and renders the builder page for it.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaces.Create(r.Context())

	view := PageView{
		Workspace: ws.ID,
		Theme:     h.themes.Resolve(r),
		IsDev:     h.isDev,
	}
	if cat, err := ws.Catalog(); err == nil {
		view.Modules = cat.Modules()
	} else {
		view.LoadFailed = true
	}

	theme.RequestHint(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(view).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Events is the long-lived SSE endpoint of a page. It keeps the page's
// workspace alive while connected and reloads the page when the catalog
// changes or the workspace is gone.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	var signals workspaceSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("event stream without signals", "error", err)
	}

	var ws *workspace.Workspace
	if signals.Workspace != "" {
		var err error
		if ws, err = h.workspaces.Get(signals.Workspace); err != nil {
			h.expired(w, r, signals.Workspace)
			return
		}
		detach := ws.Attach()
		defer detach()
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			h.logger.Debug("reloading page", "reason", ev.Reason, "path", ev.Path)
			if err := sse.ExecuteScript(ReloadScript); err != nil {
				return
			}
		}
	}
}

// AddModule handles a toolbox card dropped on the canvas.
func (h *Handlers) AddModule(w http.ResponseWriter, r *http.Request) {
	var signals AddSignals
	ws, ok := h.readWorkspace(w, r, &signals, &signals.Workspace)
	if !ok {
		return
	}

	changes, err := ws.Do(func(s *workspace.Session) error {
		_, err := s.Controller.OnAdd(placement.DropEvent{
			ItemID:   signals.Drop.Item,
			ModuleID: signals.Drop.Module,
			Index:    signals.Drop.Index,
		})
		return err
	})
	h.apply(datastar.NewSSE(w, r), ws.ID, changes, err)
}

// Reorder handles canvas nodes sorted by the user.
func (h *Handlers) Reorder(w http.ResponseWriter, r *http.Request) {
	var signals ReorderSignals
	ws, ok := h.readWorkspace(w, r, &signals, &signals.Workspace)
	if !ok {
		return
	}

	changes, err := ws.Do(func(s *workspace.Session) error {
		return s.Controller.Reorder(signals.Order)
	})
	h.apply(datastar.NewSSE(w, r), ws.ID, changes, err)
}

// OpenSettings handles a click on a node's settings affordance.
func (h *Handlers) OpenSettings(w http.ResponseWriter, r *http.Request) {
	var signals SettingsSignals
	ws, ok := h.readWorkspace(w, r, &signals, &signals.Workspace)
	if !ok {
		return
	}

	changes, err := ws.Do(func(s *workspace.Session) error {
		return s.Controller.OpenSettings(signals.Target)
	})
	h.apply(datastar.NewSSE(w, r), ws.ID, changes, err)
}

// ConfirmDialog applies the checked projects of the open dialog.
func (h *Handlers) ConfirmDialog(w http.ResponseWriter, r *http.Request) {
	var signals DialogSignals
	ws, ok := h.readWorkspace(w, r, &signals, &signals.Workspace)
	if !ok {
		return
	}

	changes, err := ws.Do(func(s *workspace.Session) error {
		return s.Dialogs.Confirm(signals.Picked)
	})
	h.apply(datastar.NewSSE(w, r), ws.ID, changes, err)
}

// CancelDialog closes the open dialog without changes.
func (h *Handlers) CancelDialog(w http.ResponseWriter, r *http.Request) {
	var signals workspaceSignals
	ws, ok := h.readWorkspace(w, r, &signals, &signals.Workspace)
	if !ok {
		return
	}

	changes, err := ws.Do(func(s *workspace.Session) error {
		s.Dialogs.Cancel()
		return nil
	})
	h.apply(datastar.NewSSE(w, r), ws.ID, changes, err)
}

// readWorkspace reads the signals and resolves the workspace they name.
// Signals must be read before the SSE writer is created.
func (h *Handlers) readWorkspace(w http.ResponseWriter, r *http.Request, signals any, id *string) (*workspace.Workspace, bool) {
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	ws, err := h.workspaces.Get(*id)
	if err != nil {
		h.expired(w, r, *id)
		return nil, false
	}
	return ws, true
}

// expired reloads a page whose workspace no longer exists, so the page gets
// a fresh one.
func (h *Handlers) expired(w http.ResponseWriter, r *http.Request, wsID string) {
	h.logger.Info("workspace not found, reloading page", "workspace", wsID)
	_ = datastar.NewSSE(w, r).ExecuteScript(ReloadScript)
}

// apply replays document changes in the browser, in order, then reports err.
func (h *Handlers) apply(sse *datastar.ServerSentEventGenerator, wsID string, changes []dom.Change, err error) {
	for _, c := range changes {
		if perr := patch(sse, c); perr != nil {
			h.logger.Debug("client went away while patching", "workspace", wsID, "error", perr)
			return
		}
	}

	if err == nil {
		return
	}
	if rejected(err) {
		h.logger.Warn("builder event rejected", "workspace", wsID, "error", err)
	} else {
		h.logger.Error("builder event failed", "workspace", wsID, "error", err)
	}
	_ = sse.ConsoleError(err)
}

// rejected reports whether err was caused by the event rather than the server.
func rejected(err error) bool {
	return errors.Is(err, workspace.ErrCatalogUnavailable) ||
		errors.Is(err, placement.ErrInvalidDrop) ||
		errors.Is(err, dom.ErrUnknownNode) ||
		errors.Is(err, dom.ErrDuplicateNode) ||
		errors.Is(err, settings.ErrNoDialog)
}

func patch(sse *datastar.ServerSentEventGenerator, c dom.Change) error {
	switch c := c.(type) {
	case dom.ContentReplaced:
		return sse.PatchElementTempl(render.Node(c.ID, c.ModuleID, c.Class, c.Content))
	case dom.PlaceholderHidden:
		return sse.PatchElementTempl(render.Placeholder(false))
	case dom.OverlayAppended:
		return sse.PatchElementTempl(c.Content, datastar.WithSelector("body"), datastar.WithModeAppend())
	case dom.OverlayRemoved:
		return sse.RemoveElement("#" + c.ID)
	case dom.SignalsPatched:
		return sse.MarshalAndPatchSignals(c.Signals)
	case dom.ScriptQueued:
		return sse.ExecuteScript(c.Script)
	default:
		return fmt.Errorf("unknown document change %T", c)
	}
}
