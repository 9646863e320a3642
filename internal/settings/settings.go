// Package settings implements the project selection dialog of chart
// instances. A Dialog is a scoped resource: once confirmed or cancelled its
// overlay is removed and it cannot be used again.
package settings

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/dom"
	"github.com/leapstack-labs/folio/internal/render"
)

// Errors returned by the dialog flow.
var (
	ErrUnknownModule = errors.New("unknown module")
	ErrNoDialog      = errors.New("no dialog open")
	ErrClosed        = errors.New("dialog closed")
)

// Instance is the placed module a dialog edits.
type Instance interface {
	ChartTarget() string
	Selection() []string
	SetSelection(ids []string)
}

// Catalog is the read-only data the dialog lists.
type Catalog interface {
	Module(id string) (catalog.ModuleDefinition, bool)
	Projects() []catalog.ProjectRecord
	FilterProjectIDs(ids []string) []string
}

// Config configures a Manager.
type Config struct {
	Document *dom.Document
	Catalog  Catalog
	Charts   render.ChartBinder
	// Preselect checks the instance's current selection when the dialog
	// opens. When false every checkbox starts unchecked.
	Preselect bool
	Logger    *slog.Logger
}

// Manager opens dialogs for one page. At most one dialog is open at a time.
type Manager struct {
	doc       *dom.Document
	catalog   Catalog
	charts    render.ChartBinder
	preselect bool
	logger    *slog.Logger
	current   *Dialog
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		doc:       cfg.Document,
		catalog:   cfg.Catalog,
		charts:    cfg.Charts,
		preselect: cfg.Preselect,
		logger:    logger,
	}
}

// Open shows the dialog for inst, closing any dialog already open.
func (m *Manager) Open(moduleID string, inst Instance) (*Dialog, error) {
	def, ok := m.catalog.Module(moduleID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, moduleID)
	}

	if m.current != nil {
		m.current.Cancel()
	}

	var checked []string
	if m.preselect {
		checked = inst.Selection()
	}

	view := render.DialogView{
		ModuleID: def.ID,
		Title:    def.Title,
		Projects: m.catalog.Projects(),
		Checked:  checked,
	}
	if err := m.doc.AppendOverlay(render.DialogID, render.Dialog(view)); err != nil {
		return nil, err
	}

	d := &Dialog{m: m, inst: inst}
	m.current = d
	m.logger.Debug("settings dialog opened", "module", def.ID, "target", inst.ChartTarget())
	return d, nil
}

// Current returns the open dialog, or nil.
func (m *Manager) Current() *Dialog {
	return m.current
}

// Confirm confirms the open dialog.
func (m *Manager) Confirm(projectIDs []string) error {
	if m.current == nil {
		return ErrNoDialog
	}
	return m.current.Confirm(projectIDs)
}

// Cancel dismisses the open dialog. It reports whether a dialog was open.
func (m *Manager) Cancel() bool {
	if m.current == nil {
		return false
	}
	m.current.Cancel()
	return true
}

// Dialog is one open settings dialog.
type Dialog struct {
	m      *Manager
	inst   Instance
	closed bool
}

// Confirm replaces the instance selection with the known ids among
// projectIDs, rebinds its chart with exactly that set and closes the
// dialog. The dialog is closed even when binding fails.
func (d *Dialog) Confirm(projectIDs []string) error {
	if d.closed {
		return ErrClosed
	}
	defer d.teardown()

	picked := d.m.catalog.FilterProjectIDs(projectIDs)
	d.inst.SetSelection(picked)

	target := d.inst.ChartTarget()
	if target == "" {
		return nil
	}
	if err := d.m.charts.Bind(target, picked); err != nil {
		return fmt.Errorf("rebind %s: %w", target, err)
	}
	return nil
}

// Cancel closes the dialog without changing anything.
func (d *Dialog) Cancel() {
	d.teardown()
}

// Closed reports whether the dialog has been dismissed.
func (d *Dialog) Closed() bool {
	return d.closed
}

func (d *Dialog) teardown() {
	if d.closed {
		return
	}
	d.closed = true
	d.m.doc.RemoveOverlay(render.DialogID)
	if d.m.current == d {
		d.m.current = nil
	}
}
