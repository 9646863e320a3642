// Package placement implements the toolbox to canvas drop contract.
//
// The toolbox is a clone-only palette; dropping one of its cards on the
// canvas creates an independent instance of the module. The controller
// renders the instance into the dropped node, runs its post-mount action and
// wires the instance's settings affordance.
package placement

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/dom"
	"github.com/leapstack-labs/folio/internal/render"
)

// ModuleClass is the class of a rendered canvas node.
const ModuleClass = "canvas-module paper-shadow"

// SettingsEvent is the node event that opens an instance's settings.
const SettingsEvent = "settings"

// ErrInvalidDrop is returned for drop events that cannot be inserted.
var ErrInvalidDrop = errors.New("invalid drop")

// DropEvent is the drag-drop capability's "item added" notification.
type DropEvent struct {
	// ItemID is the id of the dropped element.
	ItemID string
	// ModuleID is the originating module id carried by the toolbox card.
	ModuleID string
	// Index is the drop position among the canvas children.
	Index int
}

// Modules resolves module ids and filters project ids.
type Modules interface {
	Module(id string) (catalog.ModuleDefinition, bool)
	FilterProjectIDs(ids []string) []string
}

// Renderer renders a module into a node.
type Renderer interface {
	Render(def catalog.ModuleDefinition, mount string) render.Fragment
}

// Opener opens the settings dialog for an instance.
type Opener func(inst *Instance) error

// Instance is one placed module on the canvas.
type Instance struct {
	NodeID   string
	ModuleID string

	target    string
	selection []string
}

// ChartTarget returns the instance's chart target, or "" if the module has
// no chart.
func (i *Instance) ChartTarget() string {
	return i.target
}

// Selection returns the project ids the instance currently displays.
func (i *Instance) Selection() []string {
	return slices.Clone(i.selection)
}

// SetSelection replaces the selection wholesale.
func (i *Instance) SetSelection(ids []string) {
	i.selection = slices.Clone(ids)
}

// Config configures a Controller.
type Config struct {
	Document *dom.Document
	Modules  Modules
	Renderer Renderer
	Charts   render.ChartBinder
	Open     Opener
	Logger   *slog.Logger
}

// Controller handles placement events for one page.
// It is not safe for concurrent use.
type Controller struct {
	doc       *dom.Document
	modules   Modules
	renderer  Renderer
	charts    render.ChartBinder
	open      Opener
	logger    *slog.Logger
	instances map[string]*Instance
}

// New creates a Controller.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		doc:       cfg.Document,
		modules:   cfg.Modules,
		renderer:  cfg.Renderer,
		charts:    cfg.Charts,
		open:      cfg.Open,
		logger:    logger,
		instances: make(map[string]*Instance),
	}
}

// OnAdd places a dropped toolbox item. An item whose module cannot be
// resolved stays in the canvas as an inert node and no error is returned;
// the returned instance is nil in that case.
func (c *Controller) OnAdd(ev DropEvent) (*Instance, error) {
	if ev.ItemID == "" {
		return nil, fmt.Errorf("%w: missing item id", ErrInvalidDrop)
	}
	if _, err := c.doc.Insert(ev.ItemID, ev.ModuleID, ev.Index); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDrop, err)
	}
	c.doc.HidePlaceholder()

	def, ok := c.modules.Module(ev.ModuleID)
	if !ok {
		c.logger.Debug("dropped item has no module, leaving it inert", "item", ev.ItemID, "module", ev.ModuleID)
		return nil, nil
	}

	frag := c.renderer.Render(def, ev.ItemID)
	if err := c.doc.SetContent(ev.ItemID, ModuleClass, frag.Component, frag.Targets...); err != nil {
		return nil, fmt.Errorf("place %s: %w", ev.ItemID, err)
	}

	inst := &Instance{NodeID: ev.ItemID, ModuleID: def.ID}
	if pc, ok := def.Data.(catalog.ProjectChart); ok {
		inst.target = render.ChartTarget(ev.ItemID)
		inst.selection = c.modules.FilterProjectIDs(pc.DefaultProjects)
	}
	c.instances[ev.ItemID] = inst

	if frag.PostMount != nil {
		if err := frag.PostMount(c.charts); err != nil {
			return inst, fmt.Errorf("mount %s: %w", ev.ItemID, err)
		}
	}

	if def.IsConfigurable && c.open != nil {
		if err := c.doc.On(ev.ItemID, SettingsEvent, func() error { return c.open(inst) }); err != nil {
			return inst, err
		}
	}

	c.logger.Debug("module placed", "item", ev.ItemID, "module", def.ID, "type", def.Type)
	return inst, nil
}

// Instance returns the instance placed in node id.
func (c *Controller) Instance(nodeID string) (*Instance, bool) {
	inst, ok := c.instances[nodeID]
	return inst, ok
}

// Len returns the number of placed instances.
func (c *Controller) Len() int {
	return len(c.instances)
}

// Reorder applies a new canvas order.
func (c *Controller) Reorder(ids []string) error {
	return c.doc.Reorder(ids)
}

// OpenSettings fires the settings affordance of node id. Nodes without one
// are ignored.
func (c *Controller) OpenSettings(nodeID string) error {
	handled, err := c.doc.Dispatch(nodeID, SettingsEvent)
	if err != nil {
		return fmt.Errorf("open settings for %s: %w", nodeID, err)
	}
	if !handled {
		c.logger.Debug("node has no settings affordance", "node", nodeID)
	}
	return nil
}
