// Package dom mirrors the parts of the builder page the server drives:
// canvas nodes, the empty-state placeholder, body-level overlays and the
// render targets mounted inside nodes. Every mutation is appended to a
// journal that the transport drains and replays in the browser in order.
package dom

import (
	"errors"
	"fmt"
	"slices"

	"github.com/a-h/templ"
)

// Errors returned by document mutations.
var (
	ErrDuplicateNode = errors.New("node already exists")
	ErrUnknownNode   = errors.New("unknown node")
)

// Handler reacts to an event dispatched on a node.
type Handler func() error

// Node is one element on the canvas.
type Node struct {
	ID       string
	ModuleID string
	Class    string

	content  templ.Component
	targets  []string
	handlers map[string]Handler
}

// Content returns the component currently rendered inside the node, or nil
// for an inert node.
func (n *Node) Content() templ.Component {
	return n.content
}

// Inert reports whether nothing has been rendered into the node.
func (n *Node) Inert() bool {
	return n.content == nil
}

// Targets returns the render target ids mounted inside the node.
func (n *Node) Targets() []string {
	return slices.Clone(n.targets)
}

// Document is the server-side view of one builder page.
// It is not safe for concurrent use; callers serialize access.
type Document struct {
	placeholderHidden bool
	order             []string
	nodes             map[string]*Node
	targets           map[string]string // target id -> owning node id
	overlays          map[string]struct{}
	journal           []Change
}

// New returns an empty document with the placeholder visible.
func New() *Document {
	return &Document{
		nodes:    make(map[string]*Node),
		targets:  make(map[string]string),
		overlays: make(map[string]struct{}),
	}
}

// Insert adds an element at index among the canvas nodes. The element has no
// rendered content until SetContent is called.
func (d *Document) Insert(id, moduleID string, index int) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownNode)
	}
	if _, ok := d.nodes[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}

	n := &Node{
		ID:       id,
		ModuleID: moduleID,
		handlers: make(map[string]Handler),
	}
	d.nodes[id] = n

	index = max(0, min(index, len(d.order)))
	d.order = slices.Insert(d.order, index, id)
	return n, nil
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Order returns the canvas node ids in display order.
func (d *Document) Order() []string {
	return slices.Clone(d.order)
}

// Len returns the number of canvas nodes.
func (d *Document) Len() int {
	return len(d.order)
}

// Has reports whether id is a canvas node or a render target mounted inside
// one.
func (d *Document) Has(id string) bool {
	if _, ok := d.nodes[id]; ok {
		return true
	}
	_, ok := d.targets[id]
	return ok
}

// SetContent replaces the node's inner markup and records the render targets
// it contains. Targets previously mounted in the node are unmounted.
func (d *Document) SetContent(id, class string, c templ.Component, targets ...string) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	for _, t := range targets {
		if owner, taken := d.targets[t]; taken && owner != id {
			return fmt.Errorf("%w: target %s already mounted in %s", ErrDuplicateNode, t, owner)
		}
	}
	for _, t := range n.targets {
		delete(d.targets, t)
	}
	for _, t := range targets {
		d.targets[t] = id
	}

	n.content = c
	n.targets = slices.Clone(targets)
	if class != "" {
		n.Class = class
	}
	d.record(ContentReplaced{ID: id, ModuleID: n.ModuleID, Class: n.Class, Content: c})
	return nil
}

// HidePlaceholder hides the empty-state placeholder. It reports whether the
// call changed anything; only the first hide is journaled.
func (d *Document) HidePlaceholder() bool {
	if d.placeholderHidden {
		return false
	}
	d.placeholderHidden = true
	d.record(PlaceholderHidden{})
	return true
}

// PlaceholderVisible reports whether the empty-state placeholder is shown.
func (d *Document) PlaceholderVisible() bool {
	return !d.placeholderHidden
}

// Reorder sets the canvas order. ids must be a permutation of the current
// node ids.
func (d *Document) Reorder(ids []string) error {
	if len(ids) != len(d.order) {
		return fmt.Errorf("%w: reorder lists %d nodes, canvas has %d", ErrUnknownNode, len(ids), len(d.order))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := d.nodes[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrDuplicateNode, id)
		}
		seen[id] = struct{}{}
	}
	d.order = slices.Clone(ids)
	return nil
}

// On attaches a handler for event to a single node, replacing any previous
// handler for the same event.
func (d *Document) On(id, event string, h Handler) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.handlers[event] = h
	return nil
}

// Dispatch runs the node's handler for event. It reports false when the node
// has no such handler.
func (d *Document) Dispatch(id, event string) (bool, error) {
	n, ok := d.nodes[id]
	if !ok {
		return false, nil
	}
	h, ok := n.handlers[event]
	if !ok {
		return false, nil
	}
	return true, h()
}

// AppendOverlay adds a body-level element such as a modal dialog.
func (d *Document) AppendOverlay(id string, c templ.Component) error {
	if _, ok := d.overlays[id]; ok {
		return fmt.Errorf("%w: overlay %s", ErrDuplicateNode, id)
	}
	d.overlays[id] = struct{}{}
	d.record(OverlayAppended{ID: id, Content: c})
	return nil
}

// RemoveOverlay removes a body-level element. Removing an absent overlay is
// a no-op.
func (d *Document) RemoveOverlay(id string) bool {
	if _, ok := d.overlays[id]; !ok {
		return false
	}
	delete(d.overlays, id)
	d.record(OverlayRemoved{ID: id})
	return true
}

// HasOverlay reports whether the overlay is present.
func (d *Document) HasOverlay(id string) bool {
	_, ok := d.overlays[id]
	return ok
}

// PatchSignals queues a client signal update.
func (d *Document) PatchSignals(signals map[string]any) {
	d.record(SignalsPatched{Signals: signals})
}

// Script queues a script to run in the page after the preceding changes
// have been applied.
func (d *Document) Script(js string) {
	d.record(ScriptQueued{Script: js})
}

// Drain returns and clears the journal.
func (d *Document) Drain() []Change {
	out := d.journal
	d.journal = nil
	return out
}

func (d *Document) record(c Change) {
	d.journal = append(d.journal, c)
}
