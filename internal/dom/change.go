package dom

import "github.com/a-h/templ"

// Change is one journaled document mutation.
type Change interface {
	change()
}

// ContentReplaced means a node's markup was replaced.
type ContentReplaced struct {
	ID       string
	ModuleID string
	Class    string
	Content  templ.Component
}

// PlaceholderHidden means the canvas empty-state placeholder was hidden.
type PlaceholderHidden struct{}

// OverlayAppended means a body-level element was added.
type OverlayAppended struct {
	ID      string
	Content templ.Component
}

// OverlayRemoved means a body-level element was removed.
type OverlayRemoved struct {
	ID string
}

// SignalsPatched carries client signal values.
type SignalsPatched struct {
	Signals map[string]any
}

// ScriptQueued carries a script to execute in the page.
type ScriptQueued struct {
	Script string
}

func (ContentReplaced) change()   {}
func (PlaceholderHidden) change() {}
func (OverlayAppended) change()   {}
func (OverlayRemoved) change()    {}
func (SignalsPatched) change()    {}
func (ScriptQueued) change()      {}
