// Package catalog holds the read-only module definitions and project
// records a page session works with, and the sources they are loaded from.
package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors for catalog loading.
var (
	// ErrMalformed reports a catalog document that does not match the contract.
	ErrMalformed = errors.New("malformed catalog document")
	// ErrUnavailable reports a source that could not be read.
	ErrUnavailable = errors.New("catalog source unavailable")
)

// Catalog is the immutable set of module definitions and user projects.
// It is safe for concurrent readers; nothing mutates it after New.
type Catalog struct {
	modules    []ModuleDefinition
	moduleIdx  map[string]int
	projects   []ProjectRecord
	projectIdx map[string]int
}

// New builds a catalog, rejecting duplicate ids and negative counters.
func New(modules []ModuleDefinition, projects []ProjectRecord) (*Catalog, error) {
	c := &Catalog{
		modules:    slices.Clone(modules),
		moduleIdx:  make(map[string]int, len(modules)),
		projects:   slices.Clone(projects),
		projectIdx: make(map[string]int, len(projects)),
	}

	for i, m := range c.modules {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: module at index %d has no id", ErrMalformed, i)
		}
		if _, dup := c.moduleIdx[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate module id %q", ErrMalformed, m.ID)
		}
		c.moduleIdx[m.ID] = i
	}

	for i, p := range c.projects {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: project at index %d has no id", ErrMalformed, i)
		}
		if p.Stars < 0 || p.Forks < 0 {
			return nil, fmt.Errorf("%w: project %q has negative counters", ErrMalformed, p.ID)
		}
		if _, dup := c.projectIdx[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate project id %q", ErrMalformed, p.ID)
		}
		c.projectIdx[p.ID] = i
	}

	return c, nil
}

// FromDocument builds a catalog from a decoded document.
func FromDocument(doc Document) (*Catalog, error) {
	return New(doc.Modules, doc.UserProjects)
}

// Modules returns the module definitions in catalog order.
func (c *Catalog) Modules() []ModuleDefinition {
	return slices.Clone(c.modules)
}

// Module looks up a module definition by id.
func (c *Catalog) Module(id string) (ModuleDefinition, bool) {
	i, ok := c.moduleIdx[id]
	if !ok {
		return ModuleDefinition{}, false
	}
	return c.modules[i], true
}

// Projects returns all project records in catalog order.
func (c *Catalog) Projects() []ProjectRecord {
	return slices.Clone(c.projects)
}

// HasProject reports whether id names a loaded project.
func (c *Catalog) HasProject(id string) bool {
	_, ok := c.projectIdx[id]
	return ok
}

// SelectProjects returns the projects whose id is in ids, in project-list
// order. Unknown ids are dropped.
func (c *Catalog) SelectProjects(ids []string) []ProjectRecord {
	if len(ids) == 0 {
		return []ProjectRecord{}
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	out := make([]ProjectRecord, 0, len(ids))
	for _, p := range c.projects {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// FilterProjectIDs is SelectProjects reduced to ids.
func (c *Catalog) FilterProjectIDs(ids []string) []string {
	projects := c.SelectProjects(ids)
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

// Document returns the catalog in its inbound contract shape.
func (c *Catalog) Document() Document {
	return Document{
		Modules:      c.Modules(),
		UserProjects: c.Projects(),
	}
}
