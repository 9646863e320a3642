// Package workspace holds the server side of builder page sessions.
//
// A workspace is one open page: the catalog snapshot loaded when the page
// was served, the document mirror, the chart registry, the placement
// controller and the settings dialogs. Events on a workspace are serialized.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/chart"
	"github.com/leapstack-labs/folio/internal/dom"
	"github.com/leapstack-labs/folio/internal/placement"
	"github.com/leapstack-labs/folio/internal/render"
	"github.com/leapstack-labs/folio/internal/settings"
)

// Errors returned by workspaces.
var (
	ErrNotFound           = errors.New("workspace not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Session is what an event handler sees of a workspace while it holds it.
type Session struct {
	Catalog    *catalog.Catalog
	Document   *dom.Document
	Charts     *chart.Binding
	Controller *placement.Controller
	Dialogs    *settings.Manager
}

// Workspace is one builder page session.
type Workspace struct {
	ID string

	mu       sync.Mutex
	loadErr  error
	session  *Session
	lastSeen time.Time
	streams  int
	clock    func() time.Time
}

// Err returns the catalog load error, if any.
func (w *Workspace) Err() error {
	return w.loadErr
}

// Catalog returns the workspace's catalog snapshot.
func (w *Workspace) Catalog() (*catalog.Catalog, error) {
	if w.loadErr != nil {
		return nil, w.loadErr
	}
	return w.session.Catalog, nil
}

// Do runs fn with exclusive access to the workspace and returns the document
// changes it made, in order. The changes are returned even when fn fails.
func (w *Workspace) Do(fn func(s *Session) error) ([]dom.Change, error) {
	if w.loadErr != nil {
		return nil, w.loadErr
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastSeen = w.clock()
	err := fn(w.session)
	return w.session.Document.Drain(), err
}

// Attach marks the workspace as held open by a page's event stream. It is
// never idle while attached. The returned detach func must be called when
// the stream ends.
func (w *Workspace) Attach() (detach func()) {
	w.mu.Lock()
	w.streams++
	w.lastSeen = w.clock()
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			w.streams--
			w.lastSeen = w.clock()
			w.mu.Unlock()
		})
	}
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.streams > 0 {
		return 0
	}
	return now.Sub(w.lastSeen)
}

// Config configures a Manager.
type Config struct {
	Source   catalog.Source
	Renderer *render.Renderer
	// Preselect checks an instance's current selection when its settings
	// dialog opens.
	Preselect bool
	// TTL is how long an idle workspace is kept. Zero keeps workspaces
	// forever.
	TTL    time.Duration
	Logger *slog.Logger
}

// Manager creates and tracks workspaces.
type Manager struct {
	source    catalog.Source
	renderer  *render.Renderer
	preselect bool
	ttl       time.Duration
	logger    *slog.Logger

	mu    sync.RWMutex
	items map[string]*Workspace
	now   func() time.Time
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.New(logger)
	}
	return &Manager{
		source:    cfg.Source,
		renderer:  renderer,
		preselect: cfg.Preselect,
		ttl:       cfg.TTL,
		logger:    logger,
		items:     make(map[string]*Workspace),
		now:       time.Now,
	}
}

// Create loads the catalog and opens a new workspace. A load failure does
// not fail Create: the workspace records it (see Err) and rejects events.
func (m *Manager) Create(ctx context.Context) *Workspace {
	w := &Workspace{ID: uuid.NewString(), lastSeen: m.now(), clock: m.clock}

	cat, err := m.source.Load(ctx)
	if err != nil {
		m.logger.Error("failed to load catalog", "workspace", w.ID, "error", err)
		w.loadErr = fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	} else {
		w.session = m.newSession(cat)
	}

	m.mu.Lock()
	m.items[w.ID] = w
	m.mu.Unlock()

	m.logger.Debug("workspace created", "workspace", w.ID)
	return w
}

func (m *Manager) clock() time.Time {
	return m.now()
}

func (m *Manager) newSession(cat *catalog.Catalog) *Session {
	doc := dom.New()
	charts := chart.NewBinding(cat, doc, chart.NewScriptSurface(doc), m.logger)
	dialogs := settings.NewManager(settings.Config{
		Document:  doc,
		Catalog:   cat,
		Charts:    charts,
		Preselect: m.preselect,
		Logger:    m.logger,
	})
	ctrl := placement.New(placement.Config{
		Document: doc,
		Modules:  cat,
		Renderer: m.renderer,
		Charts:   charts,
		Open: func(inst *placement.Instance) error {
			_, err := dialogs.Open(inst.ModuleID, inst)
			return err
		},
		Logger: m.logger,
	})

	return &Session{
		Catalog:    cat,
		Document:   doc,
		Charts:     charts,
		Controller: ctrl,
		Dialogs:    dialogs,
	}
}

// Get returns the workspace with the given id.
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return w, nil
}

// Len returns the number of open workspaces.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Prune closes workspaces idle for longer than the TTL and returns how many
// were closed.
func (m *Manager) Prune() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, w := range m.items {
		if w.idleSince(now) > m.ttl {
			delete(m.items, id)
			pruned++
		}
	}
	if pruned > 0 {
		m.logger.Debug("pruned idle workspaces", "count", pruned, "remaining", len(m.items))
	}
	return pruned
}

// Run prunes idle workspaces periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(max(m.ttl/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Prune()
		}
	}
}
