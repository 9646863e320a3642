package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/folio/internal/catalog"
)

var errNotOpened = errors.New("database not opened")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ImportCatalog replaces the stored modules and projects with doc in one
// transaction.
func (s *SQLiteStore) ImportCatalog(ctx context.Context, doc catalog.Document, source string) (_ *Import, err error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if _, err := catalog.FromDocument(doc); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM modules`); err != nil {
		return nil, fmt.Errorf("failed to clear modules: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return nil, fmt.Errorf("failed to clear projects: %w", err)
	}

	for i, m := range doc.Modules {
		def, mErr := json.Marshal(m)
		if mErr != nil {
			return nil, fmt.Errorf("failed to encode module %s: %w", m.ID, mErr)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO modules (id, position, title, type, definition) VALUES (?, ?, ?, ?, ?)`,
			m.ID, i, m.Title, string(m.Type), string(def),
		); err != nil {
			return nil, fmt.Errorf("failed to insert module %s: %w", m.ID, err)
		}
	}

	for i, p := range doc.UserProjects {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO projects (id, position, name, stars, forks) VALUES (?, ?, ?, ?, ?)`,
			p.ID, i, p.Name, p.Stars, p.Forks,
		); err != nil {
			return nil, fmt.Errorf("failed to insert project %s: %w", p.ID, err)
		}
	}

	imp := &Import{
		ID:         uuid.New().String(),
		Source:     source,
		Modules:    len(doc.Modules),
		Projects:   len(doc.UserProjects),
		ImportedAt: s.now().UTC(),
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, modules, projects, imported_at) VALUES (?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Modules, imp.Projects, imp.ImportedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return imp, nil
}

// Load reads the stored catalog. A store that has never been seeded is
// reported as unavailable.
func (s *SQLiteStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, errNotOpened)
	}

	last, err := s.LastImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}
	if last == nil {
		return nil, fmt.Errorf("%w: catalog store has not been seeded", catalog.ErrUnavailable)
	}

	modules, err := s.listModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}
	projects, err := s.listProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}

	return catalog.New(modules, projects)
}

func (s *SQLiteStore) listModules(ctx context.Context) ([]catalog.ModuleDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, definition FROM modules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var modules []catalog.ModuleDefinition
	for rows.Next() {
		var id, def string
		if err := rows.Scan(&id, &def); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		var m catalog.ModuleDefinition
		if err := json.Unmarshal([]byte(def), &m); err != nil {
			return nil, fmt.Errorf("failed to decode module %s: %w", id, err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (s *SQLiteStore) listProjects(ctx context.Context) ([]catalog.ProjectRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, stars, forks FROM projects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []catalog.ProjectRecord
	for rows.Next() {
		var p catalog.ProjectRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Stars, &p.Forks); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// LastImport returns the most recent import, or nil if there is none.
func (s *SQLiteStore) LastImport(ctx context.Context) (*Import, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	imp := &Import{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, modules, projects, imported_at FROM imports ORDER BY imported_at DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.Modules, &imp.Projects, &imp.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last import: %w", err)
	}
	return imp, nil
}
