package state

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"modules", "projects", "imports"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		_ = rows.Close()
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
	_, err = store.ImportCatalog(ctx, catalog.Document{}, "x")
	assert.Error(t, err)
	assert.Error(t, store.Migrate())
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	want := testutil.NewCatalog(t).Document()

	imp, err := store.ImportCatalog(ctx, want, "fixture.json")
	require.NoError(t, err)
	assert.Equal(t, 4, imp.Modules)
	assert.Equal(t, 3, imp.Projects)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got.Document()); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}

	last, err := store.LastImport(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, imp.ID, last.ID)
	assert.Equal(t, "fixture.json", last.Source)
}

func TestSQLiteStore_ImportReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.ImportCatalog(ctx, testutil.NewCatalog(t).Document(), "first")
	require.NoError(t, err)

	second := catalog.Document{
		Modules: []catalog.ModuleDefinition{
			{ID: "only", Title: "Only", Type: catalog.TypeTechStack, Data: catalog.TechStack{Tags: []string{"Go"}}},
		},
		UserProjects: []catalog.ProjectRecord{{ID: "z", Name: "zeta", Stars: 1}},
	}
	_, err = store.ImportCatalog(ctx, second, "second")
	require.NoError(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Modules(), 1)
	assert.Equal(t, "only", got.Modules()[0].ID)
	assert.Equal(t, []catalog.ProjectRecord{{ID: "z", Name: "zeta", Stars: 1}}, got.Projects())
}

func TestSQLiteStore_KeepsUnknownModules(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	doc := catalog.Document{
		Modules: []catalog.ModuleDefinition{
			{ID: "odd", Title: "Odd", Type: "hologram", Data: catalog.Unknown{Type: "hologram", Raw: []byte(`{"x":1}`)}},
		},
	}
	_, err := store.ImportCatalog(ctx, doc, "odd")
	require.NoError(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	m, ok := got.Module("odd")
	require.True(t, ok)
	assert.IsType(t, catalog.Unknown{}, m.Data)
}

func TestSQLiteStore_RejectsInvalidCatalog(t *testing.T) {
	store := setupTestStore(t)
	doc := catalog.Document{UserProjects: []catalog.ProjectRecord{{ID: "a"}, {ID: "a"}}}

	_, err := store.ImportCatalog(context.Background(), doc, "dup")
	assert.ErrorIs(t, err, catalog.ErrMalformed)

	last, err := store.LastImport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestSQLiteStore_LoadUnseeded(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

// =============================================================================
// Failure paths
// =============================================================================

func TestSQLiteStore_ImportRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewWithDB(db)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	doc := catalog.Document{
		UserProjects: []catalog.ProjectRecord{{ID: "p1", Name: "one", Stars: 1}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM modules")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs("p1", 0, "one", 1, 0).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = store.ImportCatalog(context.Background(), doc, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, source, modules, projects, imported_at FROM imports")).
		WillReturnError(errors.New("database is locked"))

	_, err = NewWithDB(db).Load(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadCorruptDefinition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM imports")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source", "modules", "projects", "imported_at"}).
			AddRow("i1", "x", 1, 0, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, definition FROM modules")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "definition"}).AddRow("m1", "{not json"))

	_, err = NewWithDB(db).Load(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
