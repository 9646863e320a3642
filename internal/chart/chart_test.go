package chart

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/folio/internal/catalog"
)

type fakeTargets map[string]bool

func (f fakeTargets) Has(id string) bool { return f[id] }

type fakeChart struct {
	target  string
	updates []Data
	err     error
}

func (c *fakeChart) Update(data Data) error {
	if c.err != nil {
		return c.err
	}
	c.updates = append(c.updates, data)
	return nil
}

type fakeSurface struct {
	created []*fakeChart
	specs   []Spec
	err     error
}

func (s *fakeSurface) Create(target string, spec Spec) (Chart, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := &fakeChart{target: target}
	s.created = append(s.created, c)
	s.specs = append(s.specs, spec)
	return c, nil
}

func (s *fakeSurface) chartsFor(target string) int {
	n := 0
	for _, c := range s.created {
		if c.target == target {
			n++
		}
	}
	return n
}

func testProjects(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(nil, []catalog.ProjectRecord{
		{ID: "p1", Name: "tinyqueue", Stars: 5, Forks: 1},
		{ID: "p2", Name: "dotfiles", Stars: 3, Forks: 0},
		{ID: "p3", Name: "ledger", Stars: 9, Forks: 4},
	})
	require.NoError(t, err)
	return c
}

func TestBind_CreatesThenUpdatesInPlace(t *testing.T) {
	surface := &fakeSurface{}
	b := NewBinding(testProjects(t), fakeTargets{"chart-1": true}, surface, nil)

	require.NoError(t, b.Bind("chart-1", []string{"p1", "p2"}))
	require.NoError(t, b.Bind("chart-1", []string{"p3"}))
	require.NoError(t, b.Bind("chart-1", nil))

	assert.Equal(t, 1, surface.chartsFor("chart-1"), "rebinding must not create a second chart")
	assert.Equal(t, 1, b.Live())

	first := surface.specs[0]
	assert.Equal(t, []string{"tinyqueue", "dotfiles"}, first.Data.Labels)
	assert.Equal(t, []int{5, 3}, first.Data.Datasets[0].Data)
	assert.Equal(t, []int{1, 0}, first.Data.Datasets[1].Data)

	updates := surface.created[0].updates
	require.Len(t, updates, 2)
	assert.Equal(t, []int{9}, updates[0].Datasets[0].Data)
	assert.Equal(t, []int{4}, updates[0].Datasets[1].Data)
	assert.Empty(t, updates[1].Labels)
	assert.Len(t, updates[1].Datasets, 2, "an empty chart still has both series")
}

func TestBind_OneChartPerTargetAcrossSequences(t *testing.T) {
	surface := &fakeSurface{}
	targets := fakeTargets{"a": true, "b": true}
	b := NewBinding(testProjects(t), targets, surface, nil)

	sequence := []struct {
		target string
		ids    []string
	}{
		{"a", []string{"p1"}},
		{"b", []string{"p2"}},
		{"a", []string{"p2", "p3"}},
		{"b", nil},
		{"a", []string{"ghost"}},
	}
	for _, step := range sequence {
		require.NoError(t, b.Bind(step.target, step.ids))
		assert.LessOrEqual(t, surface.chartsFor("a"), 1)
		assert.LessOrEqual(t, surface.chartsFor("b"), 1)
	}

	assert.Equal(t, 2, b.Live())
	assert.Len(t, surface.created[1].updates, 1)
}

func TestBind_FiltersByProjectListOrder(t *testing.T) {
	surface := &fakeSurface{}
	b := NewBinding(testProjects(t), fakeTargets{"c": true}, surface, nil)

	require.NoError(t, b.Bind("c", []string{"p3", "unknown", "p1"}))

	data := surface.specs[0].Data
	assert.Equal(t, []string{"tinyqueue", "ledger"}, data.Labels)
	assert.Equal(t, []int{5, 9}, data.Datasets[0].Data)
}

func TestBind_MissingTargetIsNoop(t *testing.T) {
	surface := &fakeSurface{}
	b := NewBinding(testProjects(t), fakeTargets{}, surface, nil)

	require.NoError(t, b.Bind("gone", []string{"p1"}))
	assert.Empty(t, surface.created)
	assert.False(t, b.Bound("gone"))
}

func TestBind_SurfaceErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("create", func(t *testing.T) {
		b := NewBinding(testProjects(t), fakeTargets{"c": true}, &fakeSurface{err: boom}, nil)
		err := b.Bind("c", []string{"p1"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, b.Live(), "failed create leaves no binding")
	})

	t.Run("update", func(t *testing.T) {
		surface := &fakeSurface{}
		b := NewBinding(testProjects(t), fakeTargets{"c": true}, surface, nil)
		require.NoError(t, b.Bind("c", []string{"p1"}))
		surface.created[0].err = boom

		assert.ErrorIs(t, b.Bind("c", []string{"p2"}), boom)
		assert.Equal(t, 1, b.Live())
	})
}

func TestNewSpec_Options(t *testing.T) {
	spec := NewSpec(BuildData(nil))
	assert.Equal(t, "bar", spec.Type)
	assert.True(t, spec.Options.Scales.Y.BeginAtZero)
	assert.Equal(t, "top", spec.Options.Plugins.Legend.Position)
	assert.Equal(t, []string{StarsLabel, ForksLabel}, []string{spec.Data.Datasets[0].Label, spec.Data.Datasets[1].Label})
}

type recordingSink struct {
	scripts []string
}

func (r *recordingSink) Script(js string) { r.scripts = append(r.scripts, js) }

func TestScriptSurface(t *testing.T) {
	sink := &recordingSink{}
	b := NewBinding(testProjects(t), fakeTargets{"chart-x": true}, NewScriptSurface(sink), nil)

	require.NoError(t, b.Bind("chart-x", []string{"p1"}))
	require.NoError(t, b.Bind("chart-x", []string{"p2"}))

	require.Len(t, sink.scripts, 2)
	assert.True(t, strings.HasPrefix(sink.scripts[0], `folio.charts.create("chart-x", {"type":"bar"`))
	assert.Contains(t, sink.scripts[0], `"beginAtZero":true`)
	assert.True(t, strings.HasPrefix(sink.scripts[1], `folio.charts.update("chart-x", {"labels":["dotfiles"]`))
}

func TestScriptSurface_EscapesMarkup(t *testing.T) {
	sink := &recordingSink{}
	projects, err := catalog.New(nil, []catalog.ProjectRecord{{ID: "x", Name: "</script><b>"}})
	require.NoError(t, err)

	b := NewBinding(projects, fakeTargets{"t": true}, NewScriptSurface(sink), nil)
	require.NoError(t, b.Bind("t", []string{"x"}))

	require.Len(t, sink.scripts, 1)
	assert.NotContains(t, sink.scripts[0], "</script>")
}
