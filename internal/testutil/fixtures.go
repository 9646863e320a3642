package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/chart"
)

// Fixture module ids.
const (
	ChartModule = "chart"
	StackModule = "stack"
	PetModule   = "pet"
	StatsModule = "gh-stats"
)

// NewCatalog returns a small catalog: a configurable project chart with
// default projects p1 and p2, a tech stack, a pet project and GitHub stats,
// plus projects p1(5★, 1 fork), p2(3★, 0 forks) and p3(9★, 4 forks).
func NewCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.ModuleDefinition{
			{ID: StatsModule, Title: "GitHub activity", Icon: "insights", Type: catalog.TypeGitHubStats, Data: catalog.GitHubStats{
				Contributions: 1204, Stars: 312, Repositories: 41,
				TopLanguages: []catalog.LanguageShare{{Lang: "Go", Percent: 70}, {Lang: "TypeScript", Percent: 30}},
			}},
			{ID: StackModule, Title: "Tech stack", Type: catalog.TypeTechStack, Data: catalog.TechStack{Tags: []string{"Go", "SQLite", "Datastar"}}},
			{ID: ChartModule, Title: "My projects", Icon: "bar_chart", Type: catalog.TypeProjectChart, IsConfigurable: true,
				Data: catalog.ProjectChart{DefaultProjects: []string{"p1", "p2"}}},
			{ID: PetModule, Title: "Pet project", Type: catalog.TypePetProject, Data: catalog.PetProject{
				Name: "tinyqueue", Image: "https://example.com/tinyqueue.png", Description: "A tiny job queue", Link: "https://github.com/example/tinyqueue",
			}},
		},
		[]catalog.ProjectRecord{
			{ID: "p1", Name: "tinyqueue", Stars: 5, Forks: 1},
			{ID: "p2", Name: "dotfiles", Stars: 3, Forks: 0},
			{ID: "p3", Name: "ledger", Stars: 9, Forks: 4},
		},
	)
	if err != nil {
		t.Fatalf("build fixture catalog: %v", err)
	}
	return c
}

// RecordingSurface is a chart.Surface that keeps every chart it creates.
type RecordingSurface struct {
	Charts []*RecordedChart
}

// RecordedChart is a chart created by RecordingSurface. History holds the
// data it was created with followed by every update.
type RecordedChart struct {
	Target  string
	History []chart.Data
}

// Create implements chart.Surface.
func (s *RecordingSurface) Create(target string, spec chart.Spec) (chart.Chart, error) {
	c := &RecordedChart{Target: target, History: []chart.Data{spec.Data}}
	s.Charts = append(s.Charts, c)
	return c, nil
}

// Update implements chart.Chart.
func (c *RecordedChart) Update(data chart.Data) error {
	c.History = append(c.History, data)
	return nil
}

// Latest returns the data currently shown.
func (c *RecordedChart) Latest() chart.Data {
	return c.History[len(c.History)-1]
}

// For returns the charts created for target.
func (s *RecordingSurface) For(target string) []*RecordedChart {
	var out []*RecordedChart
	for _, c := range s.Charts {
		if c.Target == target {
			out = append(out, c)
		}
	}
	return out
}

// WriteCatalog writes the NewCatalog document as JSON to dir/catalog.json
// and returns its path.
func WriteCatalog(t testing.TB, dir string) string {
	t.Helper()
	data, err := json.MarshalIndent(NewCatalog(t).Document(), "", "  ")
	if err != nil {
		t.Fatalf("encode fixture catalog: %v", err)
	}
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture catalog: %v", err)
	}
	return path
}
