package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)
	c, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		modules  []ModuleDefinition
		projects []ProjectRecord
	}{
		{
			name: "duplicate module id",
			modules: []ModuleDefinition{
				{ID: "a", Type: TypeTechStack, Data: TechStack{}},
				{ID: "a", Type: TypeTechStack, Data: TechStack{}},
			},
		},
		{
			name:    "empty module id",
			modules: []ModuleDefinition{{Type: TypeTechStack, Data: TechStack{}}},
		},
		{
			name:     "duplicate project id",
			projects: []ProjectRecord{{ID: "p1"}, {ID: "p1"}},
		},
		{
			name:     "negative stars",
			projects: []ProjectRecord{{ID: "p1", Stars: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.modules, tt.projects)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestCatalog_Module(t *testing.T) {
	c := loadFixture(t)

	m, ok := c.Module("chart")
	require.True(t, ok)
	assert.Equal(t, TypeProjectChart, m.Type)
	assert.True(t, m.IsConfigurable)
	assert.Equal(t, ProjectChart{DefaultProjects: []string{"p1", "p2"}}, m.Data)

	_, ok = c.Module("missing")
	assert.False(t, ok)
}

func TestCatalog_SelectProjects(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{name: "project list order wins", ids: []string{"p3", "p1"}, want: []string{"p1", "p3"}},
		{name: "unknown ids dropped", ids: []string{"p2", "nope"}, want: []string{"p2"}},
		{name: "duplicates collapse", ids: []string{"p2", "p2"}, want: []string{"p2"}},
		{name: "empty selection", ids: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.FilterProjectIDs(tt.ids))
		})
	}
}

func TestCatalog_ModulesIsACopy(t *testing.T) {
	c := loadFixture(t)

	mods := c.Modules()
	mods[0].Title = "changed"

	m, _ := c.Module(mods[0].ID)
	assert.NotEqual(t, "changed", m.Title)
}

func TestIconOrDefault(t *testing.T) {
	assert.Equal(t, DefaultIcon, ModuleDefinition{}.IconOrDefault())
	assert.Equal(t, "pets", ModuleDefinition{Icon: "pets"}.IconOrDefault())
}

func TestDecode_YAMLMatchesJSON(t *testing.T) {
	jsonData, err := os.ReadFile(filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)
	yamlData, err := os.ReadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	fromJSON, err := DecodeDocument(jsonData, FormatJSON)
	require.NoError(t, err)
	fromYAML, err := DecodeDocument(yamlData, FormatYAML)
	require.NoError(t, err)

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("YAML document differs from JSON (-json +yaml):\n%s", diff)
	}
}

func TestDecode_UnknownTypeKept(t *testing.T) {
	tests := []struct {
		name    string
		module  string
		wantRaw string
	}{
		{name: "object data", module: `{"id": "x", "title": "X", "type": "timeline", "data": {"years": 3}}`, wantRaw: `{"years": 3}`},
		{name: "no data", module: `{"id": "x", "title": "X", "type": "video"}`},
		{name: "null data", module: `{"id": "x", "title": "X", "type": "video", "data": null}`, wantRaw: `null`},
		{name: "array data", module: `{"id": "x", "title": "X", "type": "gallery", "data": [1, 2]}`, wantRaw: `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"modules": [` + tt.module + `], "user_projects": []}`

			c, err := Decode([]byte(doc), FormatJSON)
			require.NoError(t, err)

			m, ok := c.Module("x")
			require.True(t, ok)
			u, isUnknown := m.Data.(Unknown)
			require.True(t, isUnknown)
			assert.Equal(t, m.Type, u.Type)
			if tt.wantRaw == "" {
				assert.Empty(t, u.Raw)
			} else {
				assert.JSONEq(t, tt.wantRaw, string(u.Raw))
			}
		})
	}
}

func TestDecode_PercentAboveHundredAccepted(t *testing.T) {
	doc := `{
		"modules": [{"id": "g", "title": "G", "type": "github_stats", "data": {
			"contributions": 1, "stars": 1, "repositories": 1,
			"top_languages": [{"lang": "Go", "percent": 140}]
		}}],
		"user_projects": []
	}`

	c, err := Decode([]byte(doc), FormatJSON)
	require.NoError(t, err)
	m, _ := c.Module("g")
	assert.InDelta(t, 140.0, m.Data.(GitHubStats).TopLanguages[0].Percent, 0.001)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `<html>`},
		{name: "missing user_projects", doc: `{"modules": []}`},
		{name: "negative forks", doc: `{"modules": [], "user_projects": [{"id": "p", "name": "n", "stars": 1, "forks": -2}]}`},
		{
			name: "tech stack without tags",
			doc:  `{"modules": [{"id": "s", "title": "S", "type": "tech_stack", "data": {}}], "user_projects": []}`,
		},
		{
			name: "known type without data",
			doc:  `{"modules": [{"id": "p", "title": "P", "type": "pet_project"}], "user_projects": []}`,
		},
		{
			name: "known type with null data",
			doc:  `{"modules": [{"id": "s", "title": "S", "type": "tech_stack", "data": null}], "user_projects": []}`,
		},
		{
			name: "chart with non-string ids",
			doc:  `{"modules": [{"id": "c", "title": "C", "type": "project_chart", "data": {"default_projects": [1]}}], "user_projects": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), FormatJSON)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	err := Validate([]byte(`{"modules": [{"id": ""}]}`))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Problems), 2)
}

func TestModuleDefinition_MarshalRoundTripShape(t *testing.T) {
	c := loadFixture(t)
	m, _ := c.Module("pet")

	b, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "pet",
		"title": "Pet Project",
		"icon": "pets",
		"type": "pet_project",
		"is_configurable": false,
		"data": {
			"name": "tinyqueue",
			"image": "https://example.com/tinyqueue.png",
			"description": "A small persistent job queue.",
			"link": "https://github.com/example/tinyqueue"
		}
	}`, string(b))
}
