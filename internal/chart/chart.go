// Package chart keeps project-comparison charts bound to their render
// targets. Each target has at most one live chart; rebinding a target
// updates that chart in place.
package chart

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/folio/internal/catalog"
)

// Series labels and colors.
const (
	StarsLabel = "Stars ★"
	ForksLabel = "Forks"

	starsFill   = "rgba(255, 159, 64, 0.5)"
	starsBorder = "rgba(255, 159, 64, 1)"
	forksFill   = "rgba(75, 192, 192, 0.5)"
	forksBorder = "rgba(75, 192, 192, 1)"
)

// Series is one dataset of a grouped bar chart.
type Series struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	BorderWidth     int    `json:"borderWidth"`
}

// Data is the label/series payload handed to the chart widget. Every series
// has exactly len(Labels) values.
type Data struct {
	Labels   []string `json:"labels"`
	Datasets []Series `json:"datasets"`
}

// Spec is a full chart description: bar type, data and display options.
type Spec struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Options holds the fixed display options for project charts.
type Options struct {
	IndexAxis  string  `json:"indexAxis"`
	Responsive bool    `json:"responsive"`
	Scales     Scales  `json:"scales"`
	Plugins    Plugins `json:"plugins"`
}

// Scales configures the value axis.
type Scales struct {
	Y Axis `json:"y"`
}

// Axis configures one axis.
type Axis struct {
	BeginAtZero bool `json:"beginAtZero"`
}

// Plugins configures chart plugins.
type Plugins struct {
	Legend Legend `json:"legend"`
}

// Legend configures the legend.
type Legend struct {
	Position string `json:"position"`
}

// BuildData produces the stars and forks series for projects, keeping their
// order.
func BuildData(projects []catalog.ProjectRecord) Data {
	labels := make([]string, len(projects))
	stars := make([]int, len(projects))
	forks := make([]int, len(projects))
	for i, p := range projects {
		labels[i] = p.Name
		stars[i] = p.Stars
		forks[i] = p.Forks
	}

	return Data{
		Labels: labels,
		Datasets: []Series{
			{Label: StarsLabel, Data: stars, BackgroundColor: starsFill, BorderColor: starsBorder, BorderWidth: 1},
			{Label: ForksLabel, Data: forks, BackgroundColor: forksFill, BorderColor: forksBorder, BorderWidth: 1},
		},
	}
}

// NewSpec wraps data in the bar chart options used for every project chart.
func NewSpec(data Data) Spec {
	return Spec{
		Type: "bar",
		Data: data,
		Options: Options{
			IndexAxis:  "x",
			Responsive: true,
			Scales:     Scales{Y: Axis{BeginAtZero: true}},
			Plugins:    Plugins{Legend: Legend{Position: "top"}},
		},
	}
}

// Projects filters project ids against the loaded project list.
type Projects interface {
	SelectProjects(ids []string) []catalog.ProjectRecord
}

// Targets reports whether a render target exists in the page.
type Targets interface {
	Has(id string) bool
}

// Surface creates charts in the page.
type Surface interface {
	Create(target string, spec Spec) (Chart, error)
}

// Chart is a live chart created by a Surface.
type Chart interface {
	Update(data Data) error
}

// Binding owns the live charts of one page, keyed by render target.
type Binding struct {
	projects Projects
	targets  Targets
	surface  Surface
	logger   *slog.Logger
	live     map[string]Chart
}

// NewBinding creates a Binding over the given project list and page.
func NewBinding(projects Projects, targets Targets, surface Surface, logger *slog.Logger) *Binding {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binding{
		projects: projects,
		targets:  targets,
		surface:  surface,
		logger:   logger,
		live:     make(map[string]Chart),
	}
}

// Bind shows the given projects in the chart at target, creating the chart
// on first use and updating it afterwards. A target that is not in the page
// is ignored.
func (b *Binding) Bind(target string, projectIDs []string) error {
	if !b.targets.Has(target) {
		b.logger.Debug("chart target not mounted, skipping bind", "target", target)
		return nil
	}

	data := BuildData(b.projects.SelectProjects(projectIDs))

	if c, ok := b.live[target]; ok {
		if err := c.Update(data); err != nil {
			return fmt.Errorf("update chart %s: %w", target, err)
		}
		return nil
	}

	c, err := b.surface.Create(target, NewSpec(data))
	if err != nil {
		return fmt.Errorf("create chart %s: %w", target, err)
	}
	b.live[target] = c
	return nil
}

// Bound reports whether target has a live chart.
func (b *Binding) Bound(target string) bool {
	_, ok := b.live[target]
	return ok
}

// Live returns the number of live charts.
func (b *Binding) Live() int {
	return len(b.live)
}
