// Package render turns module definitions into canvas markup.
//
// Rendering is pure given the catalog. The only deferred work is chart
// creation for project charts, returned as a PostMount action that the
// caller runs once the markup is in the page.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/folio/internal/catalog"
)

// UnknownTitle is the heading of the fallback fragment.
const UnknownTitle = "Unknown module type"

// SettingsAction is the click expression of the settings affordance. It
// stores the enclosing canvas node in the target signal and asks the server
// to open the dialog for it.
const SettingsAction = "$target = el.closest('.canvas-module').id; @post('/canvas/settings')"

// ChartBinder binds a chart target to a project selection.
type ChartBinder interface {
	Bind(target string, projectIDs []string) error
}

// Fragment is the rendered content of one placed module.
type Fragment struct {
	Component templ.Component
	// Targets lists the render target ids inside Component.
	Targets []string
	// PostMount, when set, must run after Component is in the page.
	PostMount func(ChartBinder) error
}

// ChartTarget returns the chart target id for a canvas node. The id is
// derived from the node, so re-rendering the same node reuses it.
func ChartTarget(nodeID string) string {
	return "chart-" + nodeID
}

// Renderer renders modules. It is safe for concurrent use.
type Renderer struct {
	printer *message.Printer
	logger  *slog.Logger
}

// New creates a Renderer.
func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		printer: message.NewPrinter(language.English),
		logger:  logger,
	}
}

// Render returns the canvas content for def mounted in node mount.
// Unknown module types render the fallback fragment.
func (r *Renderer) Render(def catalog.ModuleDefinition, mount string) Fragment {
	var (
		body    string
		frag    Fragment
		heading = def.Title
	)

	switch d := def.Data.(type) {
	case catalog.GitHubStats:
		body = r.githubStats(d)
	case catalog.TechStack:
		body = techStack(d)
	case catalog.ProjectChart:
		target := ChartTarget(mount)
		body = fmt.Sprintf(`<canvas id="%s"></canvas>`, templ.EscapeString(target))
		frag.Targets = []string{target}
		ids := append([]string(nil), d.DefaultProjects...)
		frag.PostMount = func(b ChartBinder) error {
			return b.Bind(target, ids)
		}
	case catalog.PetProject:
		heading = d.Name
		body = petProject(d)
	default:
		r.logger.Debug("rendering fallback for unknown module type", "module", def.ID, "type", def.Type)
		heading = UnknownTitle
	}

	var sb strings.Builder
	sb.WriteString(header(def))
	sb.WriteString(`<div class="module-content"><h3>`)
	sb.WriteString(templ.EscapeString(heading))
	sb.WriteString(`</h3>`)
	sb.WriteString(body)
	sb.WriteString(`</div>`)

	frag.Component = raw(sb.String())
	return frag
}

func header(def catalog.ModuleDefinition) string {
	if !def.IsConfigurable {
		return `<div class="module-header"></div>`
	}
	return fmt.Sprintf(
		`<div class="module-header"><button class="settings-btn" data-module-id="%s" data-on:click__stop="%s"><i class="material-icons">settings</i></button></div>`,
		templ.EscapeString(def.ID), templ.EscapeString(SettingsAction),
	)
}

func (r *Renderer) githubStats(d catalog.GitHubStats) string {
	var sb strings.Builder
	sb.WriteString(`<div class="stats-grid">`)
	for _, c := range []struct {
		n     int
		label string
	}{
		{d.Contributions, "contributions"},
		{d.Stars, "stars"},
		{d.Repositories, "repositories"},
	} {
		fmt.Fprintf(&sb, `<div><span>%s</span> %s</div>`, r.printer.Sprintf("%d", c.n), c.label)
	}
	sb.WriteString(`</div><h4>Top languages:</h4>`)
	for _, l := range d.TopLanguages {
		pct := max(0, min(l.Percent, 100))
		fmt.Fprintf(&sb, `<div class="progress-bar"><div style="width: %g%%;">%s</div></div>`,
			pct, templ.EscapeString(l.Lang))
	}
	return sb.String()
}

func techStack(d catalog.TechStack) string {
	var sb strings.Builder
	sb.WriteString(`<div class="tags-container">`)
	for _, tag := range d.Tags {
		fmt.Fprintf(&sb, `<span class="tag">%s</span>`, templ.EscapeString(tag))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func petProject(d catalog.PetProject) string {
	return fmt.Sprintf(
		`<div class="pet-project-content"><img src="%s" alt="Project preview"><p>%s</p></div>`+
			`<a href="%s" target="_blank" rel="noopener">View on GitHub</a>`,
		templ.EscapeString(string(templ.URL(d.Image))),
		templ.EscapeString(d.Description),
		templ.EscapeString(string(templ.URL(d.Link))),
	)
}

// raw wraps pre-escaped markup as a component.
func raw(html string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}
