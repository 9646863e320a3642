package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/folio/internal/catalog"
)

// Element ids shared with the page script and stylesheet.
const (
	ToolboxID     = "modules-toolbox"
	CanvasID      = "resume-canvas"
	PlaceholderID = "canvas-placeholder"
	DialogID      = "settings-dialog"
)

// ToolboxErrorMessage is shown in place of the toolbox when the catalog
// cannot be loaded.
const ToolboxErrorMessage = "Could not load modules."

// ToolboxCard renders the palette entry for a module.
func ToolboxCard(def catalog.ModuleDefinition) templ.Component {
	return raw(toolboxCard(def))
}

func toolboxCard(def catalog.ModuleDefinition) string {
	return fmt.Sprintf(
		`<div class="toolbox-card" data-module-id="%s"><i class="material-icons">%s</i><span>%s</span></div>`,
		templ.EscapeString(def.ID),
		templ.EscapeString(def.IconOrDefault()),
		templ.EscapeString(def.Title),
	)
}

// Toolbox renders the palette with one card per module, in catalog order.
func Toolbox(modules []catalog.ModuleDefinition) templ.Component {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div id="%s" class="toolbox">`, ToolboxID)
	for _, m := range modules {
		sb.WriteString(toolboxCard(m))
	}
	sb.WriteString(`</div>`)
	return raw(sb.String())
}

// ToolboxError renders the palette in its load-failure state.
func ToolboxError() templ.Component {
	return raw(fmt.Sprintf(
		`<div id="%s" class="toolbox"><p class="toolbox-error" style="color: red;">%s</p></div>`,
		ToolboxID, ToolboxErrorMessage,
	))
}

// Placeholder renders the canvas empty-state hint.
func Placeholder(visible bool) templ.Component {
	style := ""
	if !visible {
		style = ` style="display: none;"`
	}
	return raw(fmt.Sprintf(`<p id="%s" class="placeholder"%s>Drag modules here to build your resume</p>`, PlaceholderID, style))
}

// Node wraps canvas content in its element. An inert node has nil content.
func Node(id, moduleID, class string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cls := class
		if cls == "" {
			cls = "toolbox-card"
		}
		if _, err := fmt.Fprintf(w, `<div id="%s" class="%s" data-module-id="%s">`,
			templ.EscapeString(id), templ.EscapeString(cls), templ.EscapeString(moduleID)); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// DialogView is the content of the project selection dialog.
type DialogView struct {
	ModuleID string
	Title    string
	Projects []catalog.ProjectRecord
	Checked  []string
}

// Dialog renders the modal project checklist. Checkboxes are bound to the
// picked signal; a click on the backdrop itself cancels.
func Dialog(v DialogView) templ.Component {
	checked := v.Checked
	if checked == nil {
		checked = []string{}
	}
	initial, _ := json.Marshal(map[string]any{"picked": checked})

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<div id="%s" class="modal-backdrop" data-module-id="%s" data-signals="%s" data-on:click="evt.target === el && @post('/dialog/cancel')">`,
		DialogID, templ.EscapeString(v.ModuleID), templ.EscapeString(string(initial)))
	fmt.Fprintf(&sb, `<div class="modal-content paper-shadow"><h3>Configure module &#34;%s&#34;</h3>`, templ.EscapeString(v.Title))
	sb.WriteString(`<p>Choose the projects to display:</p><div class="projects-list">`)
	for _, p := range v.Projects {
		attr := ""
		if slices.Contains(checked, p.ID) {
			attr = " checked"
		}
		fmt.Fprintf(&sb, `<label><input type="checkbox" value="%s" data-bind:picked%s> %s (★%d)</label>`,
			templ.EscapeString(p.ID), attr, templ.EscapeString(p.Name), p.Stars)
	}
	sb.WriteString(`</div><div class="modal-actions">`)
	sb.WriteString(`<button class="btn-save" data-on:click="@post('/dialog/confirm')">Save</button>`)
	sb.WriteString(`<button class="btn-cancel" data-on:click="@post('/dialog/cancel')">Cancel</button>`)
	sb.WriteString(`</div></div></div>`)
	return raw(sb.String())
}
