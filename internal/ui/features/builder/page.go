package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/render"
	"github.com/leapstack-labs/folio/internal/theme"
	"github.com/leapstack-labs/folio/internal/ui/resources"
)

// Third-party browser libraries loaded by the page.
const (
	DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	SortableScript = "https://cdn.jsdelivr.net/npm/sortablejs@1.15.6/Sortable.min.js"
	ChartScript    = "https://cdn.jsdelivr.net/npm/chart.js@4.4.9/dist/chart.umd.min.js"
	IconsStyle     = "https://fonts.googleapis.com/icon?family=Material+Icons"
)

// Client-side actions bound on the canvas.
const (
	dropAction    = "$drop.item = evt.detail.item; $drop.module = evt.detail.module; $drop.index = evt.detail.index; @post('/canvas/add')"
	reorderAction = "$order = evt.detail; @post('/canvas/reorder')"
	themeAction   = "@post('/theme')"
)

// PageView holds the data rendered into the builder page.
type PageView struct {
	Workspace  string
	Modules    []catalog.ModuleDefinition
	LoadFailed bool
	Theme      theme.Preference
	IsDev      bool
}

// initialSignals is the client state the page starts with.
func (v PageView) initialSignals() string {
	b, _ := json.Marshal(map[string]any{
		"workspace": v.Workspace,
		"dark":      v.Theme.Theme == theme.Dark,
		"drop":      map[string]any{"item": "", "module": "", "index": 0},
		"order":     []string{},
		"target":    "",
		"picked":    []string{},
	})
	return string(b)
}

func themeSource(s theme.Source) string {
	switch s {
	case theme.FromStore:
		return "store"
	case theme.FromHint:
		return "hint"
	default:
		return "system"
	}
}

// Page renders the full builder page.
func Page(v PageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		ew.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		ew.printf(`<title>Resume Builder</title>`)
		ew.printf(`<link rel="stylesheet" href="%s">`, IconsStyle)
		ew.printf(`<link rel="stylesheet" href="%s">`, resources.StaticPath("app.css"))
		ew.printf(`<script type="module" src="%s"></script>`, DatastarScript)
		ew.printf(`<script src="%s"></script>`, SortableScript)
		ew.printf(`<script src="%s"></script>`, ChartScript)
		ew.printf(`<script src="%s"></script>`, resources.StaticPath("app.js"))
		ew.printf(`</head>`)

		ew.printf(`<body class="%s" data-theme-source="%s" data-signals="%s" data-init="@get('/events')">`,
			v.Theme.Theme.BodyClass(),
			themeSource(v.Theme.Source),
			templ.EscapeString(v.initialSignals()),
		)
		if v.IsDev {
			ew.printf(`<div data-init="@get('/reload', {retryMaxCount: 1000, retryInterval: 20, retryMaxWaitMs: 200})"></div>`)
		}

		ew.printf(`<header class="app-header"><h1>Resume Builder</h1>`)
		ew.printf(`<label class="theme-switch"><input type="checkbox" id="theme-toggle" data-bind:dark data-on:change="%s"%s>`,
			themeAction, checkedAttr(v.Theme.Theme == theme.Dark))
		ew.printf(`<span class="material-icons">dark_mode</span></label></header>`)

		ew.printf(`<main class="builder"><aside class="sidebar"><h2>Modules</h2>`)
		if ew.err != nil {
			return ew.err
		}
		palette := render.Toolbox(v.Modules)
		if v.LoadFailed {
			palette = render.ToolboxError()
		}
		if err := palette.Render(ctx, w); err != nil {
			return err
		}
		ew.printf(`</aside>`)

		ew.printf(`<section id="%s" class="canvas" data-on:folio-drop="%s" data-on:folio-reorder="%s">`,
			render.CanvasID, dropAction, reorderAction)
		if ew.err != nil {
			return ew.err
		}
		if err := render.Placeholder(true).Render(ctx, w); err != nil {
			return err
		}
		ew.printf(`</section></main></body></html>`)
		return ew.err
	})
}

func checkedAttr(on bool) string {
	if on {
		return " checked"
	}
	return ""
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
