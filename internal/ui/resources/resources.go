// Package resources serves the builder's static assets.
package resources

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
)

//go:embed static/*
var staticFS embed.FS

// Options controls asset serving.
type Options struct {
	// Dev serves assets as written and disables caching.
	Dev    bool
	Logger *slog.Logger
}

type asset struct {
	data []byte
	mod  time.Time
}

// Handler returns an HTTP handler for /static/*. Outside dev mode JS and CSS
// are minified once with esbuild and cached for a year.
func Handler(opts Options) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	assets, err := load(staticFS, !opts.Dev)
	if err != nil {
		return nil, err
	}
	logger.Debug("static assets loaded", "count", len(assets), "minified", !opts.Dev)

	started := time.Now()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/static/")
		a, ok := assets[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if opts.Dev {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		mod := a.mod
		if mod.IsZero() {
			mod = started
		}
		http.ServeContent(w, r, name, mod, bytes.NewReader(a.data))
	}), nil
}

func load(fsys fs.FS, minify bool) (map[string]asset, error) {
	sub, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, err
	}

	assets := make(map[string]asset)
	err = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(sub, p)
		if err != nil {
			return err
		}
		if minify {
			if data, err = Minify(p, data); err != nil {
				return err
			}
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		assets[p] = asset{data: data, mod: info.ModTime()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load static assets: %w", err)
	}
	return assets, nil
}

// Minify minifies JS and CSS by extension; other files are returned as is.
func Minify(name string, src []byte) ([]byte, error) {
	var loader api.Loader
	switch path.Ext(name) {
	case ".js":
		loader = api.LoaderJS
	case ".css":
		loader = api.LoaderCSS
	default:
		return src, nil
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Target:            api.ES2020,
		Sourcefile:        name,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		var msg strings.Builder
		for _, e := range result.Errors {
			line, col := 0, 0
			if e.Location != nil {
				line, col = e.Location.Line, e.Location.Column
			}
			fmt.Fprintf(&msg, "%s:%d:%d: %s\n", name, line, col, e.Text)
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", msg.String())
	}
	return result.Code, nil
}

// StaticPath returns the URL path for a static asset.
func StaticPath(name string) string {
	return "/static/" + name
}
