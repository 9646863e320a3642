// Command gendocs writes folio's reference documentation as Markdown: the
// CLI pages from the cobra command tree, the configuration reference from
// the config defaults and the catalog reference from the embedded schema.
//
// Usage:
//
//	go run ./scripts/gendocs                # everything under docs/
//	go run ./scripts/gendocs -gen=cli -outdir=/tmp/cli
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"slices"
)

// target is one set of generated pages.
type target struct {
	name   string
	subdir string
	run    func(outDir string) error
}

var targets = []target{
	{name: "cli", subdir: "cli", run: generateCLIDocs},
	{name: "schema", subdir: "reference", run: generateSchemaDocs},
}

func main() {
	gen := flag.String("gen", "all", "pages to generate: cli, schema or all")
	outDir := flag.String("outdir", "", "output directory, only with a single -gen (default docs/<kind>)")
	flag.Parse()

	selected := slices.DeleteFunc(slices.Clone(targets), func(t target) bool {
		return *gen != "all" && t.name != *gen
	})
	if len(selected) == 0 {
		log.Fatalf("unknown -gen value %q (use cli, schema or all)", *gen)
	}
	if *outDir != "" && len(selected) > 1 {
		log.Fatal("-outdir needs a single -gen value")
	}

	root, err := moduleRoot()
	if err != nil {
		log.Fatalf("failed to find module root: %v", err)
	}

	for _, t := range selected {
		dir := *outDir
		if dir == "" {
			dir = filepath.Join(root, "docs", t.subdir)
		}
		if err := t.run(dir); err != nil {
			log.Fatalf("%s: %v", t.name, err)
		}
	}
	log.Println("Done!")
}

// moduleRoot returns the nearest directory at or above the working
// directory that holds a go.mod.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
