package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/config"
)

// generateSchemaDocs generates the configuration and catalog references.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating schema docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	if err := generateCatalogDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate catalog.md: %w", err)
	}
	log.Printf("  Generated catalog.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "catalog", "ui", "log"
}

// getConfigSchema mirrors internal/config/types.go.
func getConfigSchema() []ConfigField {
	ui := config.DefaultUIConfig()
	return []ConfigField{
		{Name: "path", Type: "string", Default: config.DefaultCatalogPath, Description: "Catalog file (JSON or YAML)", Category: "catalog"},
		{Name: "url", Type: "string", Description: "Fetch the catalog over HTTP", Category: "catalog"},
		{Name: "store", Type: "string", Description: "SQLite catalog store; takes precedence over url and path", Category: "catalog"},
		{Name: "timeout", Type: "duration", Default: config.DefaultCatalogTimeout.String(), Description: "HTTP fetch timeout", Category: "catalog"},

		{Name: "host", Type: "string", Default: ui.Host, Description: "Address the builder listens on", Category: "ui"},
		{Name: "port", Type: "int", Default: strconv.Itoa(ui.Port), Description: "Builder port", Category: "ui"},
		{Name: "auto_open", Type: "bool", Default: strconv.FormatBool(ui.AutoOpen), Description: "Open a browser on start", Category: "ui"},
		{Name: "watch", Type: "bool", Default: strconv.FormatBool(ui.Watch), Description: "Reload connected pages when the catalog file changes", Category: "ui"},
		{Name: "dev", Type: "bool", Default: strconv.FormatBool(ui.Dev), Description: "Enable request logging and live reload", Category: "ui"},
		{Name: "session_secret", Type: "string", Description: "Key for the theme cookie", Category: "ui"},
		{Name: "preselect_selection", Type: "bool", Default: strconv.FormatBool(ui.PreselectSelection), Description: "Pre-check saved projects when a settings dialog opens", Category: "ui"},
		{Name: "workspace_ttl", Type: "duration", Default: ui.WorkspaceTTL.String(), Description: "Idle time before a page's workspace is dropped", Category: "ui"},

		{Name: "level", Type: "string", Default: config.DefaultLogLevel, Description: "debug, info, warn or error", Category: "log"},
		{Name: "format", Type: "string", Default: config.DefaultLogFormat, Description: "text or json", Category: "log"},
		{Name: "file", Type: "string", Description: "Write logs to a rotated file instead of stderr", Category: "log"},
		{Name: "max_size_mb", Type: "int", Default: strconv.Itoa(config.DefaultLogMaxSizeMB), Description: "Rotate after this size", Category: "log"},
		{Name: "max_backups", Type: "int", Default: strconv.Itoa(config.DefaultLogMaxBackups), Description: "Rotated files to keep", Category: "log"},
		{Name: "max_age_days", Type: "int", Default: strconv.Itoa(config.DefaultLogMaxAgeDays), Description: "Days to keep rotated files", Category: "log"},
		{Name: "compress", Type: "bool", Default: "false", Description: "Gzip rotated files", Category: "log"},
	}
}

func writeConfigSection(w *MarkdownWriter, fields []ConfigField, category string) {
	headers := []string{"Field", "Type", "Default", "Description"}
	var rows [][]string
	for _, f := range fields {
		if f.Category != category {
			continue
		}
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, cleanDescription(f.Description)})
	}
	w.Table(headers, rows)
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "folio configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("folio reads `folio.yaml` from the current directory or the nearest parent. Use `--config` to point at another file.")

	fields := getConfigSchema()

	w.Header(2, "Catalog")
	w.Paragraph("Where the module catalog comes from. When several are set, `store` wins over `url`, which wins over `path`.")
	writeConfigSection(w, fields, "catalog")

	w.Header(2, "Builder")
	w.Paragraph("Settings for `folio serve`, under the `ui` key.")
	writeConfigSection(w, fields, "ui")

	w.Header(2, "Logging")
	writeConfigSection(w, fields, "log")

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# folio.yaml
catalog:
  path: data/catalog.json

ui:
  port: 8765
  auto_open: true
  watch: true
  preselect_selection: true

log:
  level: info
  format: text`)

	w.Header(2, "Environment Variables")
	w.Paragraph("Every key can be overridden with a `FOLIO_` variable. Use a double underscore between nested keys:")
	w.CodeBlock("bash", `FOLIO_CATALOG__URL=https://example.com/catalog.json folio serve
FOLIO_UI__PORT=9000 folio serve`)

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}

// generateCatalogDoc documents the catalog document format.
func generateCatalogDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Catalog", "Module catalog format")
	w.GeneratedMarker()

	w.Header(1, "Catalog")
	w.Paragraph("The catalog lists the modules offered in the builder toolbox and the projects a chart module can show. It is JSON or YAML and is checked with `folio validate`.")

	w.Header(2, "Module Types")
	w.Table([]string{"Type", "Data"}, [][]string{
		{InlineCode(string(catalog.TypeGitHubStats)), "Aggregate GitHub counters"},
		{InlineCode(string(catalog.TypeTechStack)), "A list of technology tags"},
		{InlineCode(string(catalog.TypeProjectChart)), "Chart of selected projects. Configurable through the settings dialog"},
		{InlineCode(string(catalog.TypePetProject)), "A single side project"},
	})
	w.Paragraph("Modules with any other type are kept and rendered as a placeholder.")

	w.Header(2, "Schema")
	w.CodeBlock("json", string(catalog.Schema()))

	return os.WriteFile(filepath.Join(outDir, "catalog.md"), w.Bytes(), 0600)
}
