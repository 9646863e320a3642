package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/cli/output"
	"github.com/leapstack-labs/folio/internal/state"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Import a catalog document into the SQLite store",
		Long: `Validate a catalog document and import it into the SQLite catalog store.

The import replaces the stored modules and projects in one transaction; a
document that fails validation leaves the store untouched. Serve the store
with --store.

Without an argument the configured catalog file is imported.`,
		Example: `  # Import the default catalog into .folio/catalog.db
  folio seed --store .folio/catalog.db

  # Import a YAML document
  folio seed ./resume.yaml --store .folio/catalog.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSeed,
	}

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	if cfg.Catalog.Store == "" {
		return fmt.Errorf("no catalog store configured\nHint: pass --store or set catalog.store")
	}

	path := cfg.Catalog.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no catalog file to import\nHint: pass a file or set catalog.path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	doc, err := catalog.DecodeDocument(data, catalog.FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.Catalog.Store); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(); err != nil {
		return err
	}

	imp, err := store.ImportCatalog(cmd.Context(), doc, path)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	cc.Logger.Info("catalog imported", "id", imp.ID, "source", path, "store", cfg.Catalog.Store)

	out := output.SeedOutput{
		ID:         imp.ID,
		Source:     imp.Source,
		Store:      cfg.Catalog.Store,
		Modules:    imp.Modules,
		Projects:   imp.Projects,
		ImportedAt: imp.ImportedAt,
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Header(1, "Seed")
		r.Println(output.FormatKeyValue("Source", out.Source))
		r.Println(output.FormatKeyValue("Store", out.Store))
		r.Println(output.FormatKeyValue("Modules", fmt.Sprint(out.Modules)))
		r.Println(output.FormatKeyValue("Projects", fmt.Sprint(out.Projects)))
		r.Println(output.FormatKeyValue("Imported at", out.ImportedAt.Format(time.RFC3339)))
	default:
		r.Success(fmt.Sprintf("Imported %d module(s) and %d project(s)", out.Modules, out.Projects))
		r.Muted(fmt.Sprintf("%s → %s", out.Source, out.Store))
	}
	return nil
}
