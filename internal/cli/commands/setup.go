package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/cli/config"
	"github.com/leapstack-labs/folio/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/folio/internal/config"
	"github.com/leapstack-labs/folio/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when no
// configuration has been loaded (commands run outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cfg := &config.Config{
		OutputFormat: config.DefaultOutput,
		UI:           sharedcfg.DefaultUIConfig(),
	}
	sharedcfg.ApplyCatalogDefaults(&cfg.Catalog)
	sharedcfg.ApplyLogDefaults(&cfg.Log)
	return cfg
}

// openCatalogSource returns the configured catalog source. The store wins
// over the URL, the URL wins over the file. The cleanup function must be
// called when the source is no longer needed.
func openCatalogSource(cfg *config.Config) (catalog.Source, func(), error) {
	switch {
	case cfg.Catalog.Store != "":
		store := state.NewSQLiteStore()
		if err := store.Open(cfg.Catalog.Store); err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case cfg.Catalog.URL != "":
		return catalog.HTTPSource{URL: cfg.Catalog.URL, Timeout: cfg.Catalog.Timeout}, func() {}, nil

	default:
		if err := cfg.ValidateCatalogFile(); err != nil {
			return nil, nil, err
		}
		return catalog.FileSource{Path: cfg.Catalog.Path}, func() {}, nil
	}
}

// describeSource names the configured catalog source for output.
func describeSource(cfg *config.Config) string {
	switch {
	case cfg.Catalog.Store != "":
		return "store:" + cfg.Catalog.Store
	case cfg.Catalog.URL != "":
		return cfg.Catalog.URL
	default:
		return cfg.Catalog.Path
	}
}

// loadCatalog opens the configured source and loads the catalog once.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	source, cleanup, err := openCatalogSource(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cat, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", describeSource(cfg), err)
	}
	return cat, nil
}
