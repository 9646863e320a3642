package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	sharedcfg "github.com/leapstack-labs/folio/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a folio project with a sample catalog",
		Long: `Create a folio project with a configuration file and a sample catalog.

This creates:
  - folio.yaml configuration file
  - data/catalog.json with one module of each type
  - .gitignore excluding the .folio/ state directory`,
		Example: `  # Initialize in current directory
  folio init

  # Initialize in a new directory
  folio init my-resume

  # Force overwrite existing files
  folio init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	r := NewCommandContext(cmd).Renderer

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, sharedcfg.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", sharedcfg.ConfigFileName)
	}

	files, err := copyTemplate(starterTemplate, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("folio project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Edit data/catalog.json to describe your modules")
	r.Println("  2. Run 'folio validate' to check it")
	r.Println("  3. Run 'folio serve' to open the builder")

	return nil
}
