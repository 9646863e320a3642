package commands

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/folio/internal/cli/output"
	"github.com/leapstack-labs/folio/internal/render"
)

// previewMount is the node id modules are rendered into for preview.
const previewMount = "preview"

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	HTML bool
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview <module>",
		Short: "Render a module as it appears on the canvas",
		Long: `Render a catalog module the way the builder places it on the canvas and
print it as Markdown. Charts are drawn in the browser, so only their
placeholder is shown.`,
		Example: `  # Preview the tech stack module
  folio preview stack

  # Print the raw HTML fragment
  folio preview stack --html

  # Both forms as JSON
  folio preview stack --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.HTML, "html", false, "Print the HTML fragment instead of Markdown")

	return cmd
}

func runPreview(cmd *cobra.Command, moduleID string, opts *PreviewOptions) error {
	cc := NewCommandContext(cmd)

	cat, err := loadCatalog(cmd.Context(), cc.Cfg)
	if err != nil {
		return err
	}

	def, ok := cat.Module(moduleID)
	if !ok {
		return fmt.Errorf("module not found: %s", moduleID)
	}

	frag := render.New(cc.Logger).Render(def, previewMount)
	var html strings.Builder
	if err := frag.Component.Render(cmd.Context(), &html); err != nil {
		return fmt.Errorf("failed to render %s: %w", moduleID, err)
	}

	md, err := htmltomarkdown.ConvertString(html.String())
	if err != nil {
		return fmt.Errorf("failed to convert %s to markdown: %w", moduleID, err)
	}

	r := cc.Renderer
	switch {
	case r.EffectiveMode() == output.ModeJSON:
		return r.JSON(output.PreviewOutput{Module: def.ID, HTML: html.String(), Markdown: md})
	case opts.HTML:
		r.Println(html.String())
	default:
		r.Println(strings.TrimSpace(md))
	}
	return nil
}
