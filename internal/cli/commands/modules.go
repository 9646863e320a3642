package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/cli/output"
)

// NewModulesCommand creates the modules command.
func NewModulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "modules",
		Aliases: []string{"ls"},
		Short:   "List the modules and projects of the catalog",
		Long: `List the modules offered in the toolbox and the projects they can show.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List modules of the default catalog
  folio modules

  # List modules as JSON
  folio modules --output json

  # List modules from a remote catalog
  folio modules --url https://example.com/catalog.json`,
		RunE: runModules,
	}
}

func runModules(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	cat, err := loadCatalog(cmd.Context(), cc.Cfg)
	if err != nil {
		return err
	}

	out := modulesOutput(describeSource(cc.Cfg), cat)
	r := cc.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Header(1, "Modules")
		r.Println(output.FormatKeyValue("Source", out.Source))
		r.Println("")
	default:
		r.Header(1, "Modules")
		r.Muted("Source: " + out.Source)
		r.Println("")
	}

	rows := make([][]string, 0, len(out.Modules))
	for _, m := range out.Modules {
		configurable := ""
		if m.Configurable {
			configurable = "yes"
		}
		rows = append(rows, []string{m.ID, m.Title, m.Type, m.Icon, configurable})
	}
	r.Table([]string{"ID", "Title", "Type", "Icon", "Configurable"}, rows)

	r.Println("")
	r.Header(2, "Projects")
	if len(out.Projects) == 0 {
		r.Muted("No projects")
		return nil
	}
	rows = make([][]string, 0, len(out.Projects))
	for _, p := range out.Projects {
		rows = append(rows, []string{p.ID, p.Name, strconv.Itoa(p.Stars), strconv.Itoa(p.Forks)})
	}
	r.Table([]string{"ID", "Name", "Stars", "Forks"}, rows)
	return nil
}

func modulesOutput(source string, cat *catalog.Catalog) output.ModulesOutput {
	out := output.ModulesOutput{
		Source:   source,
		Modules:  make([]output.ModuleInfo, 0, len(cat.Modules())),
		Projects: make([]output.ProjectInfo, 0, len(cat.Projects())),
	}
	for _, m := range cat.Modules() {
		out.Modules = append(out.Modules, output.ModuleInfo{
			ID:           m.ID,
			Title:        m.Title,
			Type:         string(m.Type),
			Icon:         m.IconOrDefault(),
			Configurable: m.IsConfigurable,
		})
	}
	for _, p := range cat.Projects() {
		out.Projects = append(out.Projects, output.ProjectInfo{ID: p.ID, Name: p.Name, Stars: p.Stars, Forks: p.Forks})
	}
	return out
}
