package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/folio/internal/catalog"
	"github.com/leapstack-labs/folio/internal/cli/output"
)

// ErrInvalidCatalog is returned when validate finds problems.
var ErrInvalidCatalog = errors.New("catalog is invalid")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a catalog document",
		Long: `Check a catalog document against the catalog schema.

Both JSON and YAML documents are accepted. Errors make the document
unusable; warnings point at content the builder tolerates, such as unknown
module types (rendered with a fallback) or chart defaults naming projects
that do not exist (ignored).

Without an argument the configured catalog file is checked.`,
		Example: `  # Check the configured catalog
  folio validate

  # Check a YAML document
  folio validate ./resume.yaml

  # Machine-readable report
  folio validate --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)

	path := cc.Cfg.Catalog.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no catalog file to validate\nHint: pass a file or set catalog.path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	report := validateDocument(path, data)
	if err := printValidateReport(cc.Renderer, report); err != nil {
		return err
	}
	if !report.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, path)
	}
	return nil
}

// validateDocument decodes data and collects problems and warnings.
func validateDocument(path string, data []byte) output.ValidateOutput {
	report := output.ValidateOutput{Path: path}

	doc, err := catalog.DecodeDocument(data, catalog.FormatFromPath(path))
	if err != nil {
		report.Issues = issuesFrom(err)
		return report
	}

	cat, err := catalog.FromDocument(doc)
	if err != nil {
		report.Issues = issuesFrom(err)
		return report
	}

	report.Valid = true
	report.Modules = len(cat.Modules())
	report.Projects = len(cat.Projects())
	report.Warnings = warningsFor(cat)
	return report
}

func issuesFrom(err error) []output.Issue {
	var verr *catalog.ValidationError
	if !errors.As(err, &verr) {
		return []output.Issue{{Field: "(root)", Message: err.Error()}}
	}
	issues := make([]output.Issue, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		field, msg, ok := strings.Cut(p, ": ")
		if !ok {
			field, msg = "(root)", p
		}
		issues = append(issues, output.Issue{Field: field, Message: msg})
	}
	return issues
}

func warningsFor(cat *catalog.Catalog) []output.Issue {
	var warnings []output.Issue
	for i, m := range cat.Modules() {
		field := "modules." + strconv.Itoa(i)
		switch d := m.Data.(type) {
		case catalog.Unknown:
			warnings = append(warnings, output.Issue{
				Field:   field + ".type",
				Message: fmt.Sprintf("unknown module type %q renders as a fallback", d.Type),
			})
		case catalog.ProjectChart:
			for _, id := range d.DefaultProjects {
				if !cat.HasProject(id) {
					warnings = append(warnings, output.Issue{
						Field:   field + ".data.default_projects",
						Message: fmt.Sprintf("project %q is not in user_projects and is ignored", id),
					})
				}
			}
			if !m.IsConfigurable {
				warnings = append(warnings, output.Issue{
					Field:   field + ".is_configurable",
					Message: "chart is not configurable, its projects cannot be changed",
				})
			}
		}
	}
	return warnings
}

func printValidateReport(r *output.Renderer, report output.ValidateOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	r.Header(1, "Catalog validation")
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("File", report.Path))
		r.Println("")
	} else {
		r.Muted(report.Path)
		r.Println("")
	}

	if !report.Valid {
		for _, issue := range report.Issues {
			r.StatusLine(issue.Field, "error", issue.Message)
		}
		r.Println("")
		r.Error(fmt.Sprintf("%d problem(s) found", len(report.Issues)))
		return nil
	}

	r.StatusLine("schema", "success", "")
	r.StatusLine("modules", "success", strconv.Itoa(report.Modules))
	r.StatusLine("user_projects", "success", strconv.Itoa(report.Projects))
	for _, w := range report.Warnings {
		r.StatusLine(w.Field, "warning", w.Message)
	}
	r.Println("")
	if len(report.Warnings) > 0 {
		r.Warning(fmt.Sprintf("valid with %d warning(s)", len(report.Warnings)))
		return nil
	}
	r.Success("Catalog is valid")
	return nil
}
