package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/folio/internal/cli"
	"github.com/leapstack-labs/folio/internal/cli/config"
)

// commandGroup is one section of the command index.
type commandGroup struct {
	Title    string
	Intro    string
	Commands []string
}

var commandGroups = []commandGroup{
	{Title: "Builder", Intro: "Run the drag-and-drop builder.", Commands: []string{"serve"}},
	{Title: "Catalog", Intro: "Inspect, check and store the module catalog.", Commands: []string{"modules", "validate", "preview", "seed"}},
	{Title: "Project", Intro: "Set up a project and the shell.", Commands: []string{"init", "version", "completion"}},
}

// catalogSourceFlags lists the catalog source flags from highest to lowest
// precedence.
var catalogSourceFlags = []struct {
	Flag  string
	Label string
}{
	{Flag: "store", Label: "SQLite store filled by `folio seed`"},
	{Flag: "url", Label: "Remote JSON document fetched once per page"},
	{Flag: "catalog", Label: "Local JSON or YAML file, watched for changes"},
}

// generateCLIDocs writes index.md plus one page per documented command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()

	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range documented(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	for name, data := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documented returns the user-facing subcommands of root.
func documented(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Commands of the folio binary")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/folio/cmd/folio@latest")

	cmds := documented(root)
	grouped := map[string]bool{}
	for _, g := range commandGroups {
		var rows [][]string
		for _, cmd := range cmds {
			if slices.Contains(g.Commands, cmd.Name()) {
				rows = append(rows, commandRow(cmd))
				grouped[cmd.Name()] = true
			}
		}
		if len(rows) == 0 {
			continue
		}
		w.Header(2, g.Title)
		w.Paragraph(g.Intro)
		w.Table([]string{"Command", "Description"}, rows)
	}

	var other [][]string
	for _, cmd := range cmds {
		if !grouped[cmd.Name()] {
			other = append(other, commandRow(cmd))
		}
	}
	if len(other) > 0 {
		w.Header(2, "Other")
		w.Table([]string{"Command", "Description"}, other)
	}

	w.Header(2, "Catalog Sources")
	w.Paragraph("Every command that reads the catalog picks one source. When several are configured the first one in this table wins:")
	var sources [][]string
	for i, s := range catalogSourceFlags {
		f := root.PersistentFlags().Lookup(s.Flag)
		if f == nil {
			continue
		}
		key := config.FlagKey(f.Name)
		sources = append(sources, []string{
			fmt.Sprint(i + 1),
			InlineCode("--" + f.Name),
			InlineCode(key),
			InlineCode(config.EnvVar(key)),
			s.Label,
		})
	}
	w.Table([]string{"Precedence", "Flag", "Config key", "Environment", "Source"}, sources)

	w.Header(2, "Global Options")
	w.Paragraph("Flags beat environment variables, which beat `folio.yaml`.")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	return w.Bytes()
}

func commandRow(cmd *cobra.Command) []string {
	return []string{fmt.Sprintf("[%s](./%s.md)", InlineCode(cmd.Name()), cmd.Name()), cleanDescription(cmd.Short)}
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("folio "+cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, "folio "+cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cleanDescription(cmd.Short))
	}

	w.CodeBlock("bash", cmd.UseLine())
	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Paragraph("Also available as " + strings.Join(aliases, ", ") + ".")
	}

	if subs := documented(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range subs {
			rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		w.Table(flagHeaders, flagRows(cmd.LocalNonPersistentFlags()))
	}
	w.Paragraph("Global options are listed in the [CLI reference](./index.md#global-options).")

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

var flagHeaders = []string{"Flag", "Config key", "Environment", "Default", "Description"}

// flagRows describes each visible flag together with the config key and
// environment variable that set the same value.
func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}

		key, env := "-", "-"
		if k := config.FlagKey(f.Name); k != "" {
			key, env = InlineCode(k), InlineCode(config.EnvVar(k))
		}

		def := "-"
		if f.DefValue != "" && f.DefValue != "0" {
			def = InlineCode(f.DefValue)
		}
		rows = append(rows, []string{name, key, env, def, cleanDescription(f.Usage)})
	})
	return rows
}

// dedent strips the indentation cobra examples are written with.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		}
	}
	return strings.Join(lines, "\n")
}
