// Package config provides configuration management for the folio CLI.
//
// This package composes the shared sections from internal/config with the
// CLI-only fields (verbosity, output format) and loads them with koanf.
package config

import (
	sharedcfg "github.com/leapstack-labs/folio/internal/config"
)

// CatalogConfig is an alias for the shared catalog configuration.
type CatalogConfig = sharedcfg.CatalogConfig

// UIConfig is an alias for the shared UI configuration.
type UIConfig = sharedcfg.UIConfig

// LogConfig is an alias for the shared log configuration.
type LogConfig = sharedcfg.LogConfig

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string        `koanf:"-"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Catalog      CatalogConfig `koanf:"catalog"`
	UI           UIConfig      `koanf:"ui"`
	Log          LogConfig     `koanf:"log"`
}

// Default configuration values.
const (
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	EnvPrefix     = "FOLIO_"
)

// defaultValues is the lowest layer of the koanf stack.
func defaultValues() map[string]interface{} {
	ui := sharedcfg.DefaultUIConfig()
	return map[string]interface{}{
		"verbose":                false,
		"output":                 DefaultOutput,
		"catalog.timeout":        sharedcfg.DefaultCatalogTimeout.String(),
		"ui.host":                ui.Host,
		"ui.port":                ui.Port,
		"ui.auto_open":           ui.AutoOpen,
		"ui.watch":               ui.Watch,
		"ui.dev":                 ui.Dev,
		"ui.preselect_selection": ui.PreselectSelection,
		"ui.workspace_ttl":       ui.WorkspaceTTL.String(),
		"log.level":              sharedcfg.DefaultLogLevel,
		"log.format":             sharedcfg.DefaultLogFormat,
	}
}
