// Package config provides shared configuration types for folio.
// This package is decoupled from CLI concerns so the UI server and the
// commands can share the same sections.
package config

import (
	"fmt"
	"strings"
	"time"
)

// CatalogConfig selects where the module catalog is read from.
// Store wins over URL, URL wins over Path.
type CatalogConfig struct {
	Path    string        `koanf:"path"`
	URL     string        `koanf:"url"`
	Store   string        `koanf:"store"`
	Timeout time.Duration `koanf:"timeout"`
}

// UIConfig holds configuration for the builder server.
type UIConfig struct {
	Host               string        `koanf:"host"`
	Port               int           `koanf:"port"`
	AutoOpen           bool          `koanf:"auto_open"`
	Watch              bool          `koanf:"watch"`
	Dev                bool          `koanf:"dev"`
	SessionSecret      string        `koanf:"session_secret"`
	PreselectSelection bool          `koanf:"preselect_selection"`
	WorkspaceTTL       time.Duration `koanf:"workspace_ttl"`
}

// Addr returns the listen address.
func (u *UIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"` // text, json
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// Validate checks the catalog section.
func (c *CatalogConfig) Validate() error {
	if c.Path == "" && c.URL == "" && c.Store == "" {
		return fmt.Errorf("catalog source is required: set catalog.path, catalog.url or catalog.store")
	}
	if c.URL != "" && !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("catalog.url must be an http(s) URL: %q", c.URL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must not be negative")
	}
	return nil
}

// Validate checks the ui section.
func (u *UIConfig) Validate() error {
	if u.Port < 0 || u.Port > 65535 {
		return fmt.Errorf("ui.port out of range: %d", u.Port)
	}
	if u.SessionSecret != "" && len(u.SessionSecret) < 16 {
		return fmt.Errorf("ui.session_secret must be at least 16 bytes")
	}
	if u.WorkspaceTTL < 0 {
		return fmt.Errorf("ui.workspace_ttl must not be negative")
	}
	return nil
}

// Validate checks the log section.
func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	return nil
}
