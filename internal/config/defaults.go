package config

import "time"

// Default configuration values.
const (
	DefaultCatalogPath    = "data/catalog.json"
	DefaultCatalogTimeout = 10 * time.Second
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 8765
	DefaultWorkspaceTTL   = 30 * time.Minute
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAgeDays  = 28
)

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Host:               DefaultHost,
		Port:               DefaultPort,
		AutoOpen:           true,
		Watch:              true,
		PreselectSelection: true,
		WorkspaceTTL:       DefaultWorkspaceTTL,
	}
}

// ApplyCatalogDefaults fills unset catalog values.
func ApplyCatalogDefaults(c *CatalogConfig) {
	if c == nil {
		return
	}
	if c.Path == "" && c.URL == "" && c.Store == "" {
		c.Path = DefaultCatalogPath
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultCatalogTimeout
	}
}

// ApplyLogDefaults fills unset log values.
func ApplyLogDefaults(l *LogConfig) {
	if l == nil {
		return
	}
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	if l.File == "" {
		return
	}
	if l.MaxSizeMB == 0 {
		l.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if l.MaxBackups == 0 {
		l.MaxBackups = DefaultLogMaxBackups
	}
	if l.MaxAgeDays == 0 {
		l.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
