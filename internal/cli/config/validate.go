package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	return errors.Join(c.Catalog.Validate(), c.UI.Validate(), c.Log.Validate())
}

// ValidateCatalogFile checks that a file-backed catalog exists.
// Only commands that read the catalog call this, so help keeps working
// without a catalog on disk.
func (c *Config) ValidateCatalogFile() error {
	if c.Catalog.Path == "" || c.Catalog.URL != "" || c.Catalog.Store != "" {
		return nil
	}
	if _, err := os.Stat(c.Catalog.Path); os.IsNotExist(err) {
		return fmt.Errorf("catalog file does not exist: %s\nHint: Create the file or use --catalog to specify a different path", c.Catalog.Path)
	}
	return nil
}
