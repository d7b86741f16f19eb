package config

import (
	"fmt"
	"strings"
	"time"
)

// CatalogConfig describes the origin of the product catalog document.
// Exactly one of URL or File must be set.
type CatalogConfig struct {
	URL     string        `koanf:"url"`
	File    string        `koanf:"file"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the catalog configuration.
func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  file: %s\n", c.File))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	if c.URL == "" && c.File == "" {
		return fmt.Errorf("catalog origin is not configured: set catalog.url or catalog.file")
	}
	if c.URL != "" && c.File != "" {
		return fmt.Errorf("catalog.url and catalog.file are mutually exclusive")
	}
	if c.URL != "" && c.Timeout <= 0 {
		return fmt.Errorf("invalid catalog fetch timeout: %v", c.Timeout)
	}
	return nil
}
