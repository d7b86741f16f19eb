package config

import (
	"fmt"
	"strings"
)

// Storage backends for the named-slot store.
const (
	StorageBackendFile     = "file"
	StorageBackendMemory   = "memory"
	StorageBackendPostgres = "postgres"
)

// StorageConfig selects where cart/wishlist/session slots are persisted.
type StorageConfig struct {
	Backend string `koanf:"backend"`
	Dir     string `koanf:"dir"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendFile:
		if c.Dir == "" {
			return fmt.Errorf("file storage backend requires storage.dir")
		}
	case StorageBackendMemory, StorageBackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
	return nil
}
