package catalog

import (
	"context"
	"log/slog"
	"sync"
)

// Cache memoizes the catalog for the lifetime of a session. The first Load
// fetches from the source; every later Load returns the retained slice.
// A failed fetch is memoized as an empty catalog and is not retried: callers
// must treat an empty result as "no data", not "zero products by design".
type Cache struct {
	source Source
	logger *slog.Logger

	mu       sync.Mutex
	loaded   bool
	products []Product
}

// NewCache creates a catalog cache over the given source.
func NewCache(source Source, logger *slog.Logger) *Cache {
	return &Cache{
		source: source,
		logger: logger.With("component", "catalog"),
	}
}

// Load returns the catalog, fetching it on first use.
// The returned slice is shared; callers must not mutate it.
func (c *Cache) Load(ctx context.Context) []Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.products
	}
	products, err := c.source.Fetch(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to fetch catalog, serving empty catalog for this session", "error", err)
		products = nil
	} else {
		c.logger.InfoContext(ctx, "Catalog loaded", "count", len(products))
	}
	c.products = products
	c.loaded = true
	return c.products
}

// FindByID returns the product with the given id.
// Returns ErrProductNotFound if no such product exists.
func (c *Cache) FindByID(ctx context.Context, id int64) (*Product, error) {
	for _, p := range c.Load(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

// Reset tears down the session: the next Load fetches again.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.products = nil
}
