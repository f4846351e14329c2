// Package catalog holds the read-only inventory snapshot a composition screen
// works from. Each screen owns one Catalog and refetches it on mount; there is
// no cross-screen cache, so stock or price changes made elsewhere are not
// visible until the next Load. Stale data is an accepted risk here, not
// something this package corrects.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/domain"
)

// Catalog is safe for concurrent use: the console refreshes it from command
// goroutines while the event loop resolves Lookups.
type Catalog struct {
	client backend.Client

	mu   sync.RWMutex
	byID map[string]domain.CatalogItem
}

func New(client backend.Client) *Catalog {
	return &Catalog{
		client: client,
		byID:   make(map[string]domain.CatalogItem),
	}
}

// Load fetches one category from the backend and replaces that category's
// snapshot. Items from other categories already loaded stay available for
// Lookup. The error is a *backend.FetchError on network or non-2xx failures;
// the previous snapshot is kept so the screen stays usable.
func (c *Catalog) Load(ctx context.Context, category domain.Category) ([]domain.CatalogItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	items, err := c.client.ListCatalog(ctx, category)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, item := range c.byID {
		if item.Category == category {
			delete(c.byID, id)
		}
	}
	for _, item := range items {
		c.byID[item.ID] = item
	}
	return items, nil
}

// Lookup returns the snapshotted item with the given id, if any category
// containing it has been loaded.
func (c *Catalog) Lookup(itemID string) (domain.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.byID[itemID]
	return item, ok
}
