package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// Cache is the local mirror of the server product catalog. It is refreshed
// wholesale by catalog pulls and patched in place by feed events; both paths
// may run concurrently, so every entry applies last-write-wins per product
// id by arrival order.
type Cache struct {
	mu       sync.RWMutex
	snapshot map[string]types.Product
	order    []string
}

// NewCache returns an empty catalog mirror.
func NewCache() *Cache {
	return &Cache{snapshot: make(map[string]types.Product)}
}

// Load replaces the full snapshot with the result of a catalog pull.
// Products arrive already timestamp-normalized by the wire decoder.
func (c *Cache) Load(products []types.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = make(map[string]types.Product, len(products))
	c.order = c.order[:0]
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, known := c.snapshot[p.ID]; !known {
			c.order = append(c.order, p.ID)
		}
		c.snapshot[p.ID] = p
	}
}

// ApplyStockUpdate overwrites the stock for a known product. Events for
// products the cache has not seen yet are advisory and dropped: they may
// race ahead of the initial pull, which will carry the fresh stock anyway.
// Re-applying the same stock value is a no-op.
func (c *Cache) ApplyStockUpdate(productID string, stock int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.snapshot[productID]
	if !ok || p.Stock == stock {
		return false
	}
	p.Stock = stock
	c.snapshot[productID] = p
	return true
}

// ApplyProductEvent upserts or deletes an entry according to the event
// action. Unknown actions are ignored.
func (c *Cache) ApplyProductEvent(product types.Product, action enums.ProductAction) bool {
	if product.ID == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch action {
	case enums.ProductActionCreated, enums.ProductActionUpdated:
		if _, known := c.snapshot[product.ID]; !known {
			c.order = append(c.order, product.ID)
		}
		c.snapshot[product.ID] = product
		return true
	case enums.ProductActionDeleted:
		if _, known := c.snapshot[product.ID]; !known {
			return false
		}
		delete(c.snapshot, product.ID)
		for i, id := range c.order {
			if id == product.ID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		return true
	}
	return false
}

// Get returns the product for the given id.
func (c *Cache) Get(productID string) (types.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.snapshot[productID]
	return p, ok
}

// Len returns the number of cached products.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot)
}

// Filter describes the browse view over the cached catalog.
type Filter struct {
	Query    string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
}

func (f Filter) matches(p types.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		name := strings.ToLower(p.Name)
		description := strings.ToLower(p.Description)
		if !strings.Contains(name, q) && !strings.Contains(description, q) {
			return false
		}
	}
	return true
}

// List returns a filtered view of the snapshot in load order. The read is
// pure: it can be recomputed on every call and never mutates cache state.
func (c *Cache) List(filter Filter) []types.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.Product, 0, len(c.order))
	for _, id := range c.order {
		p, ok := c.snapshot[id]
		if !ok {
			continue
		}
		if filter.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories present in the snapshot,
// sorted for stable display.
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range c.snapshot {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
