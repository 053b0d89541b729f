package state

import (
	"context"
	"sync"

	"skillboard/internal/analysis"

	"golang.org/x/sync/singleflight"
)

// Loader produces a fresh rule table (CSV file, database, ...)
type Loader func(ctx context.Context) (*analysis.RuleTable, error)

// TableCache memoizes the rule table for the process lifetime.
// Concurrent first loads share one call. Failed loads are not cached.
type TableCache struct {
	mu     sync.RWMutex
	table  *analysis.RuleTable
	loader Loader
	group  singleflight.Group
}

// NewTableCache creates a cache backed by loader
func NewTableCache(loader Loader) *TableCache {
	return &TableCache{loader: loader}
}

// Get returns the cached table, loading it on first use
func (c *TableCache) Get(ctx context.Context) (*analysis.RuleTable, error) {
	c.mu.RLock()
	table := c.table
	c.mu.RUnlock()
	if table != nil {
		return table, nil
	}
	return c.load(ctx, false)
}

// Reload replaces the cached table with a fresh load.
// On failure the previous table stays in place.
func (c *TableCache) Reload(ctx context.Context) (*analysis.RuleTable, error) {
	return c.load(ctx, true)
}

// Loaded reports whether a table is cached
func (c *TableCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table != nil
}

// Peek returns the cached table without loading
func (c *TableCache) Peek() *analysis.RuleTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

func (c *TableCache) load(ctx context.Context, force bool) (*analysis.RuleTable, error) {
	key := "get"
	if force {
		key = "reload"
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if !force {
			c.mu.RLock()
			table := c.table
			c.mu.RUnlock()
			if table != nil {
				return table, nil
			}
		}

		table, err := c.loader(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.table = table
		c.mu.Unlock()
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*analysis.RuleTable), nil
}
