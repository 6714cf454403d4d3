// Package category wraps an ancestor-chain source behind a monotonic,
// singleflight-deduplicated cache (spec.md §4.B, §5, §9 "Global mutable
// state").
package category

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Ontology supplies the ancestor chain for a category, most-specific-first,
// ending at the tree root. In production this would delegate to an external
// biolink-model toolkit; StaticOntology below is the table-driven
// implementation this repository ships.
type Ontology interface {
	Ancestors(ctx context.Context, category string) ([]string, error)
}

// CachedOntology wraps an Ontology with an additive, concurrency-safe cache.
// Entries are pure functions of their key, so no invalidation is required —
// a last-writer-wins race on first population is acceptable (spec.md §5
// "Shared-resource policy").
type CachedOntology struct {
	src   Ontology
	mu    sync.RWMutex
	cache map[string][]string
	group singleflight.Group
}

// NewCachedOntology wraps src with a cache. Passing a nil src is invalid;
// callers must supply a concrete ancestor source.
func NewCachedOntology(src Ontology) *CachedOntology {
	return &CachedOntology{
		src:   src,
		cache: make(map[string][]string),
	}
}

// Ancestors returns [category, parent, …, root], deduplicated in case the
// underlying toolkit echoes the seed category in its own ancestor list
// (spec.md §4.B). Concurrent lookups for the same uncached category are
// coalesced into a single call to the underlying source.
func (c *CachedOntology) Ancestors(ctx context.Context, cat string) ([]string, error) {
	if chain, ok := c.lookup(cat); ok {
		return chain, nil
	}

	v, err, _ := c.group.Do(cat, func() (interface{}, error) {
		if chain, ok := c.lookup(cat); ok {
			return chain, nil
		}
		chain, err := c.src.Ancestors(ctx, cat)
		if err != nil {
			return nil, err
		}
		chain = dedupe(chain)
		c.mu.Lock()
		c.cache[cat] = chain
		c.mu.Unlock()
		return chain, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *CachedOntology) lookup(cat string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chain, ok := c.cache[cat]
	return chain, ok
}

func dedupe(chain []string) []string {
	seen := make(map[string]struct{}, len(chain))
	out := make([]string, 0, len(chain))
	for _, c := range chain {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
