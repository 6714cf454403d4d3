// Package prefixindex implements the per-category prefix-count accounting
// of spec.md §4.H: each ingested file contributes a partial
// prefix-to-count map per category it touches, and a final merge step
// unions those partial maps into the totals served by
// GET /get_curie_prefixes and GET /get_semantic_types.
package prefixindex

import "encoding/json"

// Counts is a prefix→occurrence-count map for one biolink category
// (spec.md §6 "Wire format of stored values": `{prefix: int}`).
type Counts map[string]int64

// Add increments the count for prefix by n.
func (c Counts) Add(prefix string, n int64) {
	c[prefix] += n
}

// Merge unions a set of JSON-encoded partial Counts blobs, as persisted by
// RPush onto a category's store.StoreCategoryPrefixes entry — one blob per
// file that contributed to that category.
func Merge(blobs []string) (Counts, error) {
	out := make(Counts)
	for _, blob := range blobs {
		var partial Counts
		if err := json.Unmarshal([]byte(blob), &partial); err != nil {
			return nil, err
		}
		for prefix, count := range partial {
			out[prefix] += count
		}
	}
	return out, nil
}
