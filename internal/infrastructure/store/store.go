// Package store defines the MultiStore abstraction the resolver, message
// normalizer, and ingestion writers use to reach the seven logical
// key-value stores of spec.md §4.A, independent of the backing engine.
package store

import "context"

// StoreName identifies one of the seven logical stores spec.md §4.A names.
type StoreName string

const (
	StoreEqToCanonical          StoreName = "eq_to_canonical"
	StoreCanonicalMembers       StoreName = "canonical_members"
	StoreCanonicalCategory      StoreName = "canonical_category"
	StoreCanonicalIC            StoreName = "canonical_ic"
	StoreCategoryPrefixes       StoreName = "category_prefix_counts"
	StoreConflationGeneProtein  StoreName = "conflation_gene_protein"
	StoreConflationDrugChemical StoreName = "conflation_drug_chemical"
)

// Value is the result of a single-key lookup: Raw is meaningless unless
// Present is true, which distinguishes a genuinely empty string from a
// missing key (spec.md §4.D step 1).
type Value struct {
	Raw     string
	Present bool
}

// MultiStore is the read/write contract every resolver, message-normalizer,
// and ingestion component depends on. Implementations batch MultiGet into
// chunks of at most an implementation-defined ceiling and concatenate
// results positionally (spec.md §5 "Scheduling model").
type MultiStore interface {
	MultiGet(ctx context.Context, store StoreName, keys []string) ([]Value, error)
	Get(ctx context.Context, store StoreName, key string) (Value, error)
	LRange(ctx context.Context, store StoreName, key string, start, stop int64) ([]string, error)
	Keys(ctx context.Context, store StoreName, pattern string) ([]string, error)
	Pipeline() WritePipeline
	KeyCount(ctx context.Context, store StoreName) (int64, error)
}

// WritePipeline batches writes for a single ingestion flush (spec.md §4.H).
type WritePipeline interface {
	Set(store StoreName, key, value string)
	RPush(store StoreName, key string, values ...string)
	Flush(ctx context.Context) error
}
