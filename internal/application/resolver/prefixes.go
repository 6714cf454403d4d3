package resolver

import (
	"context"

	"github.com/nodenorm/node-normalizer/internal/domain/prefixindex"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

// SemanticTypes returns every biolink category that has accumulated at
// least one prefix count during ingestion (spec.md §4 supplemented feature
// "GET /get_semantic_types").
func (r *Resolver) SemanticTypes(ctx context.Context) ([]string, error) {
	return r.store.Keys(ctx, store.StoreCategoryPrefixes, "*")
}

// CuriePrefixes returns, for each requested category (or every known
// category when semanticTypes is empty), the union of every ingestion
// file's partial prefix-count contribution (spec.md §4 "ported as
// internal/application/resolver read-only queries over
// StoreCategoryPrefixes").
func (r *Resolver) CuriePrefixes(ctx context.Context, semanticTypes []string) (map[string]prefixindex.Counts, error) {
	cats := semanticTypes
	if len(cats) == 0 {
		all, err := r.SemanticTypes(ctx)
		if err != nil {
			return nil, err
		}
		cats = all
	}

	out := make(map[string]prefixindex.Counts, len(cats))
	for _, cat := range cats {
		blobs, err := r.store.LRange(ctx, store.StoreCategoryPrefixes, cat, 0, -1)
		if err != nil {
			return nil, err
		}
		merged, err := prefixindex.Merge(blobs)
		if err != nil {
			r.logger.Warn("failed to merge prefix counts for category", logging.String("category", cat), logging.Err(err))
			continue
		}
		out[cat] = merged
	}
	return out, nil
}
