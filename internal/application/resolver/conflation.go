package resolver

import (
	"context"
	"encoding/json"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

// conflate is the Conflation Layer of spec.md §4.E: a thin wrapper over the
// two conflation stores producing, per requested flag, a deduplicated
// grouping of other canonicals that should be fused into each canonical's
// clique. Results for both flags are unioned per-canonical — never
// positionally zipped, since a canonical may appear in only one of the two
// conflation sets (spec.md §9 "Open question — conflation pairing").
func conflate(ctx context.Context, s store.MultiStore, canonicals []string, flags ConflationFlags, log logging.Logger) (map[string][]string, error) {
	acc := make(map[string][]string, len(canonicals))
	if flags.GeneProtein {
		if err := accumulateConflation(ctx, s, store.StoreConflationGeneProtein, canonicals, acc, log); err != nil {
			return nil, err
		}
	}
	if flags.DrugChemical {
		if err := accumulateConflation(ctx, s, store.StoreConflationDrugChemical, canonicals, acc, log); err != nil {
			return nil, err
		}
	}

	out := make(map[string][]string, len(acc))
	for canon, ys := range acc {
		out[canon] = dedupeStrings(ys)
	}
	return out, nil
}

func accumulateConflation(ctx context.Context, s store.MultiStore, name store.StoreName, canonicals []string, acc map[string][]string, log logging.Logger) error {
	vals, err := s.MultiGet(ctx, name, canonicals)
	if err != nil {
		return err
	}
	for i, v := range vals {
		if !v.Present || v.Raw == "" {
			continue
		}
		var ys []string
		if err := json.Unmarshal([]byte(v.Raw), &ys); err != nil {
			log.Warn("malformed conflation value",
				logging.String("store", string(name)),
				logging.String("canonical", canonicals[i]),
				logging.Err(err))
			continue
		}
		if len(ys) == 0 {
			continue
		}
		acc[canonicals[i]] = append(acc[canonicals[i]], ys...)
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
