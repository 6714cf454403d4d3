package resolver

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/nodenorm/node-normalizer/internal/domain/category"
	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/internal/domain/labelpolicy"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

// Resolver implements spec.md §4.D: the clique-normalization algorithm
// every HTTP endpoint and the SetID Generator builds on.
type Resolver struct {
	store    store.MultiStore
	ontology category.Ontology
	policy   *labelpolicy.Policy
	logger   logging.Logger
}

// New builds a Resolver. policy must be non-nil; callers load it once at
// startup from the JSON document described in spec.md §9.
func New(s store.MultiStore, ontology category.Ontology, policy *labelpolicy.Policy, log logging.Logger) *Resolver {
	return &Resolver{store: s, ontology: ontology, policy: policy, logger: log}
}

// Normalize implements spec.md §4.D steps 1-6. The returned map has exactly
// one entry per input CURIE, preserving input order under iteration of the
// input slice; absent inputs map to a nil *curie.CliqueRecord.
func (r *Resolver) Normalize(ctx context.Context, curies []string, opts NormalizeOptions) (map[string]*curie.CliqueRecord, error) {
	out := make(map[string]*curie.CliqueRecord, len(curies))
	if len(curies) == 0 {
		return out, nil
	}

	keys := make([]string, len(curies))
	for i, c := range curies {
		keys[i] = curie.CURIE(c).Upper()
	}

	canonVals, err := r.store.MultiGet(ctx, store.StoreEqToCanonical, keys)
	if err != nil {
		return nil, err
	}

	canonByInput := make([]string, len(curies))
	seen := make(map[string]struct{}, len(curies))
	var canonicals []string
	for i, v := range canonVals {
		if !v.Present {
			continue
		}
		canonByInput[i] = v.Raw
		if _, ok := seen[v.Raw]; !ok {
			seen[v.Raw] = struct{}{}
			canonicals = append(canonicals, v.Raw)
		}
	}
	if len(canonicals) == 0 {
		for _, c := range curies {
			out[c] = nil
		}
		return out, nil
	}

	icByCanon, err := r.fetchIC(ctx, canonicals)
	if err != nil {
		return nil, err
	}
	membersByCanon, err := r.fetchMembers(ctx, canonicals)
	if err != nil {
		return nil, err
	}
	leafByCanon, err := r.fetchLeafCategories(ctx, canonicals)
	if err != nil {
		return nil, err
	}
	categoriesByCanon := r.expandCategories(ctx, leafByCanon)
	applyLeafCategory(membersByCanon, leafByCanon)

	flags := opts.flags()
	if flags.GeneProtein || flags.DrugChemical {
		conflationMap, err := conflate(ctx, r.store, canonicals, flags, r.logger)
		if err != nil {
			return nil, err
		}
		if err := r.applyConflation(ctx, conflationMap, membersByCanon, categoriesByCanon); err != nil {
			return nil, err
		}
	}

	for i, c := range curies {
		canon := canonByInput[i]
		if canon == "" {
			out[c] = nil
			continue
		}
		out[c] = r.buildRecord(membersByCanon[canon], categoriesByCanon[canon], icByCanon[canon], opts)
	}
	return out, nil
}

// applyConflation fetches members and categories for every conflated
// canonical in a single combined batch per store (spec.md §5 "one multiGet
// per store per logical step"), then replaces each x's clique data with the
// concatenation, in ys order, of the fetched data.
func (r *Resolver) applyConflation(ctx context.Context, conflationMap map[string][]string, membersByCanon map[string][]curie.CliqueMember, categoriesByCanon map[string][]string) error {
	seenY := make(map[string]struct{})
	var allYs []string
	for _, ys := range conflationMap {
		for _, y := range ys {
			if _, ok := seenY[y]; !ok {
				seenY[y] = struct{}{}
				allYs = append(allYs, y)
			}
		}
	}
	if len(allYs) == 0 {
		return nil
	}

	yMembers, err := r.fetchMembers(ctx, allYs)
	if err != nil {
		return err
	}
	yLeaf, err := r.fetchLeafCategories(ctx, allYs)
	if err != nil {
		return err
	}
	yCategories := r.expandCategories(ctx, yLeaf)
	applyLeafCategory(yMembers, yLeaf)

	for x, ys := range conflationMap {
		if len(ys) == 0 {
			continue
		}
		var members []curie.CliqueMember
		var categories []string
		for _, y := range ys {
			members = append(members, yMembers[y]...)
			categories = append(categories, yCategories[y]...)
		}
		membersByCanon[x] = members
		categoriesByCanon[x] = dedupeStrings(categories)
	}
	return nil
}

func applyLeafCategory(membersByCanon map[string][]curie.CliqueMember, leafByCanon map[string]string) {
	for canon, leaf := range leafByCanon {
		members := membersByCanon[canon]
		for i := range members {
			members[i].Category = []string{leaf}
		}
	}
}

// buildRecord constructs the CliqueRecord for one input per spec.md §4.D
// step 5. Returns nil (absent) if no members survive the defensive filter.
func (r *Resolver) buildRecord(members []curie.CliqueMember, categories []string, ic *float64, opts NormalizeOptions) *curie.CliqueRecord {
	filtered := make([]curie.CliqueMember, 0, len(members))
	for _, m := range members {
		if m.Identifier == "" {
			r.logger.Warn("dropping member with absent identifier")
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) == 0 {
		return nil
	}

	labels := labelpolicy.SelectLabels(filtered, categories, r.policy)

	rec := &curie.CliqueRecord{
		Type:               removeRootCategory(categories),
		InformationContent: ic,
	}
	rec.Preferred.Identifier = filtered[0].Identifier
	if len(labels) > 0 {
		rec.Preferred.Label = labels[0]
	}
	if opts.IncludeDescriptions {
		rec.Preferred.Description = firstNonEmptyDescription(filtered)
	}

	rec.EquivalentIdentifiers = make([]curie.EquivalentIdentifier, 0, len(filtered))
	for _, m := range filtered {
		e := curie.EquivalentIdentifier{Identifier: m.Identifier, Label: m.Label}
		if opts.IncludeDescriptions && len(m.Descriptions) > 0 {
			e.Description = m.Descriptions[0]
		}
		if opts.IncludeIndividualTypes && len(m.Category) > 0 {
			e.Category = m.Category[len(m.Category)-1]
		}
		rec.EquivalentIdentifiers = append(rec.EquivalentIdentifiers, e)
	}
	return rec
}

func firstNonEmptyDescription(members []curie.CliqueMember) string {
	for _, m := range members {
		if len(m.Descriptions) == 0 {
			continue
		}
		if d := strings.TrimSpace(m.Descriptions[0]); d != "" {
			return m.Descriptions[0]
		}
	}
	return ""
}

func removeRootCategory(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == curie.RootCategory {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Resolver) fetchIC(ctx context.Context, ids []string) (map[string]*float64, error) {
	vals, err := r.store.MultiGet(ctx, store.StoreCanonicalIC, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*float64, len(ids))
	for i, v := range vals {
		if !v.Present {
			continue
		}
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			r.logger.Warn("malformed information-content value", logging.String("canonical", ids[i]), logging.Err(err))
			continue
		}
		rounded := math.Round(f*10) / 10
		out[ids[i]] = &rounded
	}
	return out, nil
}

func (r *Resolver) fetchMembers(ctx context.Context, ids []string) (map[string][]curie.CliqueMember, error) {
	vals, err := r.store.MultiGet(ctx, store.StoreCanonicalMembers, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]curie.CliqueMember, len(ids))
	for i, v := range vals {
		if !v.Present {
			continue
		}
		var members []curie.CliqueMember
		if err := json.Unmarshal([]byte(v.Raw), &members); err != nil {
			r.logger.Warn("malformed canonical-members value", logging.String("canonical", ids[i]), logging.Err(err))
			continue
		}
		out[ids[i]] = members
	}
	return out, nil
}

func (r *Resolver) fetchLeafCategories(ctx context.Context, ids []string) (map[string]string, error) {
	vals, err := r.store.MultiGet(ctx, store.StoreCanonicalCategory, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(ids))
	for i, v := range vals {
		if v.Present && v.Raw != "" {
			out[ids[i]] = v.Raw
			continue
		}
		r.logger.Warn("canonical category absent, substituting default leaf", logging.String("canonical", ids[i]))
		out[ids[i]] = curie.DefaultLeafCategory
	}
	return out, nil
}

func (r *Resolver) expandCategories(ctx context.Context, leafByCanon map[string]string) map[string][]string {
	out := make(map[string][]string, len(leafByCanon))
	for canon, leaf := range leafByCanon {
		chain, err := r.ontology.Ancestors(ctx, leaf)
		if err != nil {
			r.logger.Warn("ancestor lookup failed, using leaf category only", logging.String("category", leaf), logging.Err(err))
			chain = []string{leaf}
		}
		out[canon] = chain
	}
	return out
}
