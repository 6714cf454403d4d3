package labelpolicy

import (
	"sort"
	"strings"

	"github.com/nodenorm/node-normalizer/internal/domain/curie"
)

// SelectLabels implements spec.md §4.C: it takes a clique's member list and
// its expanded category list (most-specific-first) and returns an ordered
// list of candidate labels. The head of the result is the preferred label;
// an empty result means the clique has no preferred label. Pure function —
// no I/O, no suspension points (spec.md §5).
func SelectLabels(members []curie.CliqueMember, categories []string, policy *Policy) []string {
	ordered := orderByBoost(members, categories, policy)
	labels := dedupeLabels(ordered)
	labels = filterSuspicious(labels)
	return demoteLong(labels, policy.DemoteLabelsLongerThan)
}

// orderByBoost walks categories from least- to most-specific, keeping the
// last (= most-specific) one that matches a PreferredNameBoostPrefixes key.
// If one is found, members are stably reordered so that members whose
// identifier prefix appears earlier in the mapped list come first.
func orderByBoost(members []curie.CliqueMember, categories []string, policy *Policy) []curie.CliqueMember {
	matched := ""
	for i := len(categories) - 1; i >= 0; i-- {
		if _, ok := policy.PreferredNameBoostPrefixes[categories[i]]; ok {
			matched = categories[i]
		}
	}
	if matched == "" {
		return members
	}

	boost := policy.PreferredNameBoostPrefixes[matched]
	rank := make(map[string]int, len(boost))
	for i, prefix := range boost {
		rank[prefix] = i
	}

	ordered := make([]curie.CliqueMember, len(members))
	copy(ordered, members)
	sort.SliceStable(ordered, func(i, j int) bool {
		return boostRank(ordered[i], rank, len(boost)) < boostRank(ordered[j], rank, len(boost))
	})
	return ordered
}

func boostRank(m curie.CliqueMember, rank map[string]int, unboosted int) int {
	if r, ok := rank[curie.CURIE(m.Identifier).Prefix()]; ok {
		return r
	}
	return unboosted
}

func dedupeLabels(members []curie.CliqueMember) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m.Label]; ok {
			continue
		}
		seen[m.Label] = struct{}{}
		out = append(out, m.Label)
	}
	return out
}

func filterSuspicious(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if strings.HasPrefix(l, "CHEMBL") {
			continue
		}
		out = append(out, l)
	}
	return out
}

func demoteLong(labels []string, limit int) []string {
	hasShort := false
	for _, l := range labels {
		if len(l) <= limit {
			hasShort = true
			break
		}
	}
	if !hasShort {
		return labels
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if len(l) <= limit {
			out = append(out, l)
		}
	}
	return out
}
