// Package labelpolicy implements the preferred-label selection algorithm of
// spec.md §4.C: a pure function over a clique's members and expanded
// category list, driven by a JSON-loaded Policy.
package labelpolicy

import (
	"encoding/json"
	"io"
)

// Policy externalizes the two configuration constants spec.md §4.C and §9
// ("Label policy externalization") require to be loaded once at startup
// rather than hardcoded.
type Policy struct {
	// PreferredNameBoostPrefixes maps a category to an ordered list of
	// identifier prefixes; members whose prefix appears earlier in the
	// list are preferred label sources for cliques of that category.
	PreferredNameBoostPrefixes map[string][]string `json:"preferred_name_boost_prefixes"`

	// DemoteLabelsLongerThan is the length past which a label is dropped
	// from the candidates, provided a candidate within the limit exists.
	DemoteLabelsLongerThan int `json:"demote_labels_longer_than"`
}

// Load decodes a Policy from JSON of the shape:
//
//	{"preferred_name_boost_prefixes": {"biolink:Gene": ["NCBIGene", "HGNC"]},
//	 "demote_labels_longer_than": 64}
func Load(r io.Reader) (*Policy, error) {
	var p Policy
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if p.PreferredNameBoostPrefixes == nil {
		p.PreferredNameBoostPrefixes = map[string][]string{}
	}
	return &p, nil
}
