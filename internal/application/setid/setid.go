// Package setid implements the SetID Generator of spec.md §4.G: a
// deterministic identifier derived from a normalized, sorted, deduplicated
// CURIE set via UUIDv5.
package setid

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nodenorm/node-normalizer/internal/application/resolver"
	"github.com/nodenorm/node-normalizer/pkg/errors"
)

// Flag names a conflation overlay a caller may request (spec.md §4.G step 1).
type Flag string

const (
	FlagGeneProtein  Flag = "GeneProtein"
	FlagDrugChemical Flag = "DrugChemical"
)

// namespace is the fixed UUIDv5 namespace for all set-ids (spec.md §4.G
// step 7). It must never change — doing so would silently redefine every
// previously issued set-id.
var namespace = uuid.MustParse("14ef168c-14cb-4979-8442-da6aaca55572")

// separator joins the sorted, deduplicated, normalized CURIE list before
// hashing (spec.md §4.G step 6).
const separator = "||"

// Response is the full payload spec.md §4.G requires: original input,
// requested conflations, the normalized sorted set, its joined string form,
// and the resulting set-id.
type Response struct {
	Curies           []string `json:"curies"`
	Conflations      []string `json:"conflations"`
	NormalizedCuries []string `json:"normalized_curies"`
	NormalizedString string   `json:"normalized_string"`
	SetID            string   `json:"setid"`
}

// Generator computes SetID Responses via an injected Resolver (spec.md
// §4.G step 2).
type Generator struct {
	resolver *resolver.Resolver
}

// New builds a Generator over the given Resolver.
func New(r *resolver.Resolver) *Generator {
	return &Generator{resolver: r}
}

// Generate implements spec.md §4.G in full. curies and flags are taken
// verbatim from the caller; flags are validated before any normalization
// work occurs.
func (g *Generator) Generate(ctx context.Context, curies []string, flags []Flag) (*Response, error) {
	opts, conflationNames, err := parseFlags(flags)
	if err != nil {
		return nil, err
	}

	records, err := g.resolver.Normalize(ctx, curies, opts)
	if err != nil {
		return nil, err
	}

	substituted := make([]string, 0, len(curies))
	seen := make(map[string]struct{}, len(curies))
	for _, c := range curies {
		resolved := c
		if rec := records[c]; rec != nil {
			resolved = rec.Preferred.Identifier
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		substituted = append(substituted, resolved)
	}

	sort.Strings(substituted)

	resp := &Response{
		Curies:           curies,
		Conflations:      conflationNames,
		NormalizedCuries: substituted,
	}
	if len(substituted) == 0 {
		return resp, nil
	}

	joined := joinWithSeparator(substituted)
	resp.NormalizedString = joined
	resp.SetID = "uuid:" + uuid.NewSHA1(namespace, []byte(joined)).String()
	return resp, nil
}

func parseFlags(flags []Flag) (resolver.NormalizeOptions, []string, error) {
	opts := resolver.NormalizeOptions{IncludeDescriptions: false}
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		switch f {
		case FlagGeneProtein:
			opts.ConflateGeneProtein = true
		case FlagDrugChemical:
			opts.ConflateDrugChemical = true
		default:
			return resolver.NormalizeOptions{}, nil, errors.New(errors.CodeConflationUnknown, "unknown conflation flag").
				WithDetail(string(f))
		}
		names = append(names, string(f))
	}
	return opts, names, nil
}

func joinWithSeparator(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += separator + p
	}
	return out
}
