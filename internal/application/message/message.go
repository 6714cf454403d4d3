// Package message implements the TRAPI Message Normalizer of spec.md §4.F:
// a query-graph pass, a knowledge-graph pass (node merge and edge-signature
// dedup), and a results pass, producing a new Message with no structural
// references to the one it was given.
package message

import (
	"context"
	"sort"

	"github.com/nodenorm/node-normalizer/internal/application/resolver"
	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/pkg/types"
)

// Options controls which conflation overlays the normalizer's internal
// Resolver.Normalize calls apply.
type Options struct {
	ConflateGeneProtein  bool
	ConflateDrugChemical bool
}

func (o Options) normalizeOptions() resolver.NormalizeOptions {
	return resolver.NormalizeOptions{
		ConflateGeneProtein:  o.ConflateGeneProtein,
		ConflateDrugChemical: o.ConflateDrugChemical,
		IncludeDescriptions:  false,
	}
}

// Normalizer transforms TRAPI Messages via an injected Resolver.
type Normalizer struct {
	resolver *resolver.Resolver
	logger   logging.Logger
}

// New builds a Normalizer over the given Resolver.
func New(r *resolver.Resolver, log logging.Logger) *Normalizer {
	return &Normalizer{resolver: r, logger: log}
}

// Normalize runs all three passes and returns a fresh Message. The input is
// never mutated.
func (n *Normalizer) Normalize(ctx context.Context, msg *types.Message, opts Options) (*types.Message, error) {
	out := &types.Message{}

	if msg.QueryGraph != nil {
		qg, err := n.queryGraphPass(ctx, msg.QueryGraph, opts)
		if err != nil {
			return nil, err
		}
		out.QueryGraph = qg
	}

	var nodeIDMap, edgeIDMap map[string]string
	var icByOriginalID map[string]*float64
	if msg.KnowledgeGraph != nil {
		kg, nm, em, ic, err := n.knowledgeGraphPass(ctx, msg.KnowledgeGraph, opts)
		if err != nil {
			return nil, err
		}
		out.KnowledgeGraph = kg
		nodeIDMap, edgeIDMap, icByOriginalID = nm, em, ic
	}

	if msg.Results != nil {
		out.Results = n.resultsPass(msg.Results, nodeIDMap, edgeIDMap, icByOriginalID)
	}

	return out, nil
}

// queryGraphPass implements spec.md §4.F "Query-graph pass". Every qnode's
// ids are normalized independently; edges are copied by reference-value.
func (n *Normalizer) queryGraphPass(ctx context.Context, qg *types.QueryGraph, opts Options) (*types.QueryGraph, error) {
	out := &types.QueryGraph{
		Nodes: make(map[string]types.QNode, len(qg.Nodes)),
		Edges: make(map[string]types.QEdge, len(qg.Edges)),
	}

	for key, node := range qg.Nodes {
		newNode := node
		if len(node.IDs) > 0 {
			records, err := n.resolver.Normalize(ctx, node.IDs, opts.normalizeOptions())
			if err != nil {
				return nil, err
			}
			newNode.IDs = substitutePreferred(node.IDs, records)
		}
		out.Nodes[key] = newNode
	}
	for key, edge := range qg.Edges {
		out.Edges[key] = edge
	}
	return out, nil
}

// substitutePreferred replaces each id with its preferred identifier when
// normalizable, deduplicating the result while preserving first-occurrence
// order. Ids that fail to normalize are preserved as-is.
func substitutePreferred(ids []string, records map[string]*curie.CliqueRecord) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		resolved := id
		if rec := records[id]; rec != nil {
			resolved = rec.Preferred.Identifier
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}

// sortedKeys returns a map's keys in lexicographic order. Go's JSON decoder
// does not preserve object-key order inside map[string]T, so every pass
// that claims an "iteration order" processes keys in this deterministic
// order rather than an unrecoverable original order.
func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
