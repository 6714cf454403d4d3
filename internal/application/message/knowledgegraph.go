package message

import (
	"context"

	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/pkg/types"
)

// knowledgeGraphPass implements spec.md §4.F "Knowledge-graph pass" and
// §4.F.1 "Node-merge rule". It returns the rewritten graph plus the two
// lookup maps the results pass needs, and the information-content-by-
// original-kg-id map so the results pass can re-synthesize the same
// attribute without re-querying the Resolver.
func (n *Normalizer) knowledgeGraphPass(ctx context.Context, kg *types.KnowledgeGraph, opts Options) (*types.KnowledgeGraph, map[string]string, map[string]string, map[string]*float64, error) {
	nodeIDs := sortedKeys(kg.Nodes)
	records, err := n.resolver.Normalize(ctx, nodeIDs, opts.normalizeOptions())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	nodeIDMap := make(map[string]string, len(nodeIDs))
	icByOriginalID := make(map[string]*float64, len(nodeIDs))
	emitted := make(map[string]*types.KNode, len(nodeIDs))
	mergeCount := make(map[string]int, len(nodeIDs))

	for _, id := range nodeIDs {
		node := kg.Nodes[id]
		rec := records[id]
		if rec == nil {
			cp := copyKNode(node)
			emitted[id] = &cp
			continue
		}

		icByOriginalID[id] = rec.InformationContent
		preferred := rec.Preferred.Identifier
		nodeIDMap[id] = preferred

		if existing, ok := emitted[preferred]; ok {
			mergeNode(existing, node, preferred, mergeCount)
			continue
		}
		newNode := buildPrimaryNode(rec, node)
		emitted[preferred] = &newNode
	}

	outNodes := make(map[string]types.KNode, len(emitted))
	for key, node := range emitted {
		outNodes[key] = *node
	}

	outEdges, edgeIDMap := n.rewriteEdges(kg, nodeIDMap)

	return &types.KnowledgeGraph{Nodes: outNodes, Edges: outEdges}, nodeIDMap, edgeIDMap, icByOriginalID, nil
}

// buildPrimaryNode constructs the node emitted the first time a preferred
// identifier is seen (spec.md §4.F knowledge-graph pass).
func buildPrimaryNode(rec *curie.CliqueRecord, incoming types.KNode) types.KNode {
	name := rec.Preferred.Label
	if name == "" {
		name = incoming.Name
	}

	node := types.KNode{
		Name:       name,
		Categories: append([]string(nil), rec.Type...),
		Attributes: copyAttributes(incoming.Attributes),
	}

	sameAs := make([]interface{}, 0, len(rec.EquivalentIdentifiers))
	for _, eq := range rec.EquivalentIdentifiers {
		sameAs = append(sameAs, eq.Identifier)
	}
	node.Attributes = append(node.Attributes, types.Attribute{
		AttributeTypeID: types.AttributeTypeSameAs,
		Value:           sameAs,
	})

	if rec.InformationContent != nil {
		node.Attributes = append(node.Attributes, icAttribute(*rec.InformationContent))
	}

	return node
}

func icAttribute(ic float64) types.Attribute {
	return types.Attribute{
		AttributeTypeID:       types.AttributeTypeHasNumericValue,
		Value:                 ic,
		OriginalAttributeName: types.AttributeOriginalNameICEDAM,
	}
}

func copyKNode(n types.KNode) types.KNode {
	return types.KNode{
		Name:       n.Name,
		Categories: append([]string(nil), n.Categories...),
		Attributes: copyAttributes(n.Attributes),
	}
}

func copyAttributes(attrs []types.Attribute) []types.Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]types.Attribute, len(attrs))
	copy(out, attrs)
	return out
}

// rewriteEdges implements the edge half of the knowledge-graph pass: subject
// and object rewriting via nodeIDMap, edge-signature computation, and
// first-occurrence dedup (spec.md §4.F).
func (n *Normalizer) rewriteEdges(kg *types.KnowledgeGraph, nodeIDMap map[string]string) (map[string]types.KEdge, map[string]string) {
	edgeKeys := sortedKeys(kg.Edges)
	edgeIDMap := make(map[string]string, len(edgeKeys))
	outEdges := make(map[string]types.KEdge, len(edgeKeys))
	seenSig := make(map[string]string, len(edgeKeys))

	for _, key := range edgeKeys {
		edge := kg.Edges[key]
		newSubject := rewriteID(edge.Subject, nodeIDMap)
		newObject := rewriteID(edge.Object, nodeIDMap)

		hash, unhashable := attributeHash(edge.Attributes)
		sig := edgeSignature(newSubject, edge.Predicate, newObject, hash)
		if unhashable {
			sig = sig + "#" + freshToken()
		}

		if first, ok := seenSig[sig]; ok {
			edgeIDMap[key] = first
			continue
		}
		seenSig[sig] = key
		edgeIDMap[key] = key
		outEdges[key] = types.KEdge{
			Subject:    newSubject,
			Predicate:  edge.Predicate,
			Object:     newObject,
			Attributes: copyAttributes(edge.Attributes),
		}
	}
	return outEdges, edgeIDMap
}

func rewriteID(id string, m map[string]string) string {
	if v, ok := m[id]; ok {
		return v
	}
	return id
}
