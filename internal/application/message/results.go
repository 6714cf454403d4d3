package message

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/nodenorm/node-normalizer/pkg/types"
)

// resultsPass implements spec.md §4.F "Results pass": node/edge binding
// rewriting and dedup, followed by whole-result dedup by canonical
// sorted-key JSON serialization.
func (n *Normalizer) resultsPass(results []types.Result, nodeIDMap, edgeIDMap map[string]string, icByOriginalID map[string]*float64) []types.Result {
	rewritten := make([]types.Result, 0, len(results))
	for _, r := range results {
		rewritten = append(rewritten, rewriteResult(r, nodeIDMap, edgeIDMap, icByOriginalID))
	}
	return dedupeResults(rewritten)
}

func rewriteResult(r types.Result, nodeIDMap, edgeIDMap map[string]string, icByOriginalID map[string]*float64) types.Result {
	out := types.Result{
		NodeBindings: make(map[string][]types.NodeBinding, len(r.NodeBindings)),
	}

	for qnodeKey, bindings := range r.NodeBindings {
		rewritten := make([]types.NodeBinding, 0, len(bindings))
		seenSig := make(map[string]struct{}, len(bindings))
		for _, b := range bindings {
			originalID := b.ID
			newID := rewriteID(b.ID, nodeIDMap)
			attrs := copyAttributes(b.Attributes)
			if ic := icByOriginalID[originalID]; ic != nil {
				attrs = append(attrs, icAttribute(*ic))
			}
			hash, unhashable := attributeHash(attrs)
			sig := newID + "\x1f" + hash
			if unhashable {
				sig += "#" + freshToken()
			}
			if _, ok := seenSig[sig]; ok {
				continue
			}
			seenSig[sig] = struct{}{}
			rewritten = append(rewritten, types.NodeBinding{ID: newID, Attributes: attrs})
		}
		out.NodeBindings[qnodeKey] = rewritten
	}

	if r.Analyses != nil {
		out.Analyses = make([]types.Analysis, 0, len(r.Analyses))
		for _, a := range r.Analyses {
			out.Analyses = append(out.Analyses, rewriteAnalysis(a, edgeIDMap))
		}
	}
	return out
}

func rewriteAnalysis(a types.Analysis, edgeIDMap map[string]string) types.Analysis {
	out := types.Analysis{
		ResourceID:   a.ResourceID,
		EdgeBindings: make(map[string][]types.EdgeBinding, len(a.EdgeBindings)),
	}
	for qedgeKey, bindings := range a.EdgeBindings {
		rewritten := make([]types.EdgeBinding, 0, len(bindings))
		seen := make(map[string]struct{}, len(bindings))
		for _, b := range bindings {
			newID := rewriteID(b.ID, edgeIDMap)
			if _, ok := seen[newID]; ok {
				continue
			}
			seen[newID] = struct{}{}
			rewritten = append(rewritten, types.EdgeBinding{ID: newID})
		}
		out.EdgeBindings[qedgeKey] = rewritten
	}
	return out
}

// dedupeResults drops whole results that serialize identically once their
// bindings are normalized, per spec.md §4.F. Go's encoding/json sorts
// map[string]T keys when marshaling, giving the canonical sorted-key
// serialization the spec calls for without extra bookkeeping.
func dedupeResults(results []types.Result) []types.Result {
	out := make([]types.Result, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		b, err := json.Marshal(r)
		if err != nil {
			out = append(out, r)
			continue
		}
		sum := sha256.Sum256(b)
		key := hex.EncodeToString(sum[:])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
