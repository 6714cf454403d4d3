package message

import (
	"fmt"

	"github.com/nodenorm/node-normalizer/pkg/types"
)

// mergeNode implements spec.md §4.F.1: folding a second kg-node mapping to
// an already-emitted primary into that primary's attribute list, numbering
// otherwise-identically-named attribute fields so no information is lost.
// mergeCount tracks, per primary key, how many merges have landed on it so
// far.
func mergeNode(primary *types.KNode, incoming types.KNode, primaryKey string, mergeCount map[string]int) {
	if len(incoming.Attributes) == 0 {
		return
	}

	n := mergeCount[primaryKey] + 1
	mergeCount[primaryKey] = n

	if n == 1 {
		primary.Attributes = suffixAttributeKeys(primary.Attributes, ".1")
		primary.Attributes = append(primary.Attributes, suffixAttributeKeys(incoming.Attributes, ".2")...)
		return
	}

	suffix := fmt.Sprintf(".%d", n+1)
	primary.Attributes = append(primary.Attributes, suffixAttributeKeys(incoming.Attributes, suffix)...)
}

func suffixAttributeKeys(attrs []types.Attribute, suffix string) []types.Attribute {
	out := make([]types.Attribute, len(attrs))
	for i, a := range attrs {
		a.AttributeTypeID += suffix
		out[i] = a
	}
	return out
}
