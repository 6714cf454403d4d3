package message

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/nodenorm/node-normalizer/pkg/types"
)

// edgeSignature joins an edge's rewritten subject/predicate/object and its
// attribute-hash into the single dedup key described by spec.md §4.F.
func edgeSignature(subject, predicate, object, attributeHash string) string {
	return strings.Join([]string{subject, predicate, object, attributeHash}, "\x1f")
}

// attributeHash implements spec.md §4.F's attribute-hash: a deterministic
// digest of the edge's attribute list, or (unhashable=true) when any
// attribute value is a deeply nested mapping, per spec.md §9's "unhashable
// → fresh unique token" rule.
func attributeHash(attrs []types.Attribute) (hash string, unhashable bool) {
	tuples := make([]interface{}, 0, len(attrs))
	for _, a := range attrs {
		hv, ok := hashValue(a.Value, 0)
		if !ok {
			return "", true
		}
		tuples = append(tuples, []interface{}{
			a.AttributeTypeID,
			hv,
			a.OriginalAttributeName,
			a.ValueURL,
			a.AttributeSource,
			a.ValueTypeID,
			a.AttributeSource,
		})
	}

	b, err := json.Marshal(tuples)
	if err != nil {
		return "", true
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), false
}

// hashValue recursively converts an attribute value into a hashable,
// order-stable representation. Scalars pass through as-is; lists become
// tuples of their hashed elements; flat mappings become a sorted tuple of
// (key, value) pairs. A mapping found nested inside another mapping is
// declared unhashable (spec.md §4.F).
func hashValue(v interface{}, mapDepth int) (interface{}, bool) {
	switch t := v.(type) {
	case nil, bool, string, float64, int, int64:
		return v, true
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			hv, ok := hashValue(e, mapDepth)
			if !ok {
				return nil, false
			}
			out = append(out, hv)
		}
		return out, true
	case map[string]interface{}:
		if mapDepth >= 1 {
			return nil, false
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]interface{}, 0, len(keys))
		for _, k := range keys {
			hv, ok := hashValue(t[k], mapDepth+1)
			if !ok {
				return nil, false
			}
			out = append(out, []interface{}{k, hv})
		}
		return out, true
	default:
		return fmt.Sprint(v), true
	}
}

var freshTokenCounter int64

// freshToken returns a value guaranteed unique within this process, used as
// the attribute-hash substitute for unhashable attribute values so such
// edges never dedup against each other.
func freshToken() string {
	return "unhashable-" + strconv.FormatInt(atomic.AddInt64(&freshTokenCounter, 1), 10)
}
