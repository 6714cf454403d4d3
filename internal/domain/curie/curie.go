// Package curie defines the core value types of the normalization domain:
// CURIEs, clique members, cliques, and the CliqueRecord answer shape that the
// resolver produces for each input identifier.
package curie

import "strings"

// CURIE is a compact identifier of the form "prefix:local". The prefix is
// compared case-sensitively; the local part is opaque.
type CURIE string

// Prefix returns the portion of the CURIE before the first colon.
func (c CURIE) Prefix() string {
	s := string(c)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

// Upper returns the uppercased form of the CURIE, used as the lookup key
// into the equivalent-identifier-to-canonical store.
func (c CURIE) Upper() string {
	return strings.ToUpper(string(c))
}

// String returns the CURIE's raw string form.
func (c CURIE) String() string {
	return string(c)
}

// CliqueMember is one equivalent identifier inside a clique: its CURIE, an
// optional label, an ordered (possibly empty) list of descriptions, and an
// optional per-member category populated only when individual types are
// requested.
type CliqueMember struct {
	Identifier   string   `json:"i"`
	Label        string   `json:"l,omitempty"`
	Descriptions []string `json:"d,omitempty"`
	Category     []string `json:"-"`
}

// Clique is the ordered, non-empty member list backing one canonical
// identifier. The first member is always the canonical representative;
// order is significant and mirrors what the stores persist.
type Clique struct {
	Canonical  string
	Members    []CliqueMember
	Categories []string // most-specific-first, after ancestor expansion
	IC         *float64 // information content, rounded to 1 decimal; nil if absent
}

// EquivalentIdentifier is one entry of a CliqueRecord's equivalent_identifiers
// list.
type EquivalentIdentifier struct {
	Identifier  string `json:"identifier"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Preferred is the CliqueRecord's canonical-identifier summary.
type Preferred struct {
	Identifier  string `json:"identifier"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// CliqueRecord is the normalization answer for one input CURIE (spec.md §3).
type CliqueRecord struct {
	Preferred             Preferred              `json:"preferred"`
	EquivalentIdentifiers []EquivalentIdentifier `json:"equivalent_identifiers"`
	Type                  []string               `json:"type"`
	InformationContent    *float64               `json:"information_content,omitempty"`
}

// RootCategory is the universal root of the category tree; it is always
// stripped from a CliqueRecord's Type list (spec.md §3, §4.D step 5).
const RootCategory = "biolink:Entity"

// DefaultLeafCategory substitutes for a missing canon→category lookup
// (spec.md §4.D step 2, §9 "Open question — category absence").
const DefaultLeafCategory = "biolink:NamedThing"
