// Package types holds the wire-format DTOs shared across the application and
// interfaces layers: the TRAPI Message shape consumed by the Message
// Normalizer, and the request/response bodies of the HTTP surface.
package types

// Message is a TRAPI message: a query graph, the knowledge graph gathered in
// answering it, and the set of results binding the two together. The
// Message Normalizer (spec.md §4.F) produces a new Message with no
// structural references to the one it was given.
type Message struct {
	QueryGraph     *QueryGraph     `json:"query_graph,omitempty"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph,omitempty"`
	Results        []Result        `json:"results,omitempty"`
}

// QueryGraph is the TRAPI query graph: named nodes and edges describing the
// shape of the question being asked.
type QueryGraph struct {
	Nodes map[string]QNode `json:"nodes"`
	Edges map[string]QEdge `json:"edges"`
}

// QNode is one query-graph node. Ids, when present, are normalized in place
// by the query-graph pass; every other field is carried through untouched.
type QNode struct {
	IDs        []string `json:"ids,omitempty"`
	Categories []string `json:"categories,omitempty"`
	IsSet      bool     `json:"is_set,omitempty"`
}

// QEdge is one query-graph edge, copied by reference-value (untouched) by
// the query-graph pass.
type QEdge struct {
	Subject    string   `json:"subject"`
	Object     string   `json:"object"`
	Predicates []string `json:"predicates,omitempty"`
}

// KnowledgeGraph is the TRAPI knowledge graph: the nodes and edges actually
// gathered while answering the query, keyed by opaque knowledge-graph ids.
type KnowledgeGraph struct {
	Nodes map[string]KNode `json:"nodes"`
	Edges map[string]KEdge `json:"edges"`
}

// KNode is one knowledge-graph node.
type KNode struct {
	Name       string      `json:"name,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// KEdge is one knowledge-graph edge.
type KEdge struct {
	Subject    string      `json:"subject"`
	Predicate  string      `json:"predicate"`
	Object     string      `json:"object"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute is a single TRAPI attribute entry, the unit the edge-signature
// hash and node-merge key suffixing operate over.
type Attribute struct {
	AttributeTypeID       string      `json:"attribute_type_id"`
	Value                 interface{} `json:"value"`
	ValueTypeID           string      `json:"value_type_id,omitempty"`
	OriginalAttributeName string      `json:"original_attribute_name,omitempty"`
	ValueURL              string      `json:"value_url,omitempty"`
	AttributeSource       string      `json:"attribute_source,omitempty"`
}

// Result is one TRAPI result: node bindings keyed by query-node-id, and
// per-analysis edge bindings keyed by query-edge-id.
type Result struct {
	NodeBindings map[string][]NodeBinding `json:"node_bindings"`
	Analyses     []Analysis               `json:"analyses,omitempty"`
}

// Analysis groups the edge bindings produced by one reasoning source.
type Analysis struct {
	ResourceID   string                   `json:"resource_id,omitempty"`
	EdgeBindings map[string][]EdgeBinding `json:"edge_bindings"`
}

// NodeBinding binds a query-graph node to a knowledge-graph node id.
type NodeBinding struct {
	ID         string      `json:"id"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// EdgeBinding binds a query-graph edge to a knowledge-graph edge id.
type EdgeBinding struct {
	ID string `json:"id"`
}

// Biolink vocabulary constants used by the knowledge-graph pass when
// synthesizing attributes (spec.md §4.F).
const (
	AttributeTypeSameAs          = "biolink:same_as"
	AttributeTypeHasNumericValue = "biolink:has_numeric_value"
	AttributeOriginalNameICEDAM  = "EDAM:data_0006"
)
