package types

// GetNormalizedNodesRequest is the body of POST /get_normalized_nodes
// (spec.md §4.D, ported from the original's CurieList input model).
type GetNormalizedNodesRequest struct {
	Curies               []string `json:"curies"`
	Conflate             *bool    `json:"conflate,omitempty"`
	Description          bool     `json:"description,omitempty"`
	DrugChemicalConflate bool     `json:"drug_chemical_conflate,omitempty"`
	IndividualTypes      bool     `json:"individual_types,omitempty"`
}

// SetIDQuery is one named entry of a POST /get_setid request body.
type SetIDQuery struct {
	Curies      []string `json:"curies"`
	Conflations []string `json:"conflations,omitempty"`
}

// SetIDsRequest is the body of POST /get_setid: a named set of SetIDQuery
// entries, each answered independently.
type SetIDsRequest struct {
	Sets map[string]SetIDQuery `json:"sets"`
}

// SemanticTypesResponse is the body of GET /get_semantic_types.
type SemanticTypesResponse struct {
	SemanticTypes []string `json:"semantic_types"`
}

// CuriePrefixesResponse is the body of GET/POST /get_curie_prefixes: for
// each requested semantic type, the prefix-to-count pivot recorded during
// ingestion (spec.md §4.H).
type CuriePrefixesResponse struct {
	CuriePrefixes map[string]map[string]int64 `json:"curie_prefixes"`
}

// AllowedConflationsResponse is the body of GET /get_allowed_conflations.
type AllowedConflationsResponse struct {
	Conflations []string `json:"conflations"`
}

// StatusResponse is the body of GET /status: service metadata and
// per-store key counts (spec.md §4 supplemented features).
type StatusResponse struct {
	BabelVersion string           `json:"babel_version"`
	StoreCounts  map[string]int64 `json:"store_counts"`
}
