package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nodenorm/node-normalizer/internal/application/resolver"
	"github.com/nodenorm/node-normalizer/internal/application/setid"
	"github.com/nodenorm/node-normalizer/pkg/errors"
	"github.com/nodenorm/node-normalizer/pkg/types"
)

// MetadataHandler serves the read-only metadata endpoints supplemented from
// the original's surface: GET /get_semantic_types, GET/POST
// /get_curie_prefixes, and GET /get_allowed_conflations.
type MetadataHandler struct {
	resolver *resolver.Resolver
}

// NewMetadataHandler builds a MetadataHandler over the given Resolver.
func NewMetadataHandler(r *resolver.Resolver) *MetadataHandler {
	return &MetadataHandler{resolver: r}
}

// SemanticTypes handles GET /get_semantic_types.
func (h *MetadataHandler) SemanticTypes(c *gin.Context) {
	semanticTypes, err := h.resolver.SemanticTypes(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SemanticTypesResponse{SemanticTypes: semanticTypes})
}

// CuriePrefixes handles GET/POST /get_curie_prefixes. GET takes a
// comma-separated `semantic_type` query parameter; POST takes a JSON body
// with a `semantic_types` array. An empty selector requests every category.
func (h *MetadataHandler) CuriePrefixes(c *gin.Context) {
	var requested []string
	if c.Request.Method == http.MethodGet {
		requested = splitCSV(c.Query("semantic_type"))
	} else {
		var body types.SemanticTypesResponse
		if err := c.ShouldBindJSON(&body); err != nil {
			writeAppError(c, errors.Wrap(err, errors.CodeValidationError, "malformed request body"))
			return
		}
		requested = body.SemanticTypes
	}

	counts, err := h.resolver.CuriePrefixes(c.Request.Context(), requested)
	if err != nil {
		writeAppError(c, err)
		return
	}

	out := make(map[string]map[string]int64, len(counts))
	for category, bucket := range counts {
		out[category] = bucket
	}
	c.JSON(http.StatusOK, types.CuriePrefixesResponse{CuriePrefixes: out})
}

// allowedConflations is the fixed set of conflation overlays the resolver
// understands (spec.md §4.G step 1).
var allowedConflations = []string{string(setid.FlagGeneProtein), string(setid.FlagDrugChemical)}

// AllowedConflations handles GET /get_allowed_conflations.
func (h *MetadataHandler) AllowedConflations(c *gin.Context) {
	c.JSON(http.StatusOK, types.AllowedConflationsResponse{Conflations: allowedConflations})
}
