package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nodenorm/node-normalizer/internal/application/resolver"
	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/pkg/errors"
	"github.com/nodenorm/node-normalizer/pkg/types"
)

// NormalizeHandler serves GET/POST /get_normalized_nodes (spec.md §4.D).
type NormalizeHandler struct {
	resolver *resolver.Resolver
}

// NewNormalizeHandler builds a NormalizeHandler over the given Resolver.
func NewNormalizeHandler(r *resolver.Resolver) *NormalizeHandler {
	return &NormalizeHandler{resolver: r}
}

// GetPost handles both GET and POST /get_normalized_nodes: GET takes a
// comma-separated `curie` query parameter for each option, POST takes the
// full JSON body (spec.md §6 "GET/POST symmetry").
func (h *NormalizeHandler) GetPost(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		writeAppError(c, err)
		return
	}
	if len(req.Curies) == 0 {
		writeAppError(c, errors.New(errors.CodeValidationError, "curies is required"))
		return
	}

	conflate := true
	if req.Conflate != nil {
		conflate = *req.Conflate
	}
	opts := resolver.NormalizeOptions{
		ConflateGeneProtein:    conflate,
		ConflateDrugChemical:   req.DrugChemicalConflate,
		IncludeDescriptions:    req.Description,
		IncludeIndividualTypes: req.IndividualTypes,
	}

	records, err := h.resolver.Normalize(c.Request.Context(), req.Curies, opts)
	if err != nil {
		writeAppError(c, err)
		return
	}

	resp := make(map[string]*curie.CliqueRecord, len(req.Curies))
	for _, id := range req.Curies {
		resp[id] = records[id]
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NormalizeHandler) parseRequest(c *gin.Context) (types.GetNormalizedNodesRequest, error) {
	if c.Request.Method == http.MethodGet {
		var req types.GetNormalizedNodesRequest
		req.Curies = splitCSV(c.Query("curie"))
		req.Description = c.Query("description") == "true"
		req.DrugChemicalConflate = c.Query("drug_chemical_conflate") == "true"
		req.IndividualTypes = c.Query("individual_types") == "true"
		if v := c.Query("conflate"); v != "" {
			b := v == "true"
			req.Conflate = &b
		}
		return req, nil
	}

	var req types.GetNormalizedNodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, errors.Wrap(err, errors.CodeValidationError, "malformed request body")
	}
	return req, nil
}
