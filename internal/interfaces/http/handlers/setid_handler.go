package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nodenorm/node-normalizer/internal/application/setid"
	"github.com/nodenorm/node-normalizer/pkg/errors"
	"github.com/nodenorm/node-normalizer/pkg/types"
)

// SetIDHandler serves GET/POST /get_setid (spec.md §4.G).
type SetIDHandler struct {
	generator *setid.Generator
}

// NewSetIDHandler builds a SetIDHandler over the given Generator.
func NewSetIDHandler(g *setid.Generator) *SetIDHandler {
	return &SetIDHandler{generator: g}
}

// Get handles GET /get_setid: a single curie+conflation set taken from
// query parameters.
func (h *SetIDHandler) Get(c *gin.Context) {
	curies := splitCSV(c.Query("curie"))
	flags, err := parseFlagNames(splitCSV(c.Query("conflation")))
	if err != nil {
		writeAppError(c, err)
		return
	}

	resp, err := h.generator.Generate(c.Request.Context(), curies, flags)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Post handles POST /get_setid: a named map of curie sets, each answered
// independently (spec.md §4.G, original's bulk SetID endpoint).
func (h *SetIDHandler) Post(c *gin.Context) {
	var req types.SetIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, errors.Wrap(err, errors.CodeValidationError, "malformed request body"))
		return
	}

	resp := make(map[string]*setid.Response, len(req.Sets))
	for name, query := range req.Sets {
		flags, err := parseFlagNames(query.Conflations)
		if err != nil {
			writeAppError(c, err)
			return
		}
		r, err := h.generator.Generate(c.Request.Context(), query.Curies, flags)
		if err != nil {
			writeAppError(c, err)
			return
		}
		resp[name] = r
	}
	c.JSON(http.StatusOK, resp)
}

func parseFlagNames(names []string) ([]setid.Flag, error) {
	flags := make([]setid.Flag, len(names))
	for i, n := range names {
		flags[i] = setid.Flag(n)
	}
	return flags, nil
}
