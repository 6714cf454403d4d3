// Package handlers implements the gin HTTP handlers for the node
// normalization service's public endpoints (spec.md §6).
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nodenorm/node-normalizer/pkg/errors"
)

// errorResponse is the standard error response body every endpoint returns
// on failure.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps a domain AppError to its HTTP status via
// ErrorCode.HTTPStatus and writes a structured JSON body. Any other error is
// treated as an unexpected internal failure and its detail is not leaked.
func writeAppError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if ae, ok := err.(*errors.AppError); ok {
		appErr = ae
	}
	if appErr == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    "internal_error",
			Message: "internal server error",
		})
		return
	}

	c.JSON(appErr.Code.HTTPStatus(), errorResponse{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

// splitCSV splits a comma-separated query parameter into its non-empty,
// trimmed members. Used by GET variants of endpoints whose POST body takes
// a JSON array (spec.md §6 "GET/POST symmetry").
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
