// Package ingestion implements the bulk compendium/conflation writers of
// spec.md §4.H: schema-validated NDJSON readers that populate the
// MultiStore through pipelined batch writes.
package ingestion

import (
	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/pkg/errors"
)

// compendiumRecord is one line of a compendium NDJSON file (spec.md §6
// "Wire format of stored values").
type compendiumRecord struct {
	Type        string               `json:"type"`
	IC          string               `json:"ic,omitempty"`
	Identifiers []curie.CliqueMember `json:"identifiers"`
}

func (r compendiumRecord) validate() error {
	if r.Type == "" {
		return errors.New(errors.CodeValidationError, "compendium record missing \"type\"")
	}
	if len(r.Identifiers) == 0 {
		return errors.New(errors.CodeValidationError, "compendium record has no identifiers")
	}
	for _, id := range r.Identifiers {
		if id.Identifier == "" {
			return errors.New(errors.CodeValidationError, "compendium record contains an identifier with an empty \"i\"")
		}
	}
	return nil
}

// conflationRecord is one line of a conflation NDJSON file: a flat JSON
// array of canonical identifier strings that should be treated as fused.
type conflationRecord []string

func (r conflationRecord) validate() error {
	if len(r) == 0 {
		return errors.New(errors.CodeValidationError, "conflation record is empty")
	}
	for _, id := range r {
		if id == "" {
			return errors.New(errors.CodeValidationError, "conflation record contains an empty identifier")
		}
	}
	return nil
}
