package category

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nodenorm/node-normalizer/internal/domain/curie"
)

// StaticOntology serves ancestor chains from a table loaded once at startup,
// mapping each category to its direct parent. It satisfies Ontology without
// reaching out to a live biolink-model toolkit.
type StaticOntology struct {
	parent map[string]string
}

// NewStaticOntology builds a StaticOntology from a category→parent map. The
// map need not include the root category; a category with no entry is
// treated as having no further ancestors.
func NewStaticOntology(parent map[string]string) *StaticOntology {
	return &StaticOntology{parent: parent}
}

// LoadStaticOntology reads a JSON document of the shape {"category": "parent
// category", ...} and returns a StaticOntology backed by it.
func LoadStaticOntology(r io.Reader) (*StaticOntology, error) {
	var parent map[string]string
	if err := json.NewDecoder(r).Decode(&parent); err != nil {
		return nil, fmt.Errorf("category: failed to decode ontology table: %w", err)
	}
	return NewStaticOntology(parent), nil
}

// Ancestors walks the parent table from cat up to the root, most-specific
// first. A category absent from the table, mapped to an empty parent, or
// equal to curie.RootCategory, terminates the walk.
func (o *StaticOntology) Ancestors(_ context.Context, cat string) ([]string, error) {
	chain := []string{cat}
	cur := cat
	for {
		if cur == curie.RootCategory {
			break
		}
		next, ok := o.parent[cur]
		if !ok || next == "" {
			break
		}
		chain = append(chain, next)
		cur = next
	}
	return chain, nil
}
