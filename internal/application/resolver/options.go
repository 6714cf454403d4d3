// Package resolver implements the Clique Resolver (spec.md §4.D): the
// central normalize operation that turns a list of input CURIEs into their
// canonical CliqueRecords, optionally fused across the gene/protein and
// drug/chemical conflation overlays.
package resolver

// NormalizeOptions controls one call to Resolver.Normalize.
type NormalizeOptions struct {
	ConflateGeneProtein    bool
	ConflateDrugChemical   bool
	IncludeDescriptions    bool
	IncludeIndividualTypes bool
}

// ConflationFlags selects which conflation overlays the Conflation Layer
// should consult (spec.md §4.E).
type ConflationFlags struct {
	GeneProtein  bool
	DrugChemical bool
}

func (o NormalizeOptions) flags() ConflationFlags {
	return ConflationFlags{GeneProtein: o.ConflateGeneProtein, DrugChemical: o.ConflateDrugChemical}
}
