package setid_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodenorm/node-normalizer/internal/application/resolver"
	"github.com/nodenorm/node-normalizer/internal/application/setid"
	"github.com/nodenorm/node-normalizer/internal/domain/category"
	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/internal/domain/labelpolicy"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store/memstore"
)

func diseaseClique(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()

	s.Seed(store.StoreEqToCanonical, "MONDO:0005002", "MONDO:0005002")
	s.Seed(store.StoreEqToCanonical, "DOID:3812", "MONDO:0005002")
	s.Seed(store.StoreCanonicalMembers, "MONDO:0005002",
		`[{"i":"MONDO:0005002","l":"Ehlers-Danlos syndrome"},{"i":"DOID:3812","l":"EDS"}]`)
	s.Seed(store.StoreCanonicalCategory, "MONDO:0005002", "biolink:Disease")
	s.Seed(store.StoreCanonicalIC, "MONDO:0005002", "72.34567")

	return s
}

func newGenerator(s store.MultiStore) *setid.Generator {
	ontology := category.NewCachedOntology(category.NewStaticOntology(map[string]string{
		"biolink:Disease": curie.RootCategory,
	}))
	policy := &labelpolicy.Policy{DemoteLabelsLongerThan: 1000}
	r := resolver.New(s, ontology, policy, logging.NewNopLogger())
	return setid.New(r)
}

func TestGenerate_UnknownFlag_ReturnsError(t *testing.T) {
	g := newGenerator(memstore.New())

	_, err := g.Generate(context.Background(), []string{"MONDO:0005002"}, []setid.Flag{"NotARealFlag"})
	require.Error(t, err)
}

func TestGenerate_UsesUUIDPrefix(t *testing.T) {
	g := newGenerator(diseaseClique(t))

	resp, err := g.Generate(context.Background(), []string{"MONDO:0005002", "DOID:3812"}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.SetID, "uuid:"))
}

func TestGenerate_Deterministic(t *testing.T) {
	g := newGenerator(diseaseClique(t))

	first, err := g.Generate(context.Background(), []string{"MONDO:0005002", "DOID:3812"}, nil)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), []string{"MONDO:0005002", "DOID:3812"}, nil)
	require.NoError(t, err)

	assert.Equal(t, first.SetID, second.SetID)
	assert.Equal(t, first.NormalizedString, second.NormalizedString)
}

func TestGenerate_PermutationInvariant(t *testing.T) {
	g := newGenerator(diseaseClique(t))

	a, err := g.Generate(context.Background(), []string{"MONDO:0005002", "DOID:3812", "UNKNOWN:1"}, nil)
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), []string{"UNKNOWN:1", "DOID:3812", "MONDO:0005002"}, nil)
	require.NoError(t, err)

	assert.Equal(t, a.SetID, b.SetID)
	assert.Equal(t, a.NormalizedCuries, b.NormalizedCuries)
}

func TestGenerate_DedupesResolvedCanonical(t *testing.T) {
	g := newGenerator(diseaseClique(t))

	resp, err := g.Generate(context.Background(), []string{"MONDO:0005002", "DOID:3812"}, nil)
	require.NoError(t, err)
	assert.Len(t, resp.NormalizedCuries, 1)
	assert.Equal(t, "MONDO:0005002", resp.NormalizedCuries[0])
}

func TestGenerate_UnresolvedInputKeptRaw(t *testing.T) {
	g := newGenerator(memstore.New())

	resp, err := g.Generate(context.Background(), []string{"UNKNOWN:1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"UNKNOWN:1"}, resp.NormalizedCuries)
}

func TestGenerate_EmptyInput_EmptyNormalizedListNoSetID(t *testing.T) {
	g := newGenerator(memstore.New())

	resp, err := g.Generate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.NormalizedCuries)
	assert.Empty(t, resp.SetID)
	assert.Empty(t, resp.NormalizedString)
}

func TestGenerate_RecordsRequestedConflationNames(t *testing.T) {
	g := newGenerator(diseaseClique(t))

	resp, err := g.Generate(context.Background(), []string{"MONDO:0005002"}, []setid.Flag{setid.FlagGeneProtein, setid.FlagDrugChemical})
	require.NoError(t, err)
	assert.Equal(t, []string{"GeneProtein", "DrugChemical"}, resp.Conflations)
}

func TestGenerate_SortsNormalizedCuriesLexicographically(t *testing.T) {
	s := memstore.New()
	s.Seed(store.StoreEqToCanonical, "X:2", "X:2")
	s.Seed(store.StoreCanonicalMembers, "X:2", `[{"i":"X:2","l":"two"}]`)
	s.Seed(store.StoreCanonicalCategory, "X:2", "biolink:NamedThing")
	s.Seed(store.StoreEqToCanonical, "X:1", "X:1")
	s.Seed(store.StoreCanonicalMembers, "X:1", `[{"i":"X:1","l":"one"}]`)
	s.Seed(store.StoreCanonicalCategory, "X:1", "biolink:NamedThing")

	ontology := category.NewCachedOntology(category.NewStaticOntology(map[string]string{}))
	policy := &labelpolicy.Policy{DemoteLabelsLongerThan: 1000}
	r := resolver.New(s, ontology, policy, logging.NewNopLogger())
	g := setid.New(r)

	resp, err := g.Generate(context.Background(), []string{"X:2", "X:1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"X:1", "X:2"}, resp.NormalizedCuries)
	assert.Equal(t, "X:1||X:2", resp.NormalizedString)
}
